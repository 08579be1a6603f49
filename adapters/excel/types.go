package excel

// RawSheet is the untyped grid read from a CSV or XLSX file
type RawSheet struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, one cell per header; short rows are padded with ""
}
