package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"segstats/adapters/datareadiness/coercer"
	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader loads an Excel or CSV file into a typed dataset.Table
type DataReader struct {
	config   ReaderConfig
	fileType string // "xlsx" or "csv"
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension.
func NewDataReader(filePath string, opts ...Option) *DataReader {
	cfg := DefaultReaderConfig(filePath)
	for _, opt := range opts {
		opt(&cfg)
	}

	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		config:   cfg,
		fileType: fileType,
		coercer:  coercer.NewTypeCoercer(cfg.CoercionConfig),
		logger:   internal.DefaultLogger,
	}
}

// WithLogger swaps the reader's logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	r.logger = logger
	return r
}

// Load implements ports.DatasetSource
func (r *DataReader) Load(ctx context.Context) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.ReadTable()
}

// ReadTable reads the file and types every column
func (r *DataReader) ReadTable() (*dataset.Table, error) {
	raw, err := r.ReadRaw()
	if err != nil {
		return nil, err
	}
	return r.BuildTable(raw)
}

// ReadRaw reads the header and data rows without typing them
func (r *DataReader) ReadRaw() (*RawSheet, error) {
	r.logger.Info("[DataReader] Starting to read %s file: %s", r.fileType, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.config.FilePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}
	return r.processRows(rows), nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("[DataReader] Sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows trims cells and pads short rows to the header width
func (r *DataReader) processRows(rows [][]string) *RawSheet {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		data = append(data, cells)
	}
	return &RawSheet{Headers: headers, Rows: data}
}

// BuildTable infers each column's kind and converts the cells. Blank cells
// are rejected: the analyses do not impute missing values.
func (r *DataReader) BuildTable(raw *RawSheet) (*dataset.Table, error) {
	forced := make(map[string]bool, len(r.config.Categorical))
	for _, name := range r.config.Categorical {
		forced[name] = true
	}

	columns := make([]dataset.Column, 0, len(raw.Headers))
	for j, header := range raw.Headers {
		cells := make([]string, len(raw.Rows))
		for i, row := range raw.Rows {
			cells[i] = row[j]
		}
		if i := firstBlank(cells); i >= 0 {
			return nil, fmt.Errorf("%w: column %s has a blank cell at data row %d", core.ErrInvalidTable, header, i+1)
		}

		kind := r.coercer.AnalyzeColumn(cells).RecommendedKind
		if forced[header] {
			kind = dataset.KindCategorical
		}

		col, err := r.convert(header, cells, kind)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	table, err := dataset.NewTable(columns...)
	if err != nil {
		return nil, err
	}
	r.logger.Info("[DataReader] %s file processed (%d columns, %d rows, %d numeric)",
		strings.ToUpper(r.fileType), table.NumColumns(), table.NumRows(), table.NumericColumns().NumColumns())
	return table, nil
}

func (r *DataReader) convert(name string, cells []string, kind dataset.ColumnKind) (dataset.Column, error) {
	if kind == dataset.KindCategorical {
		labels := make([]string, len(cells))
		for i, cell := range cells {
			labels[i] = r.coercer.NormalizeLabel(cell)
		}
		return dataset.NewCategoricalColumn(name, labels), nil
	}

	values := make([]float64, len(cells))
	for i, cell := range cells {
		v, ok := r.coercer.ParseNumeric(cell)
		if !ok {
			return dataset.Column{}, fmt.Errorf("%w: column %s row %d: %q is not numeric", core.ErrInvalidTable, name, i+1, cell)
		}
		values[i] = v
	}
	return dataset.NewNumericColumn(name, values), nil
}

func firstBlank(cells []string) int {
	for i, cell := range cells {
		if cell == "" {
			return i
		}
	}
	return -1
}
