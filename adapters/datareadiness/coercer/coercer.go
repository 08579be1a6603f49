package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"segstats/domain/dataset"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// TypeCoercer infers column kinds from raw cell text and converts cells to numbers
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64 `json:"numeric_threshold"` // share of non-empty cells that must parse as numbers
	NormalizeStrings bool    `json:"normalize_strings"` // collapse whitespace in categorical labels
}

// DefaultCoercionConfig requires every non-empty cell of a numeric column to parse
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		NormalizeStrings: true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis summarises how the cells of one column parse
type TypeAnalysis struct {
	TotalCount      int                `json:"total_count"`
	ValidCount      int                `json:"valid_count"`
	NumericCount    int                `json:"numeric_count"`
	NumericRatio    float64            `json:"numeric_ratio"`
	DistinctCount   int                `json:"distinct_count"`
	RecommendedKind dataset.ColumnKind `json:"recommended_kind"`
}

// AnalyzeColumn counts parseable cells. Blank cells are ignored for the ratio.
func (c *TypeCoercer) AnalyzeColumn(cells []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(cells)}
	distinct := make(map[string]struct{})

	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		analysis.ValidCount++
		distinct[cell] = struct{}{}
		if _, ok := c.ParseNumeric(cell); ok {
			analysis.NumericCount++
		}
	}

	analysis.DistinctCount = len(distinct)
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedKind = dataset.KindCategorical
	if analysis.ValidCount > 0 && analysis.NumericRatio >= c.config.NumericThreshold {
		analysis.RecommendedKind = dataset.KindNumeric
	}
	return analysis
}

// ParseNumeric parses a cell as a finite float.
// Handles parentheses for negatives, currency symbols, percent signs and
// comma thousands separators.
func (c *TypeCoercer) ParseNumeric(cell string) (float64, bool) {
	clean := strings.TrimSpace(cell)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		clean = strings.ReplaceAll(clean, symbol, "")
	}
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)

	if negative {
		clean = "-" + clean
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// NormalizeLabel trims a categorical label and strips control characters
func (c *TypeCoercer) NormalizeLabel(cell string) string {
	s := strings.TrimSpace(cell)
	if !c.config.NormalizeStrings {
		return s
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
