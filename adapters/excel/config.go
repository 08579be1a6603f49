package excel

import (
	"segstats/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for a tabular data source
type ReaderConfig struct {
	FilePath       string                 `json:"file_path"`
	Sheet          string                 `json:"sheet"`       // XLSX sheet; empty means the first sheet
	Categorical    []string               `json:"categorical"` // columns forced to categorical regardless of content
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultReaderConfig returns the configuration used when only a path is known
func DefaultReaderConfig(filePath string) ReaderConfig {
	return ReaderConfig{
		FilePath:       filePath,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}

// Option adjusts a ReaderConfig
type Option func(*ReaderConfig)

// WithSheet selects the XLSX sheet to read
func WithSheet(sheet string) Option {
	return func(c *ReaderConfig) { c.Sheet = sheet }
}

// WithCategorical forces the named columns to be read as categorical
func WithCategorical(names ...string) Option {
	return func(c *ReaderConfig) { c.Categorical = append(c.Categorical, names...) }
}
