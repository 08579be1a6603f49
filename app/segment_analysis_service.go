package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"
	"segstats/internal"
	"segstats/internal/metrics"
	"segstats/ports"
)

// Analysis names used in diagnostics and metrics
const (
	AnalysisShape       = "shape"
	AnalysisVariance    = "variance"
	AnalysisRanks       = "ranks"
	AnalysisAssociation = "association"
	AnalysisSummary     = "summary"
)

// AnalysisConfig holds the defaults requests fall back to
type AnalysisConfig struct {
	SegmentColumn string
	Seed          int64
	Alternative   stats.Alternative
	Workers       int
}

// SegmentAnalysisService runs the statistical toolkit over the customer table
// and over each customer segment.
type SegmentAnalysisService struct {
	source  ports.DatasetSource
	toolkit ports.StatsToolkit
	rngPort ports.RNGPort
	metrics *metrics.Metrics
	logger  *internal.Logger
	config  AnalysisConfig

	mu    sync.Mutex
	table *dataset.Table
}

// NewSegmentAnalysisService creates the service. metricsSink may be nil.
func NewSegmentAnalysisService(source ports.DatasetSource, toolkit ports.StatsToolkit, rngPort ports.RNGPort, metricsSink *metrics.Metrics, logger *internal.Logger, config AnalysisConfig) *SegmentAnalysisService {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Alternative == "" {
		config.Alternative = stats.TwoSided
	}
	return &SegmentAnalysisService{
		source:  source,
		toolkit: toolkit,
		rngPort: rngPort,
		metrics: metricsSink,
		logger:  logger,
		config:  config,
	}
}

// Config returns the service defaults
func (s *SegmentAnalysisService) Config() AnalysisConfig {
	return s.config
}

// Table loads the customer table on first use and returns the cached copy afterwards
func (s *SegmentAnalysisService) Table(ctx context.Context) (*dataset.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table != nil {
		return s.table, nil
	}
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer table: %w", err)
	}
	if !table.Has(s.config.SegmentColumn) {
		return nil, fmt.Errorf("segment column: %w", core.NewColumnNotFoundError(s.config.SegmentColumn))
	}
	s.table = table
	s.metrics.SetTableRows(table.NumRows())
	s.logger.Info("[SegmentAnalysis] Loaded %d rows x %d columns", table.NumRows(), table.NumColumns())
	return table, nil
}

// ColumnInfo describes one column of the loaded table
type ColumnInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Distinct int    `json:"distinct"`
}

// Columns lists the table's columns in order
func (s *SegmentAnalysisService) Columns(ctx context.Context) ([]ColumnInfo, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	cols := table.Columns()
	out := make([]ColumnInfo, len(cols))
	for i, col := range cols {
		out[i] = ColumnInfo{Name: col.Name(), Kind: col.Kind().String(), Distinct: col.Distinct()}
	}
	return out, nil
}

// Segments lists the distinct values of the segment column, sorted numerically
// when every value is a number.
func (s *SegmentAnalysisService) Segments(ctx context.Context) ([]core.SegmentKey, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	col, err := table.Column(s.config.SegmentColumn)
	if err != nil {
		return nil, err
	}

	levels := col.Levels()
	sortSegmentLabels(levels)
	keys := make([]core.SegmentKey, len(levels))
	for i, level := range levels {
		keys[i] = core.SegmentKey(level)
	}
	return keys, nil
}

func sortSegmentLabels(labels []string) {
	numeric := true
	values := make(map[string]float64, len(labels))
	for _, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			numeric = false
			break
		}
		values[l] = v
	}
	if numeric {
		sort.SliceStable(labels, func(i, j int) bool { return values[labels[i]] < values[labels[j]] })
		return
	}
	sort.Strings(labels)
}

// SegmentTable returns the rows of one segment, or the whole table for AllSegments
func (s *SegmentAnalysisService) SegmentTable(ctx context.Context, segment core.SegmentKey) (*dataset.Table, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	if segment.IsAll() {
		return table, nil
	}
	seg, err := table.Filter(s.config.SegmentColumn, segment.String())
	if err != nil {
		return nil, err
	}
	if seg.NumRows() == 0 {
		return nil, fmt.Errorf("%w: %s=%s", core.ErrSegmentNotFound, s.config.SegmentColumn, segment)
	}
	return seg, nil
}

// Shape runs the normality battery on every numeric column of a segment
func (s *SegmentAnalysisService) Shape(ctx context.Context, segment core.SegmentKey, alt stats.Alternative) (stats.ShapeReport, error) {
	table, err := s.SegmentTable(ctx, segment)
	if err != nil {
		return stats.ShapeReport{}, err
	}
	if alt == "" {
		alt = s.config.Alternative
	}
	return s.shape(table, alt)
}

func (s *SegmentAnalysisService) shape(table *dataset.Table, alt stats.Alternative) (stats.ShapeReport, error) {
	numeric := table.NumericColumns().Drop(s.config.SegmentColumn)
	var report stats.ShapeReport
	err := s.observe(AnalysisShape, func() (err error) {
		report, err = s.toolkit.Shape(numeric, alt)
		return err
	})
	return report, err
}

// GroupRequest selects the rows and grouping for a variance or rank test
type GroupRequest struct {
	Segment     core.SegmentKey
	GroupColumn string // defaults to the segment column
	Seed        *int64 // variance only; defaults to the configured seed
}

// Variance runs the balanced variance-equality test with the request's seed
func (s *SegmentAnalysisService) Variance(ctx context.Context, req GroupRequest) ([]stats.GroupTestResult, error) {
	table, group, err := s.groupInput(ctx, req)
	if err != nil {
		return nil, err
	}
	seed := s.config.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	return s.variance(table, group, seed)
}

func (s *SegmentAnalysisService) variance(table *dataset.Table, group string, seed int64) ([]stats.GroupTestResult, error) {
	var results []stats.GroupTestResult
	err := s.observe(AnalysisVariance, func() (err error) {
		results, err = s.toolkit.TestVarianceEquality(table, group, table.NumericColumns().Names(), seed)
		return err
	})
	return results, err
}

// Ranks runs the Kruskal-Wallis test on the raw groups
func (s *SegmentAnalysisService) Ranks(ctx context.Context, req GroupRequest) ([]stats.GroupTestResult, error) {
	table, group, err := s.groupInput(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.ranks(table, group)
}

func (s *SegmentAnalysisService) ranks(table *dataset.Table, group string) ([]stats.GroupTestResult, error) {
	var results []stats.GroupTestResult
	err := s.observe(AnalysisRanks, func() (err error) {
		results, err = s.toolkit.TestRankDifferences(table, group, table.NumericColumns().Names())
		return err
	})
	return results, err
}

func (s *SegmentAnalysisService) groupInput(ctx context.Context, req GroupRequest) (*dataset.Table, string, error) {
	table, err := s.SegmentTable(ctx, req.Segment)
	if err != nil {
		return nil, "", err
	}
	group := req.GroupColumn
	if group == "" {
		group = s.config.SegmentColumn
	}
	return table, group, nil
}

// Association tests every categorical column of a segment against target.
// An empty target means the segment column.
func (s *SegmentAnalysisService) Association(ctx context.Context, segment core.SegmentKey, target string) ([]stats.AssociationResult, error) {
	table, err := s.SegmentTable(ctx, segment)
	if err != nil {
		return nil, err
	}
	if target == "" {
		target = s.config.SegmentColumn
	}
	return s.association(table, segment, target)
}

// association tests the categorical columns of table against target. Inside a
// single segment the segment column has one level, so it is not a feature there.
func (s *SegmentAnalysisService) association(table *dataset.Table, segment core.SegmentKey, target string) ([]stats.AssociationResult, error) {
	col, err := table.Column(target)
	if err != nil {
		return nil, err
	}
	features := table.CategoricalColumns()
	if !segment.IsAll() {
		features = features.Drop(s.config.SegmentColumn)
	}
	var results []stats.AssociationResult
	err = s.observe(AnalysisAssociation, func() (err error) {
		results, err = s.toolkit.TestAssociation(col, features)
		return err
	})
	return results, err
}

// observe times fn and records its outcome
func (s *SegmentAnalysisService) observe(analysis string, fn func() error) error {
	start := time.Now()
	err := fn()

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case core.IsToolkitError(err) || core.IsInputError(err) || core.IsNotFoundError(err):
		outcome = metrics.OutcomeRejected
		s.logger.Debug("[SegmentAnalysis] %s rejected: %v", analysis, err)
	default:
		outcome = metrics.OutcomeError
		s.logger.Error("[SegmentAnalysis] %s failed: %v", analysis, err)
	}
	s.metrics.ObserveAnalysis(analysis, outcome, time.Since(start))
	return err
}
