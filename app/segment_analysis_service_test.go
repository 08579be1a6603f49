package app

import (
	"context"
	"errors"
	"testing"

	"segstats/adapters/rng"
	"segstats/adapters/stats/toolkit"
	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"
	"segstats/internal"
	apperrors "segstats/internal/errors"
	"segstats/internal/metrics"
	"segstats/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Load(ctx context.Context) (*dataset.Table, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*dataset.Table)
	return table, args.Error(1)
}

type mockToolkit struct {
	mock.Mock
}

func (m *mockToolkit) Shape(table *dataset.Table, alt stats.Alternative) (stats.ShapeReport, error) {
	args := m.Called(table, alt)
	return args.Get(0).(stats.ShapeReport), args.Error(1)
}

func (m *mockToolkit) TestVarianceEquality(table *dataset.Table, groupColumn string, numericColumns []string, seed int64) ([]stats.GroupTestResult, error) {
	args := m.Called(table, groupColumn, numericColumns, seed)
	res, _ := args.Get(0).([]stats.GroupTestResult)
	return res, args.Error(1)
}

func (m *mockToolkit) TestRankDifferences(table *dataset.Table, groupColumn string, numericColumns []string) ([]stats.GroupTestResult, error) {
	args := m.Called(table, groupColumn, numericColumns)
	res, _ := args.Get(0).([]stats.GroupTestResult)
	return res, args.Error(1)
}

func (m *mockToolkit) TestAssociation(target dataset.Column, features *dataset.Table) ([]stats.AssociationResult, error) {
	args := m.Called(target, features)
	res, _ := args.Get(0).([]stats.AssociationResult)
	return res, args.Error(1)
}

var quietLogger = internal.NewLoggerWithZap(internal.LogLevelError, zap.NewNop())

func smallTable() *dataset.Table {
	return dataset.MustNewTable(
		dataset.NewNumericColumn("income", []float64{100, 200, 300, 400}),
		dataset.NewNumericColumn("refunds", []float64{0, 0, 0, 0}),
		dataset.NewCategoricalColumn("gender", []string{"F", "M", "F", "M"}),
		dataset.NewCategoricalColumn("cluster", []string{"10", "2", "10", "1"}),
	)
}

func newService(source *mockSource, tk *mockToolkit) *SegmentAnalysisService {
	return NewSegmentAnalysisService(source, tk, rng.NewSeededRNG(), metrics.New(), quietLogger,
		AnalysisConfig{SegmentColumn: "cluster", Seed: 42, Workers: 2})
}

func TestTableLoadsOnce(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(smallTable(), nil).Once()
	svc := newService(source, new(mockToolkit))

	for i := 0; i < 3; i++ {
		_, err := svc.Table(context.Background())
		require.NoError(t, err)
	}
	source.AssertNumberOfCalls(t, "Load", 1)
}

func TestTableRequiresSegmentColumn(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(dataset.MustNewTable(dataset.NewNumericColumn("income", []float64{1})), nil)

	_, err := newService(source, new(mockToolkit)).Table(context.Background())
	assert.True(t, core.IsNotFoundError(err))
}

func TestSegmentsSortNumerically(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(smallTable(), nil)

	segments, err := newService(source, new(mockToolkit)).Segments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.SegmentKey{"1", "2", "10"}, segments)

	labels := []string{"b", "10", "a"}
	sortSegmentLabels(labels)
	assert.Equal(t, []string{"10", "a", "b"}, labels)
}

func TestSegmentTable(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(smallTable(), nil)
	svc := newService(source, new(mockToolkit))

	all, err := svc.SegmentTable(context.Background(), core.AllSegments)
	require.NoError(t, err)
	assert.Equal(t, 4, all.NumRows())

	seg, err := svc.SegmentTable(context.Background(), "10")
	require.NoError(t, err)
	assert.Equal(t, 2, seg.NumRows())

	_, err = svc.SegmentTable(context.Background(), "99")
	assert.True(t, errors.Is(err, core.ErrSegmentNotFound))
}

func TestSummary(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(smallTable(), nil)
	svc := newService(source, new(mockToolkit))

	summary, err := svc.Summary(context.Background(), "10")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 50, summary.SharePct)
	require.Len(t, summary.Metrics, 2)

	income := summary.Metrics[0]
	assert.Equal(t, "income", income.Column)
	assert.Equal(t, 200.0, income.Mean)
	assert.Equal(t, 250.0, income.PopulationMean)
	require.NotNil(t, income.RelativeDifference)
	assert.Equal(t, -20, *income.RelativeDifference)
	assert.Nil(t, summary.Metrics[1].RelativeDifference, "zero population mean has no relative difference")

	all, err := svc.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, core.AllSegments, all.Segment)
	assert.Equal(t, 100, all.SharePct)
	assert.Nil(t, all.Metrics[0].RelativeDifference)
}

func TestRelativePercentageDifference(t *testing.T) {
	tests := []struct {
		value, reference float64
		want             *int
	}{
		{150, 100, intPtr(50)},
		{99.5, 100, intPtr(0)},
		{40, 50, intPtr(-20)},
		{-3, 2, intPtr(-250)},
		{5, 0, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativePercentageDifference(tt.value, tt.reference), "%v vs %v", tt.value, tt.reference)
	}
}

func intPtr(v int) *int { return &v }

func TestReportCapturesAnalysisFailures(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(smallTable(), nil)

	tk := new(mockToolkit)
	tk.On("Shape", mock.Anything, stats.Greater).Return(stats.ShapeReport{}, core.NewInsufficientSampleError("income", 4, 8))
	expectedSeed := rng.NewSeededRNG().SeedFor("variance/All Segments/cluster", 42)
	tk.On("TestVarianceEquality", mock.Anything, "cluster", []string{"income", "refunds"}, expectedSeed).
		Return([]stats.GroupTestResult{{GroupColumn: "cluster", Column: "income"}}, nil).Once()
	tk.On("TestRankDifferences", mock.Anything, "cluster", []string{"income", "refunds"}).
		Return(nil, core.NewEmptyGroupError("cluster", "3")).Once()
	tk.On("TestAssociation", mock.Anything, mock.Anything).
		Return([]stats.AssociationResult{{Column: "gender"}}, nil).Once()

	svc := newService(source, tk)
	report, err := svc.Report(context.Background(), ReportRequest{Alternative: stats.Greater})
	require.NoError(t, err)
	tk.AssertExpectations(t)

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.Fingerprint.IsEmpty())
	assert.Equal(t, int64(42), report.Seed)
	require.Len(t, report.Segments, 4)
	assert.Equal(t, []core.SegmentKey{core.AllSegments, "1", "2", "10"},
		[]core.SegmentKey{report.Segments[0].Segment, report.Segments[1].Segment, report.Segments[2].Segment, report.Segments[3].Segment})

	all := report.Segments[0]
	assert.Equal(t, 4, all.Rows)
	assert.Len(t, all.Variance, 1)
	assert.Len(t, all.Association, 1)
	assert.Nil(t, all.Shape)
	require.Len(t, all.Errors, 2)
	assert.Equal(t, AnalysisError{Analysis: AnalysisShape, Code: apperrors.CodeInsufficientSample, Message: all.Errors[0].Message}, all.Errors[0])
	assert.Equal(t, apperrors.CodeEmptyGroup, all.Errors[1].Code)

	for _, seg := range report.Segments[1:] {
		require.Len(t, seg.Errors, 1, "segment %s", seg.Segment)
		assert.Equal(t, AnalysisShape, seg.Errors[0].Analysis)
		assert.NotNil(t, seg.Summary)
	}
}

func TestReportHonoursCancellation(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(smallTable(), nil)
	svc := newService(source, new(mockToolkit))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Report(ctx, ReportRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportWithinGroupMustExist(t *testing.T) {
	source := new(mockSource)
	source.On("Load", mock.Anything).Return(smallTable(), nil)

	_, err := newService(source, new(mockToolkit)).Report(context.Background(), ReportRequest{WithinGroupColumn: "region"})
	assert.True(t, core.IsNotFoundError(err))
}

type tableSource struct{ table *dataset.Table }

func (s tableSource) Load(context.Context) (*dataset.Table, error) { return s.table, nil }

func TestReportOnGeneratedCustomers(t *testing.T) {
	table, err := testkit.NewCustomerGenerator(testkit.CustomerGeneratorConfig{CustomerCount: 300, ClusterCount: 3, Seed: 11}).GenerateTable()
	require.NoError(t, err)

	svc := NewSegmentAnalysisService(tableSource{table}, toolkit.New(), rng.NewSeededRNG(), metrics.New(), quietLogger,
		AnalysisConfig{SegmentColumn: "cluster", Seed: 42, Workers: 3})

	report, err := svc.Report(context.Background(), ReportRequest{})
	require.NoError(t, err)
	require.Len(t, report.Segments, 4)

	all := report.Segments[0]
	assert.Empty(t, all.Errors)
	assert.Equal(t, 6, all.Shape.Len())
	assert.Len(t, all.Variance, 6)
	assert.Len(t, all.Ranks, 6)
	assert.Len(t, all.Association, 4)

	for _, res := range all.Ranks {
		if res.Column == "income" {
			assert.Less(t, res.PValue, 1e-6, "clusters are generated with different incomes")
		}
	}

	for _, seg := range report.Segments[1:] {
		assert.Equal(t, 100, seg.Rows)
		assert.Empty(t, seg.Errors)
		assert.Equal(t, 6, seg.Shape.Len())
		assert.Nil(t, seg.Variance)
	}

	again, err := svc.Report(context.Background(), ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, all.Variance, again.Segments[0].Variance, "same seed, same balanced draw")
	assert.Equal(t, report.Fingerprint, again.Fingerprint)
	assert.NotEqual(t, report.RunID, again.RunID)

	within, err := svc.Report(context.Background(), ReportRequest{WithinGroupColumn: "gender"})
	require.NoError(t, err)
	for _, seg := range within.Segments[1:] {
		assert.Empty(t, seg.Errors, "segment %s", seg.Segment)
		assert.Len(t, seg.Ranks, 6, "segment %s", seg.Segment)
		require.Len(t, seg.Association, 3, "segment %s", seg.Segment)
		for _, res := range seg.Association {
			assert.NotEqual(t, "cluster", res.Column)
		}
	}
	assert.Len(t, within.Segments[0].Association, 4, "the population keeps cluster as a feature")

	inSegment, err := svc.Association(context.Background(), "1", "gender")
	require.NoError(t, err)
	require.Len(t, inSegment, 3)
	assert.Equal(t, []string{"preferred_category", "spending_score_category", "purchase_frequency_category"},
		[]string{inSegment[0].Column, inSegment[1].Column, inSegment[2].Column})
}
