package app

import (
	"context"
	"math"

	"segstats/domain/core"

	mstats "github.com/montanaflynn/stats"
)

// MetricSummary compares one numeric column's segment mean with the population mean.
// RelativeDifference is in whole percent, truncated toward zero; it is nil for
// the whole population or when the population mean is zero.
type MetricSummary struct {
	Column             string  `json:"column"`
	Mean               float64 `json:"mean"`
	PopulationMean     float64 `json:"population_mean"`
	RelativeDifference *int    `json:"relative_difference_pct"`
}

// SegmentSummary is the headline view of one segment.
// SharePct is the segment's share of all customers in whole percent, truncated.
type SegmentSummary struct {
	Segment  core.SegmentKey `json:"segment"`
	Rows     int             `json:"rows"`
	SharePct int             `json:"share_pct"`
	Metrics  []MetricSummary `json:"metrics"`
}

// Summary reports row count, share and per-column means of a segment
func (s *SegmentAnalysisService) Summary(ctx context.Context, segment core.SegmentKey) (*SegmentSummary, error) {
	var summary *SegmentSummary
	err := s.observe(AnalysisSummary, func() (err error) {
		summary, err = s.summarize(ctx, segment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *SegmentAnalysisService) summarize(ctx context.Context, segment core.SegmentKey) (*SegmentSummary, error) {
	population, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	table, err := s.SegmentTable(ctx, segment)
	if err != nil {
		return nil, err
	}
	if segment == "" {
		segment = core.AllSegments
	}

	summary := &SegmentSummary{
		Segment:  segment,
		Rows:     table.NumRows(),
		SharePct: int(float64(table.NumRows()) / float64(population.NumRows()) * 100),
	}

	for _, col := range population.NumericColumns().Drop(s.config.SegmentColumn).Columns() {
		popMean, err := mstats.Mean(col.Float64s())
		if err != nil {
			return nil, err
		}
		segCol, err := table.Column(col.Name())
		if err != nil {
			return nil, err
		}
		segMean, err := mstats.Mean(segCol.Float64s())
		if err != nil {
			return nil, err
		}

		m := MetricSummary{Column: col.Name(), Mean: segMean, PopulationMean: popMean}
		if !segment.IsAll() {
			m.RelativeDifference = RelativePercentageDifference(segMean, popMean)
		}
		summary.Metrics = append(summary.Metrics, m)
	}
	return summary, nil
}

// RelativePercentageDifference returns (value - reference) / reference * 100
// truncated to an int, or nil when reference is zero.
func RelativePercentageDifference(value, reference float64) *int {
	if reference == 0 {
		return nil
	}
	pct := int(math.Trunc((value - reference) / reference * 100))
	return &pct
}
