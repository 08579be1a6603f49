package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"segstats/domain/core"
	"segstats/domain/dataset"
	"segstats/domain/stats"
	apperrors "segstats/internal/errors"

	"golang.org/x/sync/semaphore"
)

// ReportRequest configures a full segment report. Zero values fall back to the
// service defaults.
type ReportRequest struct {
	Alternative       stats.Alternative
	Seed              *int64
	WithinGroupColumn string // optional grouping applied inside every segment
}

// AnalysisError is a captured analysis failure
type AnalysisError struct {
	Analysis string `json:"analysis"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// SegmentReport holds every analysis run for one segment
type SegmentReport struct {
	Segment     core.SegmentKey           `json:"segment"`
	Rows        int                       `json:"rows"`
	Summary     *SegmentSummary           `json:"summary,omitempty"`
	Shape       *stats.ShapeReport        `json:"shape,omitempty"`
	Variance    []stats.GroupTestResult   `json:"variance,omitempty"`
	Ranks       []stats.GroupTestResult   `json:"ranks,omitempty"`
	Association []stats.AssociationResult `json:"association,omitempty"`
	Errors      []AnalysisError           `json:"errors,omitempty"`
}

func (r *SegmentReport) capture(analysis string, err error) {
	appErr := apperrors.FromDomain(err)
	r.Errors = append(r.Errors, AnalysisError{Analysis: analysis, Code: appErr.Code, Message: err.Error()})
}

// Report is the outcome of one report run
type Report struct {
	RunID         core.RunID        `json:"run_id"`
	Fingerprint   core.Hash         `json:"fingerprint"`
	SegmentColumn string            `json:"segment_column"`
	Alternative   stats.Alternative `json:"alternative"`
	Seed          int64             `json:"seed"`
	CreatedAt     core.Timestamp    `json:"created_at"`
	RuntimeMs     int64             `json:"runtime_ms"`
	Segments      []SegmentReport   `json:"segments"`
}

// Report runs the full battery over the whole population and every segment.
// Segments run concurrently, bounded by the configured worker count. Analysis
// failures are captured per segment; only loading and cancellation abort the run.
func (s *SegmentAnalysisService) Report(ctx context.Context, req ReportRequest) (*Report, error) {
	start := time.Now()
	table, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	segments, err := s.Segments(ctx)
	if err != nil {
		return nil, err
	}

	alt := req.Alternative
	if alt == "" {
		alt = s.config.Alternative
	}
	seed := s.config.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if req.WithinGroupColumn != "" && !table.Has(req.WithinGroupColumn) {
		return nil, core.NewColumnNotFoundError(req.WithinGroupColumn)
	}

	keys := append([]core.SegmentKey{core.AllSegments}, segments...)
	report := &Report{
		RunID:         core.RunID(core.NewID()),
		Fingerprint:   s.fingerprint(table, alt, seed, req.WithinGroupColumn),
		SegmentColumn: s.config.SegmentColumn,
		Alternative:   alt,
		Seed:          seed,
		CreatedAt:     core.Now(),
		Segments:      make([]SegmentReport, len(keys)),
	}
	s.logger.Info("[SegmentAnalysis] Report %s started over %d segments", report.RunID, len(segments))

	sem := semaphore.NewWeighted(int64(s.config.Workers))
	var wg sync.WaitGroup
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("report %s cancelled: %w", report.RunID, err)
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("report %s cancelled: %w", report.RunID, err)
		}
		wg.Add(1)
		go func(i int, key core.SegmentKey) {
			defer wg.Done()
			defer sem.Release(1)
			report.Segments[i] = s.segmentReport(ctx, table, key, alt, seed, req.WithinGroupColumn)
		}(i, key)
	}
	wg.Wait()

	report.RuntimeMs = time.Since(start).Milliseconds()
	s.logger.Info("[SegmentAnalysis] Report %s finished in %dms", report.RunID, report.RuntimeMs)
	return report, nil
}

func (s *SegmentAnalysisService) segmentReport(ctx context.Context, population *dataset.Table, key core.SegmentKey, alt stats.Alternative, base int64, within string) SegmentReport {
	out := SegmentReport{Segment: key}
	logger := s.logger.With("segment", key.String())

	table := population
	if !key.IsAll() {
		var err error
		if table, err = population.Filter(s.config.SegmentColumn, key.String()); err != nil {
			out.capture(AnalysisSummary, err)
			return out
		}
	}
	out.Rows = table.NumRows()

	if summary, err := s.Summary(ctx, key); err != nil {
		out.capture(AnalysisSummary, err)
	} else {
		out.Summary = summary
	}

	if shape, err := s.shape(table, alt); err != nil {
		out.capture(AnalysisShape, err)
	} else {
		out.Shape = &shape
	}

	// Grouping by the segment column only makes sense across the whole population.
	group := within
	if key.IsAll() && group == "" {
		group = s.config.SegmentColumn
	}
	if group == "" {
		return out
	}

	seed := s.rngPort.SeedFor(fmt.Sprintf("%s/%s/%s", AnalysisVariance, key, group), base)
	logger.Trace("[SegmentAnalysis] variance by %s with derived seed %d", group, seed)
	if res, err := s.variance(table, group, seed); err != nil {
		out.capture(AnalysisVariance, err)
	} else {
		out.Variance = res
	}

	if res, err := s.ranks(table, group); err != nil {
		out.capture(AnalysisRanks, err)
	} else {
		out.Ranks = res
	}

	if res, err := s.association(table, key, group); err != nil {
		out.capture(AnalysisAssociation, err)
	} else {
		out.Association = res
	}
	return out
}

func (s *SegmentAnalysisService) fingerprint(table *dataset.Table, alt stats.Alternative, seed int64, within string) core.Hash {
	return core.ComputeFingerprint(
		s.config.SegmentColumn,
		string(alt),
		strconv.FormatInt(seed, 10),
		within,
		strconv.Itoa(table.NumRows()),
		strings.Join(table.Names(), ","),
	)
}
