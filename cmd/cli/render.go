package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"segstats/app"
	"segstats/domain/stats"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func pval(p float64) string {
	if math.IsNaN(p) {
		return "-"
	}
	return stats.FormatPValue(p)
}

func renderColumns(w io.Writer, cols []app.ColumnInfo) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "COLUMN\tKIND\tDISTINCT")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Name, c.Kind, c.Distinct)
	}
	return tw.Flush()
}

func renderShape(w io.Writer, results []stats.ColumnResult) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "COLUMN\tN\tSKEW\tSKEW_P\tKURTOSIS\tKURT_P\tSHAPIRO_P\tNORMALTEST_P")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Column, r.N, num(r.Skew), pval(r.SkewPValue), num(r.Kurtosis), pval(r.KurtosisPValue),
			pval(r.ShapiroPValue), pval(r.NormalPValue))
	}
	return tw.Flush()
}

func renderGroupTests(w io.Writer, results []stats.GroupTestResult) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "GROUP\tCOLUMN\tSTATISTIC\tP_VALUE\tGROUPS\tN")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", r.GroupColumn, r.Column, num(r.Statistic), pval(r.PValue), r.Groups, r.N)
	}
	return tw.Flush()
}

func renderAssociation(w io.Writer, results []stats.AssociationResult) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "COLUMN\tCHI2\tDOF\tP_VALUE\tCRAMERS_V\tSTRENGTH")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", r.Column, num(r.ChiSquare), r.DegreesOfFreedom, r.PValue, num(r.CramersV), r.Interpretation)
	}
	return tw.Flush()
}

func renderSummary(w io.Writer, s *app.SegmentSummary) error {
	fmt.Fprintf(w, "%s: %d customers (%d%%)\n", s.Segment, s.Rows, s.SharePct)
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "COLUMN\tMEAN\tPOPULATION_MEAN\tDIFF")
	for _, m := range s.Metrics {
		diff := "-"
		if m.RelativeDifference != nil {
			diff = fmt.Sprintf("%+d%%", *m.RelativeDifference)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Column, num(m.Mean), num(m.PopulationMean), diff)
	}
	return tw.Flush()
}

func renderReport(w io.Writer, r *app.Report) error {
	fmt.Fprintf(w, "run %s  segment column %s  alternative %s  seed %d  (%dms)\n",
		r.RunID, r.SegmentColumn, r.Alternative, r.Seed, r.RuntimeMs)

	for _, seg := range r.Segments {
		fmt.Fprintf(w, "\n== %s (%d rows) ==\n", seg.Segment, seg.Rows)
		if seg.Summary != nil {
			if err := renderSummary(w, seg.Summary); err != nil {
				return err
			}
		}
		if seg.Shape != nil {
			fmt.Fprintln(w, "\nshape")
			if err := renderShape(w, seg.Shape.Results()); err != nil {
				return err
			}
		}
		if len(seg.Variance) > 0 {
			fmt.Fprintln(w, "\nvariance")
			if err := renderGroupTests(w, seg.Variance); err != nil {
				return err
			}
		}
		if len(seg.Ranks) > 0 {
			fmt.Fprintln(w, "\nranks")
			if err := renderGroupTests(w, seg.Ranks); err != nil {
				return err
			}
		}
		if len(seg.Association) > 0 {
			fmt.Fprintln(w, "\nassociation")
			if err := renderAssociation(w, seg.Association); err != nil {
				return err
			}
		}
		for _, e := range seg.Errors {
			fmt.Fprintf(w, "! %s: [%s] %s\n", e.Analysis, e.Code, e.Message)
		}
	}
	return nil
}
