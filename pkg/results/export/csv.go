package export

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/scan"
)

// CSVExporter exports findings to CSV.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool

	// FailuresOnly skips findings that are not Error or Open.
	FailuresOnly bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Header returns the column names.
func (e *CSVExporter) Header() []string {
	return []string{
		"scan_id", "target", "started_at",
		"rule_id", "code", "element_id", "control_type", "element_name",
		"standard", "description", "how_to_fix", "error",
	}
}

// Export writes one row per finding of every result in rs.
func (e *CSVExporter) Export(ctx context.Context, rs []*scan.Result, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(e.Header()); err != nil {
			return results.NewExportError("csv", len(rs), err)
		}
	}

	for _, r := range rs {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, f := range r.Findings {
			if e.FailuresOnly && !f.Code.IsFailure() {
				continue
			}
			if err := writer.Write(row(r, f)); err != nil {
				return results.NewExportError("csv", len(rs), err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return results.NewExportError("csv", len(rs), err)
	}
	return nil
}

func row(r *scan.Result, f scan.Finding) []string {
	started := ""
	if !r.StartedAt.IsZero() {
		started = r.StartedAt.Format(time.RFC3339)
	}
	return []string{
		r.ID,
		r.Target,
		started,
		f.RuleID,
		f.Code.String(),
		f.ElementID,
		f.ControlType,
		f.ElementName,
		f.Standard,
		f.Description,
		f.HowToFix,
		f.Error,
	}
}
