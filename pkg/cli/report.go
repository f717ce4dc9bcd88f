package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/results/export"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/scan"
)

// ScanReport renders a single scan result. JSON output is the result itself.
type ScanReport struct {
	Result *scan.Result

	// FailuresOnly limits text and CSV output to Error and Open findings.
	FailuresOnly bool
}

// MarshalJSON implements json.Marshaler.
func (r ScanReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Result)
}

// WriteCSV implements CSVWriter.
func (r ScanReport) WriteCSV(w io.Writer) error {
	exp := &export.CSVExporter{IncludeHeader: true, FailuresOnly: r.FailuresOnly}
	return exp.Export(context.Background(), []*scan.Result{r.Result}, w)
}

// RenderText implements TextRenderer.
func (r ScanReport) RenderText(w io.Writer) error {
	res := r.Result
	target := res.Target
	if target == "" {
		target = "-"
	}

	fmt.Fprintf(w, "Scan %s of %s: %s in %s\n", res.ID, target, res.Status, res.Duration.Round(time.Microsecond))
	fmt.Fprintf(w, "%d elements, %d rules, %d evaluations\n",
		res.Summary.Elements, res.Summary.Rules, res.Summary.Evaluations)

	counts := make([]string, 0, len(rule.Codes()))
	for _, code := range rule.Codes() {
		counts = append(counts, fmt.Sprintf("%s %d", code, res.Summary.Count(code)))
	}
	fmt.Fprintln(w, strings.Join(counts, "  "))

	findings := res.Findings
	if r.FailuresOnly {
		findings = res.Failures()
	}
	for _, f := range findings {
		if f.Code == rule.Pass || f.Code == rule.NotApplicable {
			continue
		}
		fmt.Fprintf(w, "\n%-14s %s  %s [%s]\n", f.Code, f.RuleID, elementLabel(f), f.ElementID)
		if f.Description != "" {
			fmt.Fprintf(w, "    %s\n", f.Description)
		}
		if f.Error != "" {
			fmt.Fprintf(w, "    error: %s\n", f.Error)
		}
		if f.HowToFix != "" {
			fmt.Fprintf(w, "    fix: %s\n", f.HowToFix)
		}
		if f.Standard != "" {
			fmt.Fprintf(w, "    standard: %s\n", f.Standard)
		}
	}
	return nil
}

func elementLabel(f scan.Finding) string {
	if f.ElementName != "" {
		return fmt.Sprintf("%s %q", f.ControlType, f.ElementName)
	}
	return f.ControlType
}

// RuleTable lists catalogued rules.
type RuleTable []catalog.Entry

// Header implements Table.
func (t RuleTable) Header() []string {
	return []string{"ID", "ORIGIN", "STANDARD", "FAILURE", "DESCRIPTION"}
}

// Rows implements Table.
func (t RuleTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		info := e.Rule.Info()
		failure := "-"
		if info.FailureCode.Valid() {
			failure = info.FailureCode.String()
		}
		rows = append(rows, []string{info.ID, e.Origin, string(info.Standard), failure, info.Description})
	}
	return rows
}

// MarshalJSON implements json.Marshaler.
func (t RuleTable) MarshalJSON() ([]byte, error) {
	type view struct {
		rule.Info
		Origin string `json:"origin"`
		File   string `json:"file,omitempty"`
	}
	out := make([]view, 0, len(t))
	for _, e := range t {
		out = append(out, view{Info: e.Rule.Info(), Origin: e.Origin, File: e.File})
	}
	return json.Marshal(out)
}

// ScanTable lists stored scans without their findings.
type ScanTable []*scan.Result

// Header implements Table.
func (t ScanTable) Header() []string {
	return []string{"ID", "STARTED", "TARGET", "STATUS", "ELEMENTS", "RULES", "ERRORS", "OPEN", "DURATION"}
}

// Rows implements Table.
func (t ScanTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
			r.Target,
			r.Status,
			strconv.Itoa(r.Summary.Elements),
			strconv.Itoa(r.Summary.Rules),
			strconv.Itoa(r.Summary.Count(rule.Error)),
			strconv.Itoa(r.Summary.Count(rule.Open)),
			r.Duration.String(),
		})
	}
	return rows
}

// ScanReports renders several scan results. A single report marshals as a
// JSON object, more than one as an array.
type ScanReports []ScanReport

// MarshalJSON implements json.Marshaler.
func (rs ScanReports) MarshalJSON() ([]byte, error) {
	if len(rs) == 1 {
		return json.Marshal(rs[0].Result)
	}
	out := make([]*scan.Result, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Result)
	}
	return json.Marshal(out)
}

// WriteCSV implements CSVWriter. All results share one header row.
func (rs ScanReports) WriteCSV(w io.Writer) error {
	if len(rs) == 0 {
		return nil
	}
	out := make([]*scan.Result, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Result)
	}
	exp := &export.CSVExporter{IncludeHeader: true, FailuresOnly: rs[0].FailuresOnly}
	return exp.Export(context.Background(), out, w)
}

// RenderText implements TextRenderer.
func (rs ScanReports) RenderText(w io.Writer) error {
	for i, r := range rs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := r.RenderText(w); err != nil {
			return err
		}
	}
	return nil
}
