package export

import (
	"context"
	"encoding/json"
	"io"

	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/scan"
)

// JSONExporter exports scan results to JSON.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes rs to w. A single result is written as an object, anything
// else as an array.
func (e *JSONExporter) Export(ctx context.Context, rs []*scan.Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var v any = rs
	switch len(rs) {
	case 0:
		v = []*scan.Result{}
	case 1:
		v = rs[0]
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return results.NewExportError("json", len(rs), err)
	}
	return nil
}
