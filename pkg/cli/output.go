package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ErrCSVUnsupported is returned when a value has no CSV rendering.
var ErrCSVUnsupported = errors.New("value cannot be rendered as CSV")

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: text, json, csv)", s)
	}
}

// Formatter formats command output.
type Formatter interface {
	Format(data any) ([]byte, error)
	FormatTo(w io.Writer, data any) error
}

// TextRenderer is implemented by values with a custom text rendering.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// Table is implemented by row-oriented values. Tables render as aligned
// columns in text and as records in CSV.
type Table interface {
	Header() []string
	Rows() [][]string
}

// CSVWriter is implemented by values that write their own CSV.
type CSVWriter interface {
	WriteCSV(w io.Writer) error
}

func format(f Formatter, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data any) ([]byte, error) {
	return format(f, data)
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	switch v := data.(type) {
	case TextRenderer:
		return v.RenderText(w)
	case Table:
		return writeTable(w, v)
	default:
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
}

func writeTable(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header(), "\t"))
	for _, row := range t.Rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data any) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats output as CSV.
type CSVFormatter struct {
	// Headers overrides a Table's header row.
	Headers []string
}

// Format converts data to CSV format.
func (f *CSVFormatter) Format(data any) ([]byte, error) {
	return format(f, data)
}

// FormatTo writes data to writer in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data any) error {
	switch v := data.(type) {
	case CSVWriter:
		return v.WriteCSV(w)
	case Table:
		cw := csv.NewWriter(w)
		header := f.Headers
		if len(header) == 0 {
			header = v.Header()
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(v.Rows()); err != nil {
			return err
		}
		return cw.Error()
	default:
		return fmt.Errorf("%w: %T", ErrCSVUnsupported, data)
	}
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
