package element

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a snapshot encoding.
type Format string

const (
	// FormatYAML is a YAML snapshot.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON snapshot.
	FormatJSON Format = "json"
)

// FormatFromPath infers the snapshot format from a file extension.
// Anything other than ".json" is treated as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadTree reads and builds a snapshot tree from path.
func LoadTree(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree snapshot %q: %w", path, err)
	}
	defer f.Close()

	root, err := DecodeTree(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load tree snapshot %q: %w", path, err)
	}
	return root, nil
}

// DecodeTree decodes a snapshot from r and builds it.
func DecodeTree(r io.Reader, format Format) (*Node, error) {
	var spec NodeSpec
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("failed to parse JSON snapshot: %w", err)
		}
		normalizeNumbers(spec.Properties)
		walkSpecs(spec.Children)
	case FormatYAML, "":
		if err := yaml.NewDecoder(r).Decode(&spec); err != nil {
			return nil, fmt.Errorf("failed to parse YAML snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	return Build(spec)
}

func walkSpecs(specs []NodeSpec) {
	for i := range specs {
		normalizeNumbers(specs[i].Properties)
		walkSpecs(specs[i].Children)
	}
}

// normalizeNumbers turns json.Number values into int64 or float64 so JSON and
// YAML snapshots expose the same property kinds.
func normalizeNumbers(props map[string]any) {
	for k, v := range props {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			props[k] = i
		} else if f, err := n.Float64(); err == nil {
			props[k] = f
		}
	}
}
