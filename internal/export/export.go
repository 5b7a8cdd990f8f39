// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes record sets to JSON, YAML, CSV, or TSV files,
// flattening nested structures for the tabular formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Format identifies an output encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
)

// DetectFormat resolves the output format from an explicit hint or,
// when the hint is auto, from the file extension. Unknown extensions
// default to JSON.
func DetectFormat(path string, hint Format) Format {
	if hint != FormatAuto && hint != "" {
		return Format(strings.ToLower(string(hint)))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Records writes records to path in the given format. JSON and YAML
// output preserve nesting; CSV and TSV flatten each record first and use
// the sorted union of all flattened keys as the header.
func Records(records []map[string]any, path string, format Format) error {
	switch DetectFormat(path, format) {
	case FormatJSON:
		return writeJSON(records, path)
	case FormatYAML:
		return writeYAML(records, path)
	case FormatCSV:
		return writeDelimited(records, path, ',')
	case FormatTSV:
		return writeDelimited(records, path, '\t')
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Flatten collapses a nested record into a single-level map. Nested
// maps contribute keys joined with underscores. A list of scalars
// becomes a pipe-joined string; a list of maps becomes a _count column
// plus, when every element has an id field, a pipe-joined _ids column.
func Flatten(record map[string]any) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, "", record)
	return flat
}

func flattenInto(flat map[string]any, prefix string, record map[string]any) {
	for key, value := range record {
		name := key
		if prefix != "" {
			name = prefix + "_" + key
		}

		switch v := value.(type) {
		case map[string]any:
			flattenInto(flat, name, v)
		case []any:
			flattenList(flat, name, v)
		default:
			flat[name] = value
		}
	}
}

func flattenList(flat map[string]any, name string, list []any) {
	if len(list) == 0 {
		flat[name] = ""
		return
	}

	if _, ok := list[0].(map[string]any); ok {
		flat[name+"_count"] = len(list)
		ids := make([]string, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return
			}
			id, ok := m["id"].(string)
			if !ok {
				return
			}
			ids = append(ids, id)
		}
		flat[name+"_ids"] = strings.Join(ids, "|")
		return
	}

	parts := make([]string, 0, len(list))
	for _, item := range list {
		parts = append(parts, stringify(item))
	}
	flat[name] = strings.Join(parts, "|")
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func writeJSON(records []map[string]any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeYAML(records []map[string]any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return enc.Close()
}

func writeDelimited(records []map[string]any, path string, comma rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if len(records) == 0 {
		return nil
	}

	flattened := make([]map[string]any, 0, len(records))
	fieldSet := make(map[string]bool)
	for _, record := range records {
		flat := Flatten(record)
		flattened = append(flattened, flat)
		for key := range flat {
			fieldSet[key] = true
		}
	}

	fields := make([]string, 0, len(fieldSet))
	for key := range fieldSet {
		fields = append(fields, key)
	}
	sort.Strings(fields)

	cw := csv.NewWriter(f)
	cw.Comma = comma
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	row := make([]string, len(fields))
	for _, flat := range flattened {
		for i, field := range fields {
			if value, ok := flat[field]; ok {
				row[i] = stringify(value)
			} else {
				row[i] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
