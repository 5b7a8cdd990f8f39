package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestFlatten(t *testing.T) {
	record := map[string]any{
		"id": "ENVO:1",
		"lat_lon": map[string]any{
			"latitude":  34.5,
			"longitude": -118.2,
		},
		"keywords": []any{"soil", "moisture"},
		"files": []any{
			map[string]any{"id": "f1", "name": "a.csv"},
			map[string]any{"id": "f2", "name": "b.csv"},
		},
		"empty": []any{},
	}

	flat := Flatten(record)
	assert.Equal(t, "ENVO:1", flat["id"])
	assert.Equal(t, 34.5, flat["lat_lon_latitude"])
	assert.Equal(t, -118.2, flat["lat_lon_longitude"])
	assert.Equal(t, "soil|moisture", flat["keywords"])
	assert.Equal(t, 2, flat["files_count"])
	assert.Equal(t, "f1|f2", flat["files_ids"])
	assert.Equal(t, "", flat["empty"])
}

func TestFlattenListOfMapsWithoutIDs(t *testing.T) {
	flat := Flatten(map[string]any{
		"files": []any{map[string]any{"name": "a.csv"}},
	})
	assert.Equal(t, 1, flat["files_count"])
	_, hasIDs := flat["files_ids"]
	assert.False(t, hasIDs)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("out.csv", FormatAuto))
	assert.Equal(t, FormatTSV, DetectFormat("out.tsv", FormatAuto))
	assert.Equal(t, FormatYAML, DetectFormat("out.yaml", FormatAuto))
	assert.Equal(t, FormatYAML, DetectFormat("out.yml", FormatAuto))
	assert.Equal(t, FormatJSON, DetectFormat("out.json", FormatAuto))
	assert.Equal(t, FormatJSON, DetectFormat("out.dat", FormatAuto))
	assert.Equal(t, FormatTSV, DetectFormat("out.json", FormatTSV))
}

func TestRecordsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	records := []map[string]any{
		{"id": "1", "nested": map[string]any{"a": "b"}},
	}
	require.NoError(t, Records(records, path, FormatAuto))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	// JSON keeps the nesting.
	assert.Equal(t, map[string]any{"a": "b"}, decoded[0]["nested"])
}

func TestRecordsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	records := []map[string]any{
		{"id": "1", "nested": map[string]any{"a": "b"}},
	}
	require.NoError(t, Records(records, path, FormatAuto))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, map[string]any{"a": "b"}, decoded[0]["nested"])
}

func TestRecordsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := []map[string]any{
		{"name": "soil moisture", "score": 0.9},
		{"name": "ph", "extra": "x"},
	}
	require.NoError(t, Records(records, path, FormatAuto))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	// Header is the sorted union of keys across records.
	assert.Contains(t, content, "extra,name,score\n")
	assert.Contains(t, content, ",soil moisture,0.9\n")
	assert.Contains(t, content, "x,ph,\n")
}

func TestRecordsTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	records := []map[string]any{{"a": "1", "b": "2"}}
	require.NoError(t, Records(records, path, FormatAuto))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n1\t2\n", string(data))
}

func TestRecordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Records(nil, path, FormatAuto))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
