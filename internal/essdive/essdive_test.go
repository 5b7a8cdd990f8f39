package essdive

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioepic-data/trowel/pkg/types"
)

func testClient() *Client {
	return NewClient(types.EssdiveConfig{Token: "test-token", Workers: 2})
}

func searchPayload() map[string]any {
	return map[string]any{
		"total": 1,
		"result": []map[string]any{{
			"id": "ess-dive-abc123",
			"dataset": map[string]any{
				"@id":      "http://dx.doi.org/10.15485/1234567",
				"name":     "Soil respiration at the watershed site",
				"keywords": []string{"soil", "respiration"},
				"provider": map[string]any{"name": "SPRUCE"},
				"distribution": []map[string]any{{
					"name":           "soil_resp.csv",
					"contentUrl":     "https://data.example.org/soil_resp.csv",
					"encodingFormat": "text/csv",
				}},
			},
		}},
	}
}

func TestSearch(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(searchPayload())
	}))
	defer server.Close()

	orig := apiBase
	apiBase = server.URL
	defer func() { apiBase = orig }()

	result, err := testClient().Search(context.Background(), SearchOptions{
		Keyword:    "soil",
		Provider:   "SPRUCE",
		PageSize:   25,
		PublicOnly: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/packages", gotPath)
	assert.Equal(t, []string{"soil"}, gotQuery["keyword"])
	assert.Equal(t, []string{"SPRUCE"}, gotQuery["providerName"])
	assert.Equal(t, []string{"25"}, gotQuery["page_size"])
	assert.Equal(t, []string{"true"}, gotQuery["isPublic"])
	assert.Equal(t, "Bearer test-token", gotAuth)

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Datasets, 1)
	ds := result.Datasets[0]
	assert.Equal(t, "ess-dive-abc123", ds.ID)
	assert.Equal(t, "10.15485/1234567", ds.DOI)
	assert.Equal(t, "Soil respiration at the watershed site", ds.Title)
	assert.Equal(t, "SPRUCE", ds.Provider)
	require.Len(t, ds.Files, 1)
	assert.Equal(t, "soil_resp.csv", ds.Files[0].Name)
	assert.Equal(t, "ess-dive-abc123", ds.Files[0].DatasetID)
}

func TestSearchExtraParams(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(searchPayload())
	}))
	defer server.Close()

	orig := apiBase
	apiBase = server.URL
	defer func() { apiBase = orig }()

	_, err := testClient().Search(context.Background(), SearchOptions{
		Keyword:    "soil",
		PublicOnly: true,
		Extra: map[string]string{
			"filter":   `{"status":"active"}`,
			"isPublic": "false",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{`{"status":"active"}`}, gotQuery["filter"])
	// Extra entries win over the named fields.
	assert.Equal(t, []string{"false"}, gotQuery["isPublic"])
	assert.Equal(t, []string{"soil"}, gotQuery["keyword"])
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"yaml pair", "name: test", `{"name":"test"}`},
		{"json passthrough", `{"status": {"$eq": "active"}}`, `{"status":{"$eq":"active"}}`},
		{"whitespace trimmed", "  name: test  ", `{"name":"test"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilterRejectsNonMapping(t *testing.T) {
	_, err := ParseFilter("just a string")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter syntax")
}

func TestGetDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/packages/ess-dive-abc123") {
			http.NotFound(w, r)
			return
		}
		payload := searchPayload()["result"].([]map[string]any)[0]
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	orig := apiBase
	apiBase = server.URL
	defer func() { apiBase = orig }()

	ds, err := testClient().GetDataset(context.Background(), "ess-dive-abc123")
	require.NoError(t, err)
	assert.Equal(t, "10.15485/1234567", ds.DOI)

	_, err = testClient().GetDataset(context.Background(), "")
	assert.Error(t, err)
}

func TestGetDatasetHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer server.Close()

	orig := apiBase
	apiBase = server.URL
	defer func() { apiBase = orig }()

	_, err := testClient().GetDataset(context.Background(), "ess-dive-abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("text") == "10.15485/1234567" {
			json.NewEncoder(w).Encode(searchPayload())
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"total": 0, "result": []any{}})
	}))
	defer server.Close()

	orig := apiBase
	apiBase = server.URL
	defer func() { apiBase = orig }()

	outDir := t.TempDir()
	var buf bytes.Buffer
	err := FetchMetadata(context.Background(), testClient(),
		[]string{"10.15485/1234567", "10.15485/0000000"}, outDir, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "warning: could not resolve 10.15485/0000000")
	assert.Contains(t, buf.String(), "1 of 2 DOIs resolved, 1 failed")

	results, err := os.ReadFile(filepath.Join(outDir, ResultsFile))
	require.NoError(t, err)
	assert.Contains(t, string(results), "10.15485/1234567\tess-dive-abc123\tSoil respiration at the watershed site\tSPRUCE\tsoil|respiration")

	freqs, err := os.ReadFile(filepath.Join(outDir, FrequenciesFile))
	require.NoError(t, err)
	assert.Contains(t, string(freqs), "respiration\t1")
	assert.Contains(t, string(freqs), "soil\t1")

	files, err := os.ReadFile(filepath.Join(outDir, FiletableFile))
	require.NoError(t, err)
	assert.Contains(t, string(files), "soil_resp.csv\thttps://data.example.org/soil_resp.csv\ttext/csv")
}

func TestFetchMetadataAllFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"total": 0, "result": []any{}})
	}))
	defer server.Close()

	orig := apiBase
	apiBase = server.URL
	defer func() { apiBase = orig }()

	var buf bytes.Buffer
	err := FetchMetadata(context.Background(), testClient(), []string{"10.1/none"}, t.TempDir(), &buf)
	assert.Error(t, err)
}

func TestReadDOIFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dois.txt")
	require.NoError(t, os.WriteFile(path, []byte("10.15485/1234567\n\n10.15485/7654321\n"), 0o644))

	dois, err := ReadDOIFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.15485/1234567", "10.15485/7654321"}, dois)
}

func TestExtractVariables(t *testing.T) {
	dataServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/soil_resp.csv":
			w.Write([]byte("timestamp,soil_temp,co2_flux\n2020-01-01,4.2,0.9\n"))
		case "/soil_resp_dd.csv":
			w.Write([]byte("Column_or_Row_Name,Unit,Definition\nsoil_temp,celsius,Soil temperature at 5 cm\n"))
		case "/metadata.xml":
			w.Write([]byte(`<eml><attributeName>co2_flux</attributeName><keyword>respiration</keyword></eml>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer dataServer.Close()

	files := []types.DataFile{
		{Name: "soil_resp.csv", URL: dataServer.URL + "/soil_resp.csv"},
		{Name: "soil_resp_dd.csv", URL: dataServer.URL + "/soil_resp_dd.csv"},
		{Name: "metadata.xml", URL: dataServer.URL + "/metadata.xml"},
		{Name: "missing.csv", URL: dataServer.URL + "/missing.csv"},
		{Name: "photo.jpg", URL: dataServer.URL + "/photo.jpg"},
	}

	outDir := t.TempDir()
	var buf bytes.Buffer
	// One worker keeps the merge order, and so the source column,
	// deterministic.
	client := NewClient(types.EssdiveConfig{Workers: 1})
	err := ExtractVariables(context.Background(), client, files, outDir, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "warning: skipping missing.csv")
	assert.Contains(t, buf.String(), "4 of 5 files processed, 1 failed")

	out, err := os.ReadFile(filepath.Join(outDir, VariablesFile))
	require.NoError(t, err)
	content := string(out)

	// soil_temp and co2_flux appear twice each, the rest once.
	assert.Contains(t, content, "co2_flux\t2")
	assert.Contains(t, content, "soil_temp\t2\tsoil_resp.csv\tcelsius\tSoil temperature at 5 cm")
	assert.Contains(t, content, "timestamp\t1")
	assert.Contains(t, content, "respiration\t1\tmetadata.xml")
}

func TestReadFiletable(t *testing.T) {
	path := filepath.Join(t.TempDir(), FiletableFile)
	content := "dataset_id\tdoi\tname\turl\tencoding\n" +
		"ess-dive-abc123\t10.15485/1234567\tsoil_resp.csv\thttps://data.example.org/soil_resp.csv\ttext/csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	files, err := ReadFiletable(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "soil_resp.csv", files[0].Name)
	assert.Equal(t, "ess-dive-abc123", files[0].DatasetID)
}

func TestParseXMLNamesMalformed(t *testing.T) {
	_, err := parseXMLNames(strings.NewReader("<eml><attributeName>x</attribute"), "bad.xml")
	assert.Error(t, err)
}
