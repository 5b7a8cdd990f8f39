// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package essdive

import (
	"context"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bioepic-data/trowel/internal/httputil"
	"github.com/bioepic-data/trowel/pkg/types"
)

// VariablesFile is the inventory written by ExtractVariables.
const VariablesFile = "variable_names.tsv"

// maxTabularRead bounds how much of a tabular file is downloaded; only
// the header row is needed.
const maxTabularRead = 1 << 20

// ExtractVariables downloads the listed data files, pulls variable
// names out of tabular headers, keywords and attribute names out of
// XML metadata, and units and definitions out of data dictionary
// files, then writes the aggregated inventory to
// outDir/variable_names.tsv. Files are processed by a bounded worker
// pool; a file that cannot be fetched or parsed is reported as a
// warning on w and skipped.
func ExtractVariables(ctx context.Context, c *Client, files []types.DataFile, outDir string, w io.Writer) error {
	if len(files) == 0 {
		return fmt.Errorf("no data files to process")
	}

	jobs := make(chan types.DataFile)
	var mu sync.Mutex
	inventory := make(map[string]*types.VariableName)
	failed := 0

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				vars, err := c.extractFile(ctx, file)
				mu.Lock()
				if err != nil {
					fmt.Fprintf(w, "warning: skipping %s: %v\n", file.Name, err)
					failed++
				} else {
					mergeVariables(inventory, vars)
				}
				mu.Unlock()
			}
		}()
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- file:
		}
	}
	close(jobs)
	wg.Wait()

	fmt.Fprintf(w, "\n%d of %d files processed, %d failed\n", len(files)-failed, len(files), failed)

	names := make([]*types.VariableName, 0, len(inventory))
	for _, v := range inventory {
		names = append(names, v)
	}
	// Most frequent first, ties alphabetical for stable output.
	sort.Slice(names, func(i, j int) bool {
		if names[i].Frequency != names[j].Frequency {
			return names[i].Frequency > names[j].Frequency
		}
		return names[i].Name < names[j].Name
	})

	rows := [][]string{{"name", "frequency", "source", "units", "definition"}}
	for _, v := range names {
		rows = append(rows, []string{v.Name, strconv.Itoa(v.Frequency), v.Source, v.Units, v.Definition})
	}
	return writeTSV(filepath.Join(outDir, VariablesFile), rows)
}

// ReadFiletable loads the file inventory produced by FetchMetadata.
func ReadFiletable(path string) ([]types.DataFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening filetable: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '\t'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("filetable %s has no file rows", path)
	}

	var files []types.DataFile
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		files = append(files, types.DataFile{
			DatasetID: rec[0],
			Name:      rec[2],
			URL:       rec[3],
			Encoding:  rec[4],
		})
	}
	return files, nil
}

func (c *Client) extractFile(ctx context.Context, file types.DataFile) ([]types.VariableName, error) {
	switch {
	case isDataDictionary(file.Name):
		body, err := c.fetch(ctx, file.URL, maxTabularRead)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return parseDataDictionary(body, file.Name)
	case isTabular(file.Name):
		body, err := c.fetch(ctx, file.URL, maxTabularRead)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return parseTabularHeader(body, file.Name)
	case strings.HasSuffix(strings.ToLower(file.Name), ".xml"):
		body, err := c.fetch(ctx, file.URL, 0)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return parseXMLNames(body, file.Name)
	default:
		return nil, nil
	}
}

func (c *Client) fetch(ctx context.Context, rawURL string, limit int64) (io.ReadCloser, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("file has no download URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("downloading: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}
	if limit > 0 {
		return struct {
			io.Reader
			io.Closer
		}{io.LimitReader(resp.Body, limit), resp.Body}, nil
	}
	return resp.Body, nil
}

func isTabular(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

// isDataDictionary recognizes the reporting-format convention of
// shipping a <name>_dd.csv alongside each data file.
func isDataDictionary(name string) bool {
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	return isTabular(name) && (strings.HasSuffix(base, "_dd") || strings.Contains(base, "data_dictionary"))
}

func tabularComma(name string) rune {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return ','
	}
	return '\t'
}

// parseTabularHeader reads the first record of a delimited file and
// reports each header field as a variable occurrence.
func parseTabularHeader(r io.Reader, name string) ([]types.VariableName, error) {
	cr := csv.NewReader(r)
	cr.Comma = tabularComma(name)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var vars []types.VariableName
	for _, field := range header {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		vars = append(vars, types.VariableName{Name: field, Frequency: 1, Source: name})
	}
	return vars, nil
}

// parseDataDictionary reads a reporting-format data dictionary, whose
// rows describe one variable each with its unit and definition.
func parseDataDictionary(r io.Reader, name string) ([]types.VariableName, error) {
	cr := csv.NewReader(r)
	cr.Comma = tabularComma(name)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading data dictionary: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	nameCol, unitCol, defCol := -1, -1, -1
	for i, field := range records[0] {
		switch {
		case strings.EqualFold(field, "Column_or_Row_Name"), strings.EqualFold(field, "name"):
			nameCol = i
		case strings.EqualFold(field, "Unit"), strings.EqualFold(field, "units"):
			unitCol = i
		case strings.EqualFold(field, "Definition"), strings.EqualFold(field, "description"):
			defCol = i
		}
	}
	if nameCol == -1 {
		return nil, fmt.Errorf("data dictionary has no name column")
	}

	var vars []types.VariableName
	for _, rec := range records[1:] {
		if nameCol >= len(rec) {
			continue
		}
		v := types.VariableName{Name: strings.TrimSpace(rec[nameCol]), Frequency: 1, Source: name}
		if v.Name == "" {
			continue
		}
		if unitCol >= 0 && unitCol < len(rec) {
			v.Units = strings.TrimSpace(rec[unitCol])
		}
		if defCol >= 0 && defCol < len(rec) {
			v.Definition = strings.TrimSpace(rec[defCol])
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// parseXMLNames scans metadata XML for attributeName and keyword
// elements, the two places EML-style records carry variable names.
func parseXMLNames(r io.Reader, name string) ([]types.VariableName, error) {
	decoder := xml.NewDecoder(r)
	var vars []types.VariableName
	var capture bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			capture = t.Name.Local == "attributeName" || t.Name.Local == "keyword"
		case xml.CharData:
			if capture {
				if text := strings.TrimSpace(string(t)); text != "" {
					vars = append(vars, types.VariableName{Name: text, Frequency: 1, Source: name})
				}
				capture = false
			}
		case xml.EndElement:
			capture = false
		}
	}
	return vars, nil
}

// mergeVariables folds one file's variables into the inventory,
// keyed case-insensitively. Units and definitions from data
// dictionaries fill empty fields but never overwrite.
func mergeVariables(inventory map[string]*types.VariableName, vars []types.VariableName) {
	for _, v := range vars {
		key := strings.ToLower(v.Name)
		existing, ok := inventory[key]
		if !ok {
			entry := v
			inventory[key] = &entry
			continue
		}
		existing.Frequency += v.Frequency
		if existing.Units == "" {
			existing.Units = v.Units
		}
		if existing.Definition == "" {
			existing.Definition = v.Definition
		}
	}
}
