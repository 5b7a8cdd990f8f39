// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package essdive

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bioepic-data/trowel/pkg/types"
)

// Output files written by FetchMetadata.
const (
	ResultsFile     = "results.tsv"
	FrequenciesFile = "frequencies.tsv"
	FiletableFile   = "filetable.tsv"
)

// FetchMetadata looks up each DOI and writes three tab-separated files
// to outDir: results.tsv with one row per resolved dataset,
// frequencies.tsv with keyword counts across all resolved datasets,
// and filetable.tsv with one row per data file. A DOI that cannot be
// resolved is reported as a warning on w and skipped; the batch only
// fails when no DOI resolves at all.
func FetchMetadata(ctx context.Context, c *Client, dois []string, outDir string, w io.Writer) error {
	if len(dois) == 0 {
		return fmt.Errorf("no DOIs to look up")
	}

	var datasets []types.Dataset
	failed := 0
	for _, doi := range dois {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ds, err := c.lookupDOI(ctx, doi)
		if err != nil {
			fmt.Fprintf(w, "warning: could not resolve %s: %v\n", doi, err)
			failed++
			continue
		}
		datasets = append(datasets, ds)
	}

	fmt.Fprintf(w, "\n%d of %d DOIs resolved, %d failed\n", len(datasets), len(dois), failed)
	if len(datasets) == 0 {
		return fmt.Errorf("none of the %d DOIs resolved", len(dois))
	}

	if err := writeResults(filepath.Join(outDir, ResultsFile), datasets); err != nil {
		return err
	}
	if err := writeFrequencies(filepath.Join(outDir, FrequenciesFile), datasets); err != nil {
		return err
	}
	if err := writeFiletable(filepath.Join(outDir, FiletableFile), datasets); err != nil {
		return err
	}
	return nil
}

// lookupDOI resolves a DOI through the search endpoint. The API does
// not index bare DOIs under the package path, so a text search scoped
// to one result page is used and the first hit whose DOI matches wins.
func (c *Client) lookupDOI(ctx context.Context, doi string) (types.Dataset, error) {
	result, err := c.Search(ctx, SearchOptions{Keyword: doi, PageSize: 10, PublicOnly: true})
	if err != nil {
		return types.Dataset{}, err
	}
	for _, ds := range result.Datasets {
		if strings.EqualFold(ds.DOI, doi) || strings.EqualFold(ds.ID, doi) {
			return ds, nil
		}
	}
	if len(result.Datasets) > 0 {
		return result.Datasets[0], nil
	}
	return types.Dataset{}, fmt.Errorf("no dataset found for %s", doi)
}

// ReadDOIFile reads DOIs from a file with one entry per line. Blank
// lines are ignored.
func ReadDOIFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DOI file: %w", err)
	}
	var dois []string
	for _, line := range strings.Split(string(data), "\n") {
		doi := strings.TrimSpace(line)
		if doi == "" {
			continue
		}
		dois = append(dois, doi)
	}
	if len(dois) == 0 {
		return nil, fmt.Errorf("DOI file %s is empty", path)
	}
	return dois, nil
}

func writeResults(path string, datasets []types.Dataset) error {
	rows := [][]string{{"doi", "id", "title", "provider", "keywords"}}
	for _, ds := range datasets {
		rows = append(rows, []string{
			ds.DOI, ds.ID, ds.Title, ds.Provider, strings.Join(ds.Keywords, "|"),
		})
	}
	return writeTSV(path, rows)
}

func writeFrequencies(path string, datasets []types.Dataset) error {
	counts := make(map[string]int)
	for _, ds := range datasets {
		for _, kw := range ds.Keywords {
			counts[strings.ToLower(strings.TrimSpace(kw))]++
		}
	}

	keywords := make([]string, 0, len(counts))
	for kw := range counts {
		keywords = append(keywords, kw)
	}
	// Most frequent first, ties alphabetical for stable output.
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	rows := [][]string{{"keyword", "frequency"}}
	for _, kw := range keywords {
		rows = append(rows, []string{kw, strconv.Itoa(counts[kw])})
	}
	return writeTSV(path, rows)
}

func writeFiletable(path string, datasets []types.Dataset) error {
	rows := [][]string{{"dataset_id", "doi", "name", "url", "encoding"}}
	for _, ds := range datasets {
		for _, f := range ds.Files {
			rows = append(rows, []string{ds.ID, ds.DOI, f.Name, f.URL, f.Encoding})
		}
	}
	return writeTSV(path, rows)
}

func writeTSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '\t'
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
