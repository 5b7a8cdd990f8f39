// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fred parses trait, species, and data source tables scraped
// from the Fine-Root Ecology Database web pages.
package fred

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/bioepic-data/trowel/internal/htmlutil"
)

// TraitRecord is one row of the FRED trait catalog.
type TraitRecord struct {
	TraitCategory string `json:"trait_category"`
	TraitType     string `json:"trait_type"`
	Trait         string `json:"trait"`
	ColumnID      string `json:"column_id"`
	Description   string `json:"description"`
	SingleSpecies int    `json:"single_species_observations"`
	MultiSpecies  int    `json:"multi_species_observations"`
	Total         int    `json:"total_observations"`
}

// SpeciesRecord is one row of the FRED species list.
type SpeciesRecord struct {
	Name         string `json:"name"`
	Observations int    `json:"observations"`
}

// DataSourceRecord is one citation from the FRED data sources page.
type DataSourceRecord struct {
	Year     int    `json:"year,omitempty"`
	Citation string `json:"citation"`
	DOI      string `json:"doi,omitempty"`
}

var (
	doiPattern     = regexp.MustCompile(`https?://doi\.org/\S+`)
	displayPattern = regexp.MustCompile(`Displaying\s+(\d+)\s*-\s*(\d+)\s+of\s+(\d+)`)
	yearLine       = regexp.MustCompile(`^\d{4}$`)
	nameCountLine  = regexp.MustCompile(`^(.+?)\s+(\d+)$`)
)

// ParseTraits extracts the trait catalog table from a FRED traits
// page. A page without the expected table yields an empty slice.
func ParseTraits(r io.Reader) ([]TraitRecord, error) {
	tables, err := htmlutil.ParseTables(r)
	if err != nil {
		return nil, err
	}
	table := htmlutil.FindTable(tables, "trait category", "trait type", "traits", "column id", "total observations")
	if len(table) < 2 {
		return nil, nil
	}

	var records []TraitRecord
	for _, row := range table[1:] {
		m := htmlutil.RowMap(table.Header(), row)
		records = append(records, TraitRecord{
			TraitCategory: m["trait category"],
			TraitType:     m["trait type"],
			Trait:         m["traits"],
			ColumnID:      m["column id"],
			Description:   m["description"],
			SingleSpecies: toInt(m["single-species observations"]),
			MultiSpecies:  toInt(m["multi-species observations"]),
			Total:         toInt(m["total observations"]),
		})
	}
	return records, nil
}

// ParseSpecies extracts the species list. Pages rendered without a
// table fall back to scanning text lines of the form "name count".
func ParseSpecies(r io.Reader) ([]SpeciesRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	tables, err := htmlutil.ParseTables(strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	table := htmlutil.FindTable(tables, "scientific name", "observations")
	if table == nil {
		table = htmlutil.FindTable(tables, "name", "observations")
	}
	if len(table) >= 2 {
		var records []SpeciesRecord
		for _, row := range table[1:] {
			m := htmlutil.RowMap(table.Header(), row)
			name := m["scientific name"]
			if name == "" {
				name = m["name"]
			}
			if name == "" && len(row) > 0 {
				name = strings.TrimSpace(row[0])
			}
			records = append(records, SpeciesRecord{Name: name, Observations: toInt(m["observations"])})
		}
		return records, nil
	}

	lines, err := htmlutil.TextLines(strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	var records []SpeciesRecord
	for _, line := range lines {
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "name") && strings.Contains(lower, "observ") {
			continue
		}
		if m := nameCountLine.FindStringSubmatch(line); m != nil {
			records = append(records, SpeciesRecord{
				Name:         strings.TrimSpace(m[1]),
				Observations: toInt(m[2]),
			})
		}
	}
	return records, nil
}

// ParseDataSources extracts the citation list. The DOI is split out of
// the citation text when present, and trailing punctuation is dropped
// from both. Pages without a table fall back to text lines grouped
// under bare year headings.
func ParseDataSources(r io.Reader) ([]DataSourceRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	tables, err := htmlutil.ParseTables(strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	if table := htmlutil.FindTable(tables, "year", "citation"); len(table) >= 2 {
		var records []DataSourceRecord
		for _, row := range table[1:] {
			m := htmlutil.RowMap(table.Header(), row)
			citation, doi := splitDOI(m["citation"])
			if doi == "" {
				doi = stripTrailingPunct(m["doi"])
			}
			records = append(records, DataSourceRecord{
				Year:     toInt(m["year"]),
				Citation: citation,
				DOI:      doi,
			})
		}
		return records, nil
	}

	lines, err := htmlutil.TextLines(strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	var records []DataSourceRecord
	year := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		if yearLine.MatchString(line) {
			year = toInt(line)
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "displaying") {
			continue
		}
		if !strings.Contains(line, "http") {
			continue
		}
		citation, doi := splitDOI(line)
		records = append(records, DataSourceRecord{Year: year, Citation: citation, DOI: doi})
	}
	return records, nil
}

// ParseDisplayRange reads the "Displaying X - Y of Z" pagination
// marker. The ok result is false when the page has none.
func ParseDisplayRange(text string) (start, end, total int, ok bool) {
	m := displayPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, 0, false
	}
	return toInt(m[1]), toInt(m[2]), toInt(m[3]), true
}

// splitDOI pulls a doi.org URL out of a citation, returning the
// cleaned citation and the DOI.
func splitDOI(citation string) (string, string) {
	doi := stripTrailingPunct(doiPattern.FindString(citation))
	if doi != "" {
		citation = strings.ReplaceAll(citation, doi, "")
	}
	return stripTrailingPunct(citation), doi
}

var trailingPunct = regexp.MustCompile(`[\s.,;]+$`)

func stripTrailingPunct(s string) string {
	return strings.TrimSpace(trailingPunct.ReplaceAllString(s, ""))
}

func toInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
