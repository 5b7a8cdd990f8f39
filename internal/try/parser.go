// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package try parses species, trait, and dataset listings published by
// the TRY plant trait database.
package try

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bioepic-data/trowel/internal/htmlutil"
)

// SpeciesRecord is one row of the TRY accepted species table.
type SpeciesRecord struct {
	AccSpeciesID   int    `json:"acc_species_id"`
	AccSpeciesName string `json:"acc_species_name"`
	ObsNum         int    `json:"obs_num"`
	ObsGRNum       int    `json:"obs_gr_num"`
	MeasNum        int    `json:"meas_num"`
	MeasGRNum      int    `json:"meas_gr_num"`
	TraitNum       int    `json:"trait_num"`
	PubNum         int    `json:"pub_num"`
	AccSpecNum     int    `json:"acc_spec_num"`
}

// TraitRecord is one row of the TRY trait list.
type TraitRecord struct {
	TraitID    int    `json:"trait_id"`
	Trait      string `json:"trait"`
	ObsNum     int    `json:"obs_num"`
	ObsGRNum   int    `json:"obs_gr_num"`
	PubNum     int    `json:"pub_num"`
	AccSpecNum int    `json:"acc_spec_num"`
}

// DatasetEntry is one dataset description from the TRY file archive,
// rendered on the site as a key/value table per dataset.
type DatasetEntry struct {
	Title                string            `json:"title"`
	ArchiveID            string            `json:"try_file_archive_id,omitempty"`
	RightsOfUse          string            `json:"rights_of_use,omitempty"`
	PublicationDate      string            `json:"publication_date,omitempty"`
	Version              string            `json:"version,omitempty"`
	Author               string            `json:"author,omitempty"`
	Contributors         string            `json:"contributors,omitempty"`
	ReferencePublication string            `json:"reference_publication,omitempty"`
	ReferenceDataPackage string            `json:"reference_data_package,omitempty"`
	DOI                  string            `json:"doi,omitempty"`
	Format               string            `json:"format,omitempty"`
	FileName             string            `json:"file_name,omitempty"`
	Description          string            `json:"description,omitempty"`
	Geolocation          string            `json:"geolocation,omitempty"`
	TemporalCoverage     string            `json:"temporal_coverage,omitempty"`
	TaxonomicCoverage    string            `json:"taxonomic_coverage,omitempty"`
	FieldList            []string          `json:"field_list,omitempty"`
	Extra                map[string]string `json:"extra_fields,omitempty"`
}

// ParseSpeciesTable reads the tab-separated accepted species export.
func ParseSpeciesTable(r io.Reader) ([]SpeciesRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading species header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []SpeciesRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading species row: %w", err)
		}
		records = append(records, SpeciesRecord{
			AccSpeciesID:   toInt(field(row, "AccSpeciesID")),
			AccSpeciesName: field(row, "AccSpeciesName"),
			ObsNum:         toInt(field(row, "ObsNum")),
			ObsGRNum:       toInt(field(row, "ObsGRNum")),
			MeasNum:        toInt(field(row, "MeasNum")),
			MeasGRNum:      toInt(field(row, "MeasGRNum")),
			TraitNum:       toInt(field(row, "TraitNum")),
			PubNum:         toInt(field(row, "PubNum")),
			AccSpecNum:     toInt(field(row, "AccSpecNum")),
		})
	}
	return records, nil
}

// ParseSpeciesList reads a plain species list, one name per line.
func ParseSpeciesList(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ParseTraits extracts the trait list table from the TRY traits page.
func ParseTraits(r io.Reader) ([]TraitRecord, error) {
	tables, err := htmlutil.ParseTables(r)
	if err != nil {
		return nil, err
	}
	table := htmlutil.FindTable(tables, "traitid", "trait")
	if len(table) < 2 {
		return nil, nil
	}

	var records []TraitRecord
	for _, row := range table[1:] {
		if len(row) < 2 {
			continue
		}
		m := htmlutil.RowMap(table.Header(), row)
		records = append(records, TraitRecord{
			TraitID:    toInt(m["traitid"]),
			Trait:      m["trait"],
			ObsNum:     toInt(m["obsnum"]),
			ObsGRNum:   toInt(m["obsgrnum"]),
			PubNum:     toInt(m["pubnum"]),
			AccSpecNum: toInt(m["accspecnum"]),
		})
	}
	return records, nil
}

// ParseDatasets extracts the dataset list table, returning its header
// and one column map per row. The table whose header mentions datasets
// is preferred; otherwise the first table with data rows is used.
func ParseDatasets(r io.Reader) ([]string, []map[string]string, error) {
	tables, err := htmlutil.ParseTables(r)
	if err != nil {
		return nil, nil, err
	}

	var table, first htmlutil.Table
	for _, t := range tables {
		if len(t) < 2 {
			continue
		}
		if first == nil {
			first = t
		}
		for _, cell := range t.Header() {
			if strings.Contains(strings.ToLower(cell), "dataset") {
				table = t
				break
			}
		}
		if table != nil {
			break
		}
	}
	if table == nil {
		table = first
	}
	if len(table) < 2 {
		return nil, nil, nil
	}

	header := table.Header()
	var records []map[string]string
	for _, row := range table[1:] {
		record := make(map[string]string, len(header))
		empty := true
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			if value != "" {
				empty = false
			}
			record[name] = value
		}
		if !empty {
			records = append(records, record)
		}
	}
	return header, records, nil
}

var knownEntryFields = map[string]bool{
	"Title": true, "TRY File Archive ID": true, "Rights of use": true,
	"Publication Date": true, "Version": true, "Author": true,
	"Contributors": true, "Reference to publication": true,
	"Reference to data package": true, "DOI": true, "Format": true,
	"File name": true, "Description": true, "Geolocation": true,
	"Temporal coverage": true, "Taxonomic coverage": true, "Field list": true,
}

// ParseDatasetEntries extracts dataset descriptions from the archive
// page, where each dataset is its own two-column key/value table with
// a Title row first.
func ParseDatasetEntries(r io.Reader) ([]DatasetEntry, error) {
	tables, err := htmlutil.ParseTables(r)
	if err != nil {
		return nil, err
	}

	var entries []DatasetEntry
	for _, table := range tables {
		if len(table) < 2 || len(table[0]) == 0 || !strings.Contains(table[0][0], "Title") {
			continue
		}

		fields := make(map[string]string)
		for _, row := range table {
			if len(row) < 2 {
				continue
			}
			key := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(row[0]), ":"))
			if key != "" {
				fields[key] = strings.TrimSpace(row[1])
			}
		}

		var fieldList []string
		for _, item := range strings.Split(fields["Field list"], ",") {
			if item = strings.TrimSpace(item); item != "" {
				fieldList = append(fieldList, item)
			}
		}

		extra := make(map[string]string)
		for key, value := range fields {
			if !knownEntryFields[key] {
				extra[key] = value
			}
		}
		if len(extra) == 0 {
			extra = nil
		}

		entries = append(entries, DatasetEntry{
			Title:                fields["Title"],
			ArchiveID:            fields["TRY File Archive ID"],
			RightsOfUse:          fields["Rights of use"],
			PublicationDate:      fields["Publication Date"],
			Version:              fields["Version"],
			Author:               fields["Author"],
			Contributors:         fields["Contributors"],
			ReferencePublication: fields["Reference to publication"],
			ReferenceDataPackage: fields["Reference to data package"],
			DOI:                  fields["DOI"],
			Format:               fields["Format"],
			FileName:             fields["File name"],
			Description:          fields["Description"],
			Geolocation:          fields["Geolocation"],
			TemporalCoverage:     fields["Temporal coverage"],
			TaxonomicCoverage:    fields["Taxonomic coverage"],
			FieldList:            fieldList,
			Extra:                extra,
		})
	}
	return entries, nil
}

func toInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
