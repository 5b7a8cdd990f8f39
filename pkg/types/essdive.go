// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Dataset holds the subset of an ESS-DIVE package record the toolkit uses.
type Dataset struct {
	// ID is the ESS-DIVE package identifier (e.g. "ess-dive-xxxx").
	ID string `json:"id" yaml:"id"`

	// DOI is the dataset DOI, when assigned.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Title is the dataset title.
	Title string `json:"title" yaml:"title"`

	// Keywords lists the dataset's keyword/variable annotations.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Provider is the project or provider name.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// Files lists the distributions attached to the dataset.
	Files []DataFile `json:"files,omitempty" yaml:"files,omitempty"`
}

// DataFile is one downloadable distribution of a dataset.
type DataFile struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`

	// Encoding is the declared media type (e.g. "text/csv").
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	// DatasetID links the file back to its dataset.
	DatasetID string `json:"dataset_id,omitempty" yaml:"dataset_id,omitempty"`
}

// VariableName is one candidate variable name extracted from a dataset's
// data files or metadata, with optional provenance fields.
type VariableName struct {
	// Name is the variable name as found (column header, attribute name,
	// or keyword).
	Name string `json:"name" yaml:"name"`

	// Frequency counts how many files the name appeared in.
	Frequency int `json:"frequency" yaml:"frequency"`

	// Source names where the variable came from (file name or "keywords").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Units carries the declared unit when a data dictionary provided one.
	Units string `json:"units,omitempty" yaml:"units,omitempty"`

	// Definition carries the data-dictionary definition when present.
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
}
