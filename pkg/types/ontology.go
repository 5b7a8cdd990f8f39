// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trowel toolkit:
// ontology grounding records, term match records, ESS-DIVE dataset
// metadata, and stage configuration.
package types

// OntologyMatch is one grounded candidate for an input term.
type OntologyMatch struct {
	// TermID is the ontology-scoped identifier in CURIE form
	// (e.g. "ENVO:00000001"). Opaque to the grounding engine.
	TermID string `json:"term_id" yaml:"term_id"`

	// Label is the display label returned by the ontology backend.
	Label string `json:"label" yaml:"label"`

	// OntologyID identifies the ontology the match came from.
	OntologyID string `json:"ontology_id" yaml:"ontology_id"`

	// Confidence is the tiered match score: 1.0 for an exact label
	// match, 0.9 for a substring match in either direction, 0.7 for any
	// other candidate the backend returned. No other values occur.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// TermGrounding is the per-term outcome of a grounding batch. Exactly
// one of Matches or Err is meaningful: a term that was searched but had
// no qualifying candidates has an empty Matches slice and empty Err; a
// term whose backend query failed has Err set and no Matches.
type TermGrounding struct {
	Matches []OntologyMatch `json:"matches" yaml:"matches"`
	Err     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the backend query for this term failed.
func (g TermGrounding) Failed() bool { return g.Err != "" }

// GroundingResult maps each input term to its grounding outcome.
// Every term that was submitted appears as a key, so callers can
// distinguish "searched, nothing qualified" from "not searched".
type GroundingResult map[string]TermGrounding

// TermDetails holds the full record for a single ontology term.
type TermDetails struct {
	TermID        string                   `json:"term_id" yaml:"term_id"`
	Label         string                   `json:"label" yaml:"label"`
	Definition    string                   `json:"definition,omitempty" yaml:"definition,omitempty"`
	Synonyms      []string                 `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Relationships map[string][]RelatedTerm `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	OntologyID    string                   `json:"ontology_id" yaml:"ontology_id"`
}

// RelatedTerm is one filler of an outgoing relationship.
type RelatedTerm struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}
