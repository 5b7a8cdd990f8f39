// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ontology resolves ontology identifiers to search backends and
// queries them for candidate terms. Three backend kinds are supported:
// remote-catalog (BioPortal), generic-lookup-service (OLS), and
// local-index (a local SQLite build of an OBO ontology).
package ontology

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bioepic-data/trowel/pkg/types"
)

// Candidate is one term returned by a backend search, in backend order.
type Candidate struct {
	// TermID is the term identifier in CURIE form when compressible,
	// otherwise the raw identifier the backend returned.
	TermID string

	// Ontology is the ontology prefix the term belongs to.
	Ontology string

	// Label is the primary display label.
	Label string
}

// Searcher queries a single ontology backend. Implementations preserve
// the backend's result order; the grounding engine relies on it for
// stable tie-breaking.
type Searcher interface {
	// Search returns up to limit candidates for a plain-text query.
	// An empty query is passed through and yields an unfiltered scan
	// where the backend supports one (the local index does).
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// Describer retrieves the full record for a single term. Not all
// backends implement it.
type Describer interface {
	Describe(ctx context.Context, termID string) (types.TermDetails, error)
}

// UnknownOntologyError reports an identifier that resolves to no
// catalog entry and no recognized selector. It is a configuration
// error: nothing was queried.
type UnknownOntologyError struct {
	ID string
}

func (e *UnknownOntologyError) Error() string {
	return fmt.Sprintf("unknown ontology %q: not in the catalog and not a recognized selector", e.ID)
}

// BackendError wraps a transport or protocol failure from an ontology
// backend. Callers use it to tell "the backend broke" apart from
// "the ontology identifier was wrong".
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// URI patterns that compress to CURIEs. BioPortal returns full URIs
// for most ontologies; w3id.org hosts BERVO-style vocabularies and
// purl.obolibrary.org hosts OBO Foundry ontologies.
var (
	w3idPattern = regexp.MustCompile(`^https?://w3id\.org/\w+/([A-Za-z]+)_([A-Za-z0-9]+)$`)
	oboPattern  = regexp.MustCompile(`^https?://purl\.obolibrary\.org/obo/([A-Za-z]+)_([A-Za-z0-9]+)$`)
)

// CompressURI converts a full term URI to a CURIE when it matches a
// known pattern. It returns the input unchanged when no pattern applies.
func CompressURI(uri string) string {
	for _, p := range []*regexp.Regexp{w3idPattern, oboPattern} {
		if m := p.FindStringSubmatch(uri); m != nil {
			return m[1] + ":" + m[2]
		}
	}
	return uri
}

// curiePrefix returns the ontology prefix of a CURIE, or fallback when
// the identifier has no prefix.
func curiePrefix(id, fallback string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[:i]
		}
	}
	return fallback
}
