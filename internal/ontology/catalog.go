// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// BackendKind tags the connection variant a catalog entry uses.
type BackendKind string

const (
	// KindRemoteCatalog queries a hosted ontology portal (BioPortal).
	KindRemoteCatalog BackendKind = "remote-catalog"

	// KindLocalIndex queries a local SQLite build of an OBO ontology.
	KindLocalIndex BackendKind = "local-index"

	// KindLookupService queries a generic term lookup service (OLS).
	KindLookupService BackendKind = "generic-lookup-service"
)

// BackendSpec describes how to reach one ontology. Exactly the fields
// its Kind needs are set.
type BackendSpec struct {
	// Kind selects the backend variant.
	Kind BackendKind `json:"kind" yaml:"kind"`

	// Acronym is the portal-side ontology acronym for remote-catalog
	// entries (e.g. "BERVO").
	Acronym string `json:"acronym,omitempty" yaml:"acronym,omitempty"`

	// Index is the SQLite database file name for local-index entries
	// (e.g. "envo.db"), resolved relative to ClientOptions.IndexDir.
	Index string `json:"index,omitempty" yaml:"index,omitempty"`

	// Name and Description are human-readable catalog metadata.
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Catalog maps lowercase ontology identifiers to backend specs. It is
// resolved once at startup and passed explicitly to the stages that
// need it; there is no ambient global lookup.
type Catalog map[string]BackendSpec

// Builtin returns the default catalog.
func Builtin() Catalog {
	return Catalog{
		"bervo": {
			Kind:        KindRemoteCatalog,
			Acronym:     "BERVO",
			Name:        "Biological and Environmental Research Variable Ontology",
			Description: "BERVO models experimental variables, conditions, and concepts in environmental research, earth science, plant science, and geochemistry",
		},
		"envo": {
			Kind:        KindLocalIndex,
			Index:       "envo.db",
			Name:        "Environment Ontology",
			Description: "ENVO covers environmental entities and processes",
		},
		"chebi": {
			Kind:        KindLocalIndex,
			Index:       "chebi.db",
			Name:        "Chemical Entities of Biological Interest",
			Description: "CHEBI covers chemical compounds and molecular entities",
		},
		"ncbitaxon": {
			Kind:        KindLocalIndex,
			Index:       "ncbitaxon.db",
			Name:        "NCBI Taxonomy",
			Description: "Taxonomy database from NCBI",
		},
		"como": {
			Kind:        KindRemoteCatalog,
			Acronym:     "COMO",
			Name:        "Context and Measurement Ontology",
			Description: "COMO provides terms for describing experimental data in environmental microbiology",
		},
		"po": {
			Kind:        KindLocalIndex,
			Index:       "po.db",
			Name:        "Plant Ontology",
			Description: "PO covers plant anatomy, morphology, and developmental stages",
		},
		"mixs": {
			Kind:        KindRemoteCatalog,
			Acronym:     "MIXS",
			Name:        "Minimal Information about any Sequence",
			Description: "MIXS provides standards for describing genomic and metagenomic sequences",
		},
	}
}

// Merge overlays extra entries onto the catalog, replacing entries with
// the same identifier. Identifiers are lowercased.
func (c Catalog) Merge(extra Catalog) {
	for id, spec := range extra {
		c[strings.ToLower(id)] = spec
	}
}

// IDs returns the catalog identifiers in sorted order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ClientOptions carries the shared pieces backends need at open time.
type ClientOptions struct {
	// HTTPClient is used by the remote backends. Required for
	// remote-catalog and generic-lookup-service entries.
	HTTPClient *http.Client

	// UserAgent is sent with every remote request.
	UserAgent string

	// APIKey authenticates remote-catalog (BioPortal) requests.
	APIKey string

	// IndexDir is the directory holding local-index database files.
	IndexDir string
}

// Open resolves an ontology identifier against the catalog and returns
// a ready Searcher. Identifiers not in the catalog may instead be
// direct selectors ("bioportal:BERVO", "sqlite:obo:envo", "ols:"),
// mirroring the selector strings researchers already use elsewhere.
// An unresolvable identifier returns *UnknownOntologyError before any
// query is attempted.
func Open(c Catalog, id string, opts ClientOptions) (Searcher, error) {
	if spec, ok := c[strings.ToLower(id)]; ok {
		return openSpec(spec, strings.ToLower(id), opts)
	}
	if spec, ontID, ok := parseSelector(id); ok {
		return openSpec(spec, ontID, opts)
	}
	return nil, &UnknownOntologyError{ID: id}
}

func openSpec(spec BackendSpec, id string, opts ClientOptions) (Searcher, error) {
	switch spec.Kind {
	case KindRemoteCatalog:
		return newBioPortalClient(spec.Acronym, opts), nil
	case KindLookupService:
		return newOLSClient(id, opts), nil
	case KindLocalIndex:
		return openLocalIndex(spec.Index, id, opts)
	default:
		return nil, fmt.Errorf("ontology %s: unsupported backend kind %q", id, spec.Kind)
	}
}

// parseSelector interprets a direct selector string. Supported forms:
// "bioportal:ACRONYM", "sqlite:obo:name", and "ols:" (cross-ontology).
func parseSelector(selector string) (BackendSpec, string, bool) {
	switch {
	case strings.HasPrefix(selector, "bioportal:"):
		acronym := strings.TrimPrefix(selector, "bioportal:")
		if acronym == "" {
			return BackendSpec{}, "", false
		}
		return BackendSpec{Kind: KindRemoteCatalog, Acronym: acronym}, strings.ToLower(acronym), true
	case strings.HasPrefix(selector, "sqlite:obo:"):
		name := strings.TrimPrefix(selector, "sqlite:obo:")
		if name == "" {
			return BackendSpec{}, "", false
		}
		return BackendSpec{Kind: KindLocalIndex, Index: name + ".db"}, name, true
	case selector == "ols:" || selector == "ols":
		return BackendSpec{Kind: KindLookupService}, "", true
	}
	return BackendSpec{}, "", false
}
