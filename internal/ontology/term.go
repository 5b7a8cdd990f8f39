// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"fmt"
	"strings"

	"github.com/bioepic-data/trowel/pkg/types"
)

// FetchTerm retrieves the full record for a term. When ontologyID is
// empty the ontology is inferred from the CURIE prefix, so
// "ENVO:00000001" resolves through the catalog's "envo" entry.
func FetchTerm(ctx context.Context, c Catalog, termID, ontologyID string, opts ClientOptions) (types.TermDetails, error) {
	if ontologyID == "" {
		prefix := curiePrefix(termID, "")
		if prefix == "" {
			return types.TermDetails{}, fmt.Errorf("cannot determine ontology for term %q: provide an ontology identifier", termID)
		}
		ontologyID = strings.ToLower(prefix)
	}

	searcher, err := Open(c, ontologyID, opts)
	if err != nil {
		return types.TermDetails{}, err
	}
	if closer, ok := searcher.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	describer, ok := searcher.(Describer)
	if !ok {
		return types.TermDetails{}, fmt.Errorf("ontology %s: backend does not support term details", ontologyID)
	}
	return describer.Describe(ctx, termID)
}
