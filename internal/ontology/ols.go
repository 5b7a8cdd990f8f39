// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bioepic-data/trowel/internal/httputil"
)

// olsAPIBase is the Ontology Lookup Service endpoint. Declared as a var
// so tests can substitute an httptest server.
var olsAPIBase = "https://www.ebi.ac.uk/ols4"

// olsClient implements Searcher against a generic term lookup service.
// An empty ontology searches across all hosted ontologies.
type olsClient struct {
	ontology  string
	userAgent string
	client    *http.Client
}

func newOLSClient(ontology string, opts ClientOptions) *olsClient {
	return &olsClient{
		ontology:  ontology,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
	}
}

type olsSearchResponse struct {
	Response struct {
		Docs []olsDoc `json:"docs"`
	} `json:"response"`
}

type olsDoc struct {
	OboID          string `json:"obo_id"`
	IRI            string `json:"iri"`
	Label          string `json:"label"`
	OntologyPrefix string `json:"ontology_prefix"`
}

// Search queries the lookup service's /api/search endpoint. Result
// order is the service's relevance order.
func (o *olsClient) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("rows", fmt.Sprintf("%d", limit))
	if o.ontology != "" {
		params.Set("ontology", o.ontology)
	}

	endpoint := olsAPIBase + "/api/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &BackendError{Backend: "ols", Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.userAgent)

	resp, err := httputil.DoWithRetry(ctx, o.client, req, 0)
	if err != nil {
		return nil, &BackendError{Backend: "ols", Err: fmt.Errorf("OLS request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{Backend: "ols", Err: fmt.Errorf("OLS returned HTTP %d", resp.StatusCode)}
	}

	var payload olsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &BackendError{Backend: "ols", Err: fmt.Errorf("parsing OLS response: %w", err)}
	}

	var candidates []Candidate
	for _, doc := range payload.Response.Docs {
		id := doc.OboID
		if id == "" {
			id = CompressURI(doc.IRI)
		}
		if id == "" {
			continue
		}
		label := doc.Label
		if label == "" {
			label = id
		}
		ontology := doc.OntologyPrefix
		if ontology == "" {
			ontology = curiePrefix(id, "unknown")
		}
		candidates = append(candidates, Candidate{TermID: id, Ontology: ontology, Label: label})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}
