// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bioepic-data/trowel/internal/httputil"
	"github.com/bioepic-data/trowel/pkg/types"
)

// bioportalAPIBase is the BioPortal REST endpoint. Declared as a var so
// tests can substitute an httptest server.
var bioportalAPIBase = "https://data.bioontology.org"

// bioportalClient implements Searcher and Describer against a hosted
// BioPortal ontology (remote-catalog kind).
type bioportalClient struct {
	acronym   string
	apiKey    string
	userAgent string
	client    *http.Client
}

func newBioPortalClient(acronym string, opts ClientOptions) *bioportalClient {
	return &bioportalClient{
		acronym:   acronym,
		apiKey:    opts.APIKey,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
	}
}

// bioportalSearchResponse is the subset of the /search payload we read.
type bioportalSearchResponse struct {
	Collection []bioportalClass `json:"collection"`
}

type bioportalClass struct {
	ID         string   `json:"@id"`
	PrefLabel  string   `json:"prefLabel"`
	Definition []string `json:"definition"`
	Synonym    []string `json:"synonym"`
}

// Search queries the portal's /search endpoint scoped to the client's
// ontology acronym. Result order is the portal's ranking order.
func (b *bioportalClient) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("ontologies", b.acronym)
	params.Set("pagesize", fmt.Sprintf("%d", limit))

	var resp bioportalSearchResponse
	if err := b.getJSON(ctx, bioportalAPIBase+"/search?"+params.Encode(), &resp); err != nil {
		return nil, &BackendError{Backend: "bioportal", Err: err}
	}

	fallback := strings.ToLower(b.acronym)
	var candidates []Candidate
	for _, class := range resp.Collection {
		id := CompressURI(class.ID)
		label := class.PrefLabel
		if label == "" {
			label = id
		}
		candidates = append(candidates, Candidate{
			TermID:   id,
			Ontology: curiePrefix(id, fallback),
			Label:    label,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}

// Describe fetches the full class record for a CURIE via the portal's
// classes endpoint. The CURIE is expanded back to a URI first.
func (b *bioportalClient) Describe(ctx context.Context, termID string) (types.TermDetails, error) {
	uri := ExpandCURIE(termID)
	endpoint := fmt.Sprintf("%s/ontologies/%s/classes/%s",
		bioportalAPIBase, url.PathEscape(b.acronym), url.PathEscape(uri))

	var class bioportalClass
	if err := b.getJSON(ctx, endpoint, &class); err != nil {
		return types.TermDetails{}, &BackendError{Backend: "bioportal", Err: err}
	}
	if class.PrefLabel == "" {
		return types.TermDetails{}, fmt.Errorf("term %s not found in %s", termID, b.acronym)
	}

	details := types.TermDetails{
		TermID:     termID,
		Label:      class.PrefLabel,
		Synonyms:   class.Synonym,
		OntologyID: curiePrefix(termID, strings.ToLower(b.acronym)),
	}
	if len(class.Definition) > 0 {
		details.Definition = class.Definition[0]
	}
	return details, nil
}

func (b *bioportalClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", b.userAgent)
	if b.apiKey != "" {
		req.Header.Set("Authorization", "apikey token="+b.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.client, req, 0)
	if err != nil {
		return fmt.Errorf("BioPortal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("BioPortal returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing BioPortal response: %w", err)
	}
	return nil
}

// ExpandCURIE converts a CURIE back to a full term URI. BERVO lives
// under w3id.org; everything else gets the OBO Foundry purl form.
func ExpandCURIE(curie string) string {
	idx := strings.IndexByte(curie, ':')
	if idx < 0 {
		return curie
	}
	prefix, local := curie[:idx], curie[idx+1:]
	if strings.EqualFold(prefix, "BERVO") {
		return fmt.Sprintf("https://w3id.org/bervo/%s_%s", prefix, local)
	}
	return fmt.Sprintf("http://purl.obolibrary.org/obo/%s_%s", prefix, local)
}
