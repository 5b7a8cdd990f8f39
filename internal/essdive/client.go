// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package essdive wraps the ESS-DIVE Dataset REST API and derives
// variable inventories from the data files it catalogs.
package essdive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bioepic-data/trowel/internal/httputil"
	"github.com/bioepic-data/trowel/pkg/types"
)

// apiBase is the ESS-DIVE Dataset API endpoint. Declared as a var so
// tests can substitute an httptest server.
var apiBase = "https://api.ess-dive.lbl.gov"

const defaultWorkers = 10

// Client talks to the ESS-DIVE Dataset API. A token is required for
// private datasets and for the metadata endpoints; public search works
// without one.
type Client struct {
	base      string
	token     string
	userAgent string
	workers   int
	client    *http.Client
}

// NewClient builds a client from configuration. Zero-valued fields
// fall back to defaults.
func NewClient(cfg types.EssdiveConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		workers:   workers,
		client:    &http.Client{Timeout: timeout},
	}
}

// SearchOptions narrows a package search. Zero values are omitted from
// the request except PublicOnly, which is always sent.
type SearchOptions struct {
	Keyword    string
	Provider   string
	PageSize   int
	RowStart   int
	PublicOnly bool

	// Extra holds additional query parameters passed through as-is.
	// An Extra key overrides the named field that would set it.
	Extra map[string]string
}

// SearchResult is one page of package search results.
type SearchResult struct {
	Total    int
	Datasets []types.Dataset
}

type searchResponse struct {
	Total  int `json:"total"`
	Result []struct {
		ID      string      `json:"id"`
		Dataset datasetBody `json:"dataset"`
	} `json:"result"`
}

type packageResponse struct {
	ID      string      `json:"id"`
	Dataset datasetBody `json:"dataset"`
}

type datasetBody struct {
	AtID     string   `json:"@id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Provider struct {
		Name string `json:"name"`
	} `json:"provider"`
	Distribution []struct {
		Name           string `json:"name"`
		ContentURL     string `json:"contentUrl"`
		EncodingFormat string `json:"encodingFormat"`
	} `json:"distribution"`
}

// Search queries the packages endpoint. Result order is the API's
// relevance order.
func (c *Client) Search(ctx context.Context, opts SearchOptions) (SearchResult, error) {
	params := url.Values{}
	if opts.Keyword != "" {
		params.Set("keyword", opts.Keyword)
	}
	if opts.Provider != "" {
		params.Set("providerName", opts.Provider)
	}
	if opts.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.RowStart > 0 {
		params.Set("row_start", strconv.Itoa(opts.RowStart))
	}
	params.Set("isPublic", strconv.FormatBool(opts.PublicOnly))
	for key, value := range opts.Extra {
		params.Set(key, value)
	}

	var payload searchResponse
	if err := c.getJSON(ctx, "/packages?"+params.Encode(), &payload); err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{Total: payload.Total}
	for _, entry := range payload.Result {
		result.Datasets = append(result.Datasets, toDataset(entry.ID, entry.Dataset))
	}
	return result, nil
}

// GetDataset fetches a single package by its ESS-DIVE identifier or
// DOI.
func (c *Client) GetDataset(ctx context.Context, id string) (types.Dataset, error) {
	if id == "" {
		return types.Dataset{}, fmt.Errorf("dataset identifier must not be empty")
	}

	var payload packageResponse
	path := "/packages/" + url.PathEscape(id) + "?isPublic=true"
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return types.Dataset{}, err
	}
	return toDataset(payload.ID, payload.Dataset), nil
}

func toDataset(id string, body datasetBody) types.Dataset {
	ds := types.Dataset{
		ID:       id,
		DOI:      doiFromID(body.AtID),
		Title:    body.Name,
		Keywords: body.Keywords,
		Provider: body.Provider.Name,
	}
	for _, dist := range body.Distribution {
		ds.Files = append(ds.Files, types.DataFile{
			Name:      dist.Name,
			URL:       dist.ContentURL,
			Encoding:  dist.EncodingFormat,
			DatasetID: id,
		})
	}
	return ds
}

// doiFromID strips the resolver prefix from a dataset @id, which the
// API reports as a doi.org URL.
func doiFromID(atID string) string {
	for _, prefix := range []string{"http://dx.doi.org/", "https://dx.doi.org/", "https://doi.org/", "http://doi.org/"} {
		if strings.HasPrefix(atID, prefix) {
			return strings.TrimPrefix(atID, prefix)
		}
	}
	return atID
}

func (c *Client) baseURL() string {
	if c.base != "" {
		return c.base
	}
	return apiBase
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return fmt.Errorf("ESS-DIVE request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("ESS-DIVE returned HTTP %d: check the essdive-token secret", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ESS-DIVE returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing ESS-DIVE response: %w", err)
	}
	return nil
}
