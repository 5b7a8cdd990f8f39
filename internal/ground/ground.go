// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ground maps free-text terms to ranked ontology concepts with
// tiered confidence scores.
package ground

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bioepic-data/trowel/internal/ontology"
	"github.com/bioepic-data/trowel/pkg/types"
)

// Confidence tiers. These are the only values the engine ever assigns:
// candidate ranking is by tier, not by a continuous similarity measure,
// and ties within a tier keep the backend's original order.
const (
	ConfidenceExact     = 1.0
	ConfidenceSubstring = 0.9
	ConfidenceFound     = 0.7
)

// The search limit over-fetches relative to the per-term cap so that
// tier filtering still leaves enough qualifying candidates; the floor
// keeps small caps from starving exact matches out of the result page.
const (
	overFetchFactor = 4
	searchFloor     = 20
)

// Options controls a grounding batch.
type Options struct {
	// Threshold is the minimum confidence to keep a candidate, in
	// [0.0, 1.0]. A candidate at exactly the threshold is kept.
	Threshold float64

	// LimitPerTerm caps the matches recorded per input term.
	LimitPerTerm int
}

func (o Options) validate() error {
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("threshold %v out of range [0.0, 1.0]", o.Threshold)
	}
	if o.LimitPerTerm <= 0 {
		return fmt.Errorf("limit per term must be positive, got %d", o.LimitPerTerm)
	}
	return nil
}

// Terms grounds a batch of free-text terms against a single ontology
// backend. Every input term appears as a key in the result: a term the
// backend failed on carries the error string instead of matches, and a
// term with no qualifying candidates carries an empty match list, so
// callers can tell the two apart. A backend failure for one term never
// aborts the batch; a warning is written to w and the loop continues.
//
// Duplicate input terms are each searched and the later result
// overwrites the earlier one under the shared key. Grounding is
// deterministic for a fixed backend response, so the overwrite is
// equivalent to keeping the first.
func Terms(ctx context.Context, s ontology.Searcher, terms []string, opts Options, w io.Writer) (types.GroundingResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("no terms to ground")
	}

	searchLimit := opts.LimitPerTerm * overFetchFactor
	if searchLimit < searchFloor {
		searchLimit = searchFloor
	}

	result := make(types.GroundingResult, len(terms))
	failed := 0

	for _, term := range terms {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		candidates, err := s.Search(ctx, term, searchLimit)
		if err != nil {
			fmt.Fprintf(w, "warning: could not ground %q: %v\n", term, err)
			result[term] = types.TermGrounding{Err: err.Error()}
			failed++
			continue
		}

		result[term] = types.TermGrounding{Matches: rank(term, candidates, opts)}
	}

	// Count processed inputs, not result keys: duplicate terms share a
	// key but each counts toward the batch.
	fmt.Fprintf(w, "\n%d of %d terms grounded, %d failed\n", len(terms)-failed, len(terms), failed)
	return result, nil
}

// rank scores, filters, sorts, and truncates one term's candidates.
func rank(term string, candidates []ontology.Candidate, opts Options) []types.OntologyMatch {
	matches := make([]types.OntologyMatch, 0, opts.LimitPerTerm)
	for _, c := range candidates {
		confidence := Score(term, c.Label)
		if confidence < opts.Threshold {
			continue
		}
		matches = append(matches, types.OntologyMatch{
			TermID:     c.TermID,
			Label:      c.Label,
			OntologyID: c.Ontology,
			Confidence: confidence,
		})
	}

	// Stable: equal-confidence candidates keep the backend's order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	if len(matches) > opts.LimitPerTerm {
		matches = matches[:opts.LimitPerTerm]
	}
	return matches
}

// Score assigns the tiered confidence for a candidate label against an
// input term: 1.0 for an exact match, 0.9 when either normalized string
// contains the other, 0.7 for any candidate the backend returned at all.
// Comparison is case-insensitive and whitespace-trimmed.
func Score(term, label string) float64 {
	t := normalize(term)
	l := normalize(label)

	switch {
	case t == l:
		return ConfidenceExact
	case strings.Contains(l, t) || strings.Contains(t, l):
		return ConfidenceSubstring
	default:
		return ConfidenceFound
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
