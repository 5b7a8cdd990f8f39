// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match compares subject terms against a reference vocabulary,
// reporting exact and optionally fuzzy matches per subject.
package match

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/bioepic-data/trowel/pkg/types"
)

// DefaultSimilarityThreshold is the minimum fuzzy similarity, on the
// 0-100 scale, for a reference term to count as a match.
const DefaultSimilarityThreshold = 80

// Options controls a matching run.
type Options struct {
	// Fuzzy enables the Levenshtein-similarity pass for subjects with
	// no exact match.
	Fuzzy bool

	// SimilarityThreshold is the minimum similarity score, in
	// [0, 100], for a fuzzy match. A score at exactly the threshold
	// matches.
	SimilarityThreshold float64
}

func (o Options) validate() error {
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 100 {
		return fmt.Errorf("similarity threshold %v out of range [0, 100]", o.SimilarityThreshold)
	}
	return nil
}

// Terms matches every subject term against the reference list and
// returns one record per subject, in input order. Matching is
// case-insensitive and whitespace-trimmed but records always carry the
// original spellings.
//
// Exact matches are found by lookup and score 100. When fuzzy matching
// is enabled, subjects without an exact match are compared against
// every reference term and the best-scoring one wins; on a score tie
// the reference term listed first is kept. An empty reference list
// yields a no-match record for every subject.
func Terms(subjects, reference []string, opts Options) ([]types.MatchRecord, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// First occurrence wins when two reference terms normalize to the
	// same key.
	lookup := make(map[string]string, len(reference))
	for _, ref := range reference {
		key := normalize(ref)
		if _, ok := lookup[key]; !ok {
			lookup[key] = ref
		}
	}

	records := make([]types.MatchRecord, 0, len(subjects))
	for _, subject := range subjects {
		record := types.MatchRecord{SubjectTerm: subject, MatchType: types.MatchNone}

		if ref, ok := lookup[normalize(subject)]; ok {
			record.MatchFound = true
			record.MatchType = types.MatchExact
			record.MatchedTerm = ref
			record.SimilarityScore = 100
		} else if opts.Fuzzy {
			best, score := closest(subject, reference)
			if score >= opts.SimilarityThreshold {
				record.MatchFound = true
				record.MatchType = types.MatchFuzzy
				record.MatchedTerm = best
				record.SimilarityScore = score
			}
		}

		records = append(records, record)
	}
	return records, nil
}

// closest scans the reference list and returns the highest-scoring
// term. The comparison is strictly greater, so the earliest of several
// equally good terms is kept.
func closest(subject string, reference []string) (string, float64) {
	var best string
	bestScore := -1.0
	for _, ref := range reference {
		score := Similarity(subject, ref)
		if score > bestScore {
			best = ref
			bestScore = score
		}
	}
	return best, bestScore
}

// Similarity scores two terms on a 0-100 scale using normalized
// Levenshtein distance. Terms that normalize to the same string score
// 100 without running the edit-distance pass.
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return 100
	}
	ratio, err := edlib.StringsSimilarity(na, nb, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(ratio) * 100
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
