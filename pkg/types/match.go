// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MatchType classifies how a subject term matched the reference list.
type MatchType string

const (
	MatchExact MatchType = "exact_match"
	MatchFuzzy MatchType = "fuzzy_match"
	MatchNone  MatchType = "no_match"
)

// MatchRecord is the outcome of matching one subject term against a
// reference vocabulary. SubjectTerm and MatchedTerm preserve the
// original casing from their source collections; only the comparison
// is normalized.
type MatchRecord struct {
	// SubjectTerm is the input string, verbatim.
	SubjectTerm string `json:"subject_term" yaml:"subject_term"`

	// MatchFound is true for exact and fuzzy matches.
	MatchFound bool `json:"match_found" yaml:"match_found"`

	// MatchType is exact_match, fuzzy_match, or no_match.
	MatchType MatchType `json:"match_type" yaml:"match_type"`

	// MatchedTerm is the reference entry that matched, empty for no_match.
	MatchedTerm string `json:"matched_term,omitempty" yaml:"matched_term,omitempty"`

	// SimilarityScore is the 0-100 edit-distance similarity. Exact
	// matches carry 100; no_match records leave it zero.
	SimilarityScore float64 `json:"similarity_score,omitempty" yaml:"similarity_score,omitempty"`
}
