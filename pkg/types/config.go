package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trowel/0.2").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GroundingConfig holds settings for the ontology grounding stage.
type GroundingConfig struct {
	HTTPConfig `yaml:",inline"`

	// Threshold is the minimum confidence a candidate must reach to be
	// kept, in [0.0, 1.0]. Candidates at exactly the threshold are kept.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// LimitPerTerm is the maximum number of matches returned per input
	// term (default 3).
	LimitPerTerm int `json:"limit_per_term" yaml:"limit_per_term"`

	// BioPortalAPIKey authenticates requests to remote-catalog backends.
	BioPortalAPIKey string `json:"bioportal_api_key,omitempty" yaml:"bioportal_api_key,omitempty"`
}

// MatchConfig holds settings for the term matching stage.
type MatchConfig struct {
	// Fuzzy enables the edit-distance tier for subjects with no exact match.
	Fuzzy bool `json:"fuzzy" yaml:"fuzzy"`

	// SimilarityThreshold is the minimum similarity score, in [0, 100],
	// for a fuzzy match to be reported (default 80).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
}

// EssdiveConfig holds settings for the ESS-DIVE dataset stage.
type EssdiveConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the ESS-DIVE Dataset API root (default "https://api.ess-dive.lbl.gov/").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Token is the ESS-DIVE bearer token. Optional for public datasets.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Workers is the number of parallel workers for data-file variable
	// extraction (default 10).
	Workers int `json:"workers" yaml:"workers"`

	// OutputDir is the directory where metadata and variable tables are written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ToolkitConfig groups all stage configurations.
type ToolkitConfig struct {
	Grounding GroundingConfig `json:"grounding" yaml:"grounding"`
	Match     MatchConfig     `json:"match" yaml:"match"`
	Essdive   EssdiveConfig   `json:"essdive" yaml:"essdive"`
}
