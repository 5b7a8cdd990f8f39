// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bioepic-data/trowel/internal/ground"
	"github.com/bioepic-data/trowel/internal/match"
	"github.com/bioepic-data/trowel/internal/ontology"
	"github.com/bioepic-data/trowel/internal/secrets"
)

var groundCmd = &cobra.Command{
	Use:   "ground [terms...]",
	Short: "Ground free-text terms against an ontology",
	Long: `Ground maps each input term to ranked ontology concepts with tiered
confidence scores: 1.0 for an exact label match, 0.9 for a substring
match, 0.7 for any other candidate the ontology returned. Candidates
below the threshold are dropped.

Terms come from the command line or, with --terms-file, from the first
column of a TSV file. Results are printed as JSON keyed by input term.`,
	RunE: runGround,
}

func runGround(cmd *cobra.Command, args []string) error {
	ontologyID, _ := cmd.Flags().GetString("ontology")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	limit, _ := cmd.Flags().GetInt("limit")
	termsFile, _ := cmd.Flags().GetString("terms-file")
	skipHeader, _ := cmd.Flags().GetBool("skip-header")

	terms := args
	if termsFile != "" {
		fileTerms, err := match.ReadTermsColumn(termsFile, skipHeader)
		if err != nil {
			return err
		}
		terms = append(terms, fileTerms...)
	}
	if len(terms) == 0 {
		return fmt.Errorf("no terms: pass terms as arguments or use --terms-file")
	}

	searcher, err := openBackend(cmd, ontologyID)
	if err != nil {
		return err
	}
	if closer, ok := searcher.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	opts := ground.Options{Threshold: threshold, LimitPerTerm: limit}
	result, err := ground.Terms(context.Background(), searcher, terms, opts, os.Stderr)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	for _, g := range result {
		if !g.Failed() && len(g.Matches) > 0 {
			return nil
		}
	}
	return fmt.Errorf("no terms could be grounded")
}

// openBackend resolves an ontology through the catalog using the shared
// connection flags.
func openBackend(cmd *cobra.Command, ontologyID string) (ontology.Searcher, error) {
	return ontology.Open(loadCatalog(), ontologyID, clientOptions(cmd))
}

// loadCatalog overlays any "ontologies" entries from the config file
// onto the built-in catalog.
func loadCatalog() ontology.Catalog {
	catalog := ontology.Builtin()
	var extra ontology.Catalog
	if err := viper.UnmarshalKey("ontologies", &extra); err == nil && len(extra) > 0 {
		catalog.Merge(extra)
	}
	return catalog
}

func clientOptions(cmd *cobra.Command) ontology.ClientOptions {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = viper.GetString("index_dir")
	}
	if indexDir == "" {
		indexDir = "ontologies"
	}

	apiKey, _ := cmd.Flags().GetString("bioportal-api-key")
	apiKey = secretDefault(secrets.KeyBioPortalAPIKey, apiKey)
	if apiKey == "" {
		apiKey = viper.GetString("bioportal_api_key")
	}

	return ontology.ClientOptions{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		UserAgent:  "trowel/" + version,
		APIKey:     apiKey,
		IndexDir:   indexDir,
	}
}

func init() {
	groundCmd.Flags().String("ontology", "envo", "ontology to ground against (see 'trowel ontologies')")
	groundCmd.Flags().Float64("threshold", 0.8, "minimum confidence to keep a match (0.0-1.0)")
	groundCmd.Flags().Int("limit", 3, "maximum matches per term")
	groundCmd.Flags().String("terms-file", "", "TSV file with terms in the first column")
	groundCmd.Flags().Bool("skip-header", false, "skip the first row of --terms-file")
	groundCmd.Flags().String("index-dir", "", "directory holding local ontology indexes (default: ontologies)")
	groundCmd.Flags().String("bioportal-api-key", "", "BioPortal API key (or .secrets/bioportal-api-key)")

	rootCmd.AddCommand(groundCmd)
}
