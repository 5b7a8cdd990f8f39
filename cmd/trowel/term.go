// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bioepic-data/trowel/internal/ontology"
)

var termCmd = &cobra.Command{
	Use:   "term <term-id>",
	Short: "Show the full record for an ontology term",
	Long: `Term fetches the label, definition, synonyms, and relationships of an
ontology term by its CURIE, for example ENVO:00002006. When --ontology
is not given the ontology is inferred from the CURIE prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runTerm,
}

func runTerm(cmd *cobra.Command, args []string) error {
	ontologyID, _ := cmd.Flags().GetString("ontology")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	details, err := ontology.FetchTerm(context.Background(), loadCatalog(), args[0], ontologyID, clientOptions(cmd))
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(details)
	}

	fmt.Printf("%s  %s\n", details.TermID, details.Label)
	if details.Definition != "" {
		fmt.Printf("\n%s\n", details.Definition)
	}
	if len(details.Synonyms) > 0 {
		fmt.Printf("\nSynonyms:\n")
		for _, syn := range details.Synonyms {
			fmt.Printf("  %s\n", syn)
		}
	}
	if len(details.Relationships) > 0 {
		fmt.Printf("\nRelationships:\n")
		predicates := make([]string, 0, len(details.Relationships))
		for p := range details.Relationships {
			predicates = append(predicates, p)
		}
		sort.Strings(predicates)
		for _, p := range predicates {
			var targets []string
			for _, rel := range details.Relationships[p] {
				if rel.Label != "" {
					targets = append(targets, fmt.Sprintf("%s (%s)", rel.ID, rel.Label))
				} else {
					targets = append(targets, rel.ID)
				}
			}
			fmt.Printf("  %s: %s\n", p, strings.Join(targets, ", "))
		}
	}
	return nil
}

func init() {
	termCmd.Flags().String("ontology", "", "ontology to query (default: inferred from the CURIE prefix)")
	termCmd.Flags().Bool("json", false, "output the record as JSON")
	termCmd.Flags().String("index-dir", "", "directory holding local ontology indexes (default: ontologies)")
	termCmd.Flags().String("bioportal-api-key", "", "BioPortal API key (or .secrets/bioportal-api-key)")

	rootCmd.AddCommand(termCmd)
}
