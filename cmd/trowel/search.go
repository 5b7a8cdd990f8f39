// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an ontology for matching terms",
	Long: `Search queries an ontology for terms whose labels match the query.
An empty query against a local index lists the ontology's terms.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ontologyID, _ := cmd.Flags().GetString("ontology")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	query := strings.Join(args, " ")

	searcher, err := openBackend(cmd, ontologyID)
	if err != nil {
		return err
	}
	if closer, ok := searcher.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	candidates, err := searcher.Search(context.Background(), query, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(candidates); err != nil {
			return err
		}
	} else {
		if len(candidates) == 0 {
			fmt.Println("No results found.")
		} else {
			fmt.Fprintf(os.Stdout, "%-20s  %-10s  %s\n", "Term ID", "Ontology", "Label")
			fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
			for _, c := range candidates {
				fmt.Fprintf(os.Stdout, "%-20s  %-10s  %s\n", c.TermID, c.Ontology, c.Label)
			}
			fmt.Fprintf(os.Stdout, "\n%d results\n", len(candidates))
		}
	}

	if len(candidates) == 0 {
		return fmt.Errorf("no results for %q in %s", query, ontologyID)
	}
	return nil
}

func init() {
	searchCmd.Flags().String("ontology", "envo", "ontology to search (see 'trowel ontologies')")
	searchCmd.Flags().Int("limit", 25, "maximum results to return")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("index-dir", "", "directory holding local ontology indexes (default: ontologies)")
	searchCmd.Flags().String("bioportal-api-key", "", "BioPortal API key (or .secrets/bioportal-api-key)")

	rootCmd.AddCommand(searchCmd)
}
