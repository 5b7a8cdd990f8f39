// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show an overview of trowel and its configuration",
	Run:   runInfo,
}

func runInfo(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "trowel %s\n\n", version)
	fmt.Fprintln(w, "Field tools for environmental data curation:")
	fmt.Fprintln(w, "  ground            map free-text terms to ontology concepts")
	fmt.Fprintln(w, "  search, term      query ontologies directly")
	fmt.Fprintln(w, "  match-term-lists  compare a term list against a reference vocabulary")
	fmt.Fprintln(w, "  essdive           search and mine the ESS-DIVE data repository")
	fmt.Fprintln(w, "  fred, try         parse trait database exports and pages")
	fmt.Fprintln(w)

	catalog := loadCatalog()
	fmt.Fprintf(w, "Ontologies configured: %d (%s)\n", len(catalog), strings.Join(catalog.IDs(), ", "))
	if cfg := viper.ConfigFileUsed(); cfg != "" {
		fmt.Fprintf(w, "Config file: %s\n", cfg)
	}
	if len(loadedSecrets) > 0 {
		fmt.Fprintf(w, "Secrets loaded: %d\n", len(loadedSecrets))
	}

	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintln(w, `  trowel ground "soil moisture" --ontology bervo`)
	fmt.Fprintln(w, `  trowel search water --ontology envo`)
	fmt.Fprintln(w, `  trowel term ENVO:00002006`)
	fmt.Fprintln(w, `  trowel match-term-lists --terms-file vars.tsv --list-file bervo.txt --fuzzy`)
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
