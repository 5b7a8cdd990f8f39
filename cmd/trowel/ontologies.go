// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var ontologiesCmd = &cobra.Command{
	Use:   "ontologies",
	Short: "List the configured ontologies",
	Long: `Ontologies lists every ontology trowel can search or ground against,
with its backend kind: a remote catalog, a generic lookup service, or a
local SQLite index.`,
	RunE: runOntologies,
}

func runOntologies(cmd *cobra.Command, args []string) error {
	catalog := loadCatalog()

	fmt.Fprintf(os.Stdout, "%-12s  %-22s  %-30s  %s\n", "ID", "Backend", "Name", "Description")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, id := range catalog.IDs() {
		entry := catalog[id]
		fmt.Fprintf(os.Stdout, "%-12s  %-22s  %-30s  %s\n", id, entry.Kind, entry.Name, entry.Description)
	}
	fmt.Fprintf(os.Stdout, "\n%d ontologies\n", len(catalog))
	return nil
}

func init() {
	rootCmd.AddCommand(ontologiesCmd)
}
