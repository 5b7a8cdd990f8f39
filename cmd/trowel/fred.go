// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bioepic-data/trowel/internal/export"
	"github.com/bioepic-data/trowel/internal/fred"
)

var fredCmd = &cobra.Command{
	Use:   "fred",
	Short: "Parse Fine-Root Ecology Database pages",
	Long: `Fred parses pages saved from the Fine-Root Ecology Database website
into structured records. Each subcommand reads one saved HTML file and
writes JSON to stdout or, with --output, to a file in the format
implied by its extension (.json, .yaml, .csv, .tsv).`,
}

var fredTraitsCmd = &cobra.Command{
	Use:   "traits <page.html>",
	Short: "Parse the trait catalog page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := fred.ParseTraits(f)
		if err != nil {
			return err
		}
		return emitRecords(cmd, records, len(records))
	},
}

var fredSpeciesCmd = &cobra.Command{
	Use:   "species <page.html>",
	Short: "Parse the species list page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := fred.ParseSpecies(f)
		if err != nil {
			return err
		}
		return emitRecords(cmd, records, len(records))
	},
}

var fredDataSourcesCmd = &cobra.Command{
	Use:   "data-sources <page.html>",
	Short: "Parse the data sources citation page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := fred.ParseDataSources(f)
		if err != nil {
			return err
		}
		return emitRecords(cmd, records, len(records))
	},
}

// emitRecords writes parsed records as JSON to stdout, or to --output
// in the format implied by its extension. An empty record set is an
// error so shell pipelines notice scraping failures.
func emitRecords(cmd *cobra.Command, records any, count int) error {
	if count == 0 {
		return fmt.Errorf("no records found in input")
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	maps, err := recordMaps(records)
	if err != nil {
		return err
	}
	if err := export.Records(maps, output, export.FormatAuto); err != nil {
		return err
	}
	fmt.Printf("%d records written to %s\n", count, output)
	return nil
}

// recordMaps converts a record slice to generic maps through its JSON
// form, so export sees the same field names as the JSON output.
func recordMaps(records any) ([]map[string]any, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var maps []map[string]any
	if err := json.Unmarshal(data, &maps); err != nil {
		return nil, err
	}
	return maps, nil
}

func init() {
	for _, cmd := range []*cobra.Command{fredTraitsCmd, fredSpeciesCmd, fredDataSourcesCmd} {
		cmd.Flags().String("output", "", "write records to a file (.json, .yaml, .csv, or .tsv)")
		fredCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(fredCmd)
}
