// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bioepic-data/trowel/internal/try"
)

var tryCmd = &cobra.Command{
	Use:   "try",
	Short: "Parse TRY plant trait database exports and pages",
	Long: `Try parses species tables, trait lists, and dataset listings from the
TRY plant trait database. Species tables are tab-separated exports;
trait and dataset listings are saved HTML pages. Records go to stdout
as JSON or, with --output, to a file in the format implied by its
extension.`,
}

var trySpeciesCmd = &cobra.Command{
	Use:   "species <species.tsv>",
	Short: "Parse the accepted species table export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := try.ParseSpeciesTable(f)
		if err != nil {
			return err
		}
		return emitRecords(cmd, records, len(records))
	},
}

var tryTraitsCmd = &cobra.Command{
	Use:   "traits <page.html>",
	Short: "Parse the trait list page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := try.ParseTraits(f)
		if err != nil {
			return err
		}
		return emitRecords(cmd, records, len(records))
	},
}

var tryDatasetsCmd = &cobra.Command{
	Use:   "datasets <page.html>",
	Short: "Parse the dataset archive page",
	Long: `Datasets parses the TRY file archive page. By default each dataset's
key/value description table becomes one record; with --table the
dataset list table is parsed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asTable, _ := cmd.Flags().GetBool("table")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if asTable {
			_, records, err := try.ParseDatasets(f)
			if err != nil {
				return err
			}
			return emitRecords(cmd, records, len(records))
		}

		entries, err := try.ParseDatasetEntries(f)
		if err != nil {
			return err
		}
		return emitRecords(cmd, entries, len(entries))
	},
}

func init() {
	tryDatasetsCmd.Flags().Bool("table", false, "parse the dataset list table instead of entry tables")

	for _, cmd := range []*cobra.Command{trySpeciesCmd, tryTraitsCmd, tryDatasetsCmd} {
		cmd.Flags().String("output", "", "write records to a file (.json, .yaml, .csv, or .tsv)")
		tryCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(tryCmd)
}
