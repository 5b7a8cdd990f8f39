// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bioepic-data/trowel/internal/essdive"
	"github.com/bioepic-data/trowel/internal/secrets"
	"github.com/bioepic-data/trowel/pkg/types"
)

var essdiveCmd = &cobra.Command{
	Use:   "essdive",
	Short: "Query the ESS-DIVE data repository",
	Long: `Essdive talks to the ESS-DIVE Dataset API. Use subcommands to search
datasets, fetch one dataset, pull metadata for a DOI list, or extract
variable names from the data files of previously fetched datasets.

Private datasets and higher rate limits need an API token in
.secrets/essdive-token or the TROWEL_ESSDIVE_TOKEN environment
variable.`,
}

// --- search subcommand ---

var essdiveSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search ESS-DIVE datasets",
	RunE:  runEssdiveSearch,
}

func runEssdiveSearch(cmd *cobra.Command, args []string) error {
	keyword, _ := cmd.Flags().GetString("keyword")
	provider, _ := cmd.Flags().GetString("provider")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	rowStart, _ := cmd.Flags().GetInt("row-start")
	includePrivate, _ := cmd.Flags().GetBool("include-private")
	filter, _ := cmd.Flags().GetString("filter")
	extraParams, _ := cmd.Flags().GetStringSlice("param")

	opts := essdive.SearchOptions{
		Keyword:    keyword,
		Provider:   provider,
		PageSize:   pageSize,
		RowStart:   rowStart,
		PublicOnly: !includePrivate,
	}
	if filter != "" {
		parsed, err := essdive.ParseFilter(filter)
		if err != nil {
			return err
		}
		opts.Extra = map[string]string{"filter": parsed}
	}
	for _, param := range extraParams {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			return fmt.Errorf("--param %q is not key=value", param)
		}
		if opts.Extra == nil {
			opts.Extra = map[string]string{}
		}
		opts.Extra[key] = value
	}

	client := essdive.NewClient(essdiveConfig(cmd))
	result, err := client.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Datasets); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d of %d total datasets shown\n", len(result.Datasets), result.Total)

	if len(result.Datasets) == 0 {
		return fmt.Errorf("no datasets found")
	}
	return nil
}

// --- dataset subcommand ---

var essdiveDatasetCmd = &cobra.Command{
	Use:   "dataset <id>",
	Short: "Fetch one ESS-DIVE dataset by identifier or DOI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := essdive.NewClient(essdiveConfig(cmd))
		ds, err := client.GetDataset(context.Background(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	},
}

// --- metadata subcommand ---

var essdiveMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Fetch metadata for a list of DOIs",
	Long: `Metadata resolves each DOI in --path (one per line) and writes
results.tsv, frequencies.tsv, and filetable.tsv to --outpath.`,
	RunE: runEssdiveMetadata,
}

func runEssdiveMetadata(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	outpath, _ := cmd.Flags().GetString("outpath")

	dois, err := essdive.ReadDOIFile(path)
	if err != nil {
		return err
	}

	client := essdive.NewClient(essdiveConfig(cmd))
	if err := essdive.FetchMetadata(context.Background(), client, dois, outpath, os.Stderr); err != nil {
		return err
	}
	fmt.Printf("Metadata written to %s\n", outpath)
	return nil
}

// --- variables subcommand ---

var essdiveVariablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "Extract variable names from fetched data files",
	Long: `Variables reads the filetable produced by 'essdive metadata', downloads
each data file, and compiles variable names, units, and definitions
into variable_names.tsv. Tabular headers, XML attribute names and
keywords, and data dictionary rows all contribute.`,
	RunE: runEssdiveVariables,
}

func runEssdiveVariables(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	outpath, _ := cmd.Flags().GetString("outpath")

	if path == "" {
		path = filepath.Join(outpath, essdive.FiletableFile)
	}
	files, err := essdive.ReadFiletable(path)
	if err != nil {
		return err
	}

	client := essdive.NewClient(essdiveConfig(cmd))
	if err := essdive.ExtractVariables(context.Background(), client, files, outpath, os.Stderr); err != nil {
		return err
	}
	fmt.Printf("Variable names written to %s\n", filepath.Join(outpath, essdive.VariablesFile))
	return nil
}

// --- shared helpers ---

func essdiveConfig(cmd *cobra.Command) types.EssdiveConfig {
	token, _ := cmd.Flags().GetString("token")
	token = secretDefault(secrets.KeyEssdiveToken, token)
	if token == "" {
		token = viper.GetString("essdive_token")
	}
	workers, _ := cmd.Flags().GetInt("workers")

	return types.EssdiveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "trowel/" + version,
		},
		Token:   token,
		Workers: workers,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	essdiveCmd.PersistentFlags().String("token", "", "ESS-DIVE API token (or .secrets/essdive-token)")

	essdiveSearchCmd.Flags().String("keyword", "", "search text")
	essdiveSearchCmd.Flags().String("provider", "", "filter by provider/project name")
	essdiveSearchCmd.Flags().Int("page-size", 25, "records per page")
	essdiveSearchCmd.Flags().Int("row-start", 0, "row offset for pagination")
	essdiveSearchCmd.Flags().Bool("include-private", false, "include private datasets (requires token)")
	essdiveSearchCmd.Flags().String("filter", "", "filter as YAML key/value pairs or a JSON object")
	essdiveSearchCmd.Flags().StringSlice("param", nil, "extra query parameter as key=value (repeatable)")

	essdiveMetadataCmd.Flags().String("path", "", "file with one DOI per line (required)")
	essdiveMetadataCmd.Flags().String("outpath", ".", "directory for output files")
	essdiveMetadataCmd.MarkFlagRequired("path")

	essdiveVariablesCmd.Flags().String("path", "", "filetable.tsv from 'essdive metadata' (default: <outpath>/filetable.tsv)")
	essdiveVariablesCmd.Flags().String("outpath", ".", "directory for output files")
	essdiveVariablesCmd.Flags().Int("workers", 10, "parallel download workers")

	essdiveCmd.AddCommand(essdiveSearchCmd)
	essdiveCmd.AddCommand(essdiveDatasetCmd)
	essdiveCmd.AddCommand(essdiveMetadataCmd)
	essdiveCmd.AddCommand(essdiveVariablesCmd)

	rootCmd.AddCommand(essdiveCmd)
}
