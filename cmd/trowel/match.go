// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bioepic-data/trowel/internal/match"
	"github.com/bioepic-data/trowel/pkg/types"
)

var matchCmd = &cobra.Command{
	Use:   "match-term-lists",
	Short: "Match terms from a TSV file against a reference term list",
	Long: `Match-term-lists compares each term in the first column of --terms-file
against the reference vocabulary in --list-file (one term per line).
Matching is case-insensitive; with --fuzzy, terms without an exact
match are compared by Levenshtein similarity and the best reference
term at or above --similarity-threshold is reported.

One record per subject term is written as TSV, in input order.`,
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	termsFile, _ := cmd.Flags().GetString("terms-file")
	listFile, _ := cmd.Flags().GetString("list-file")
	output, _ := cmd.Flags().GetString("output")
	fuzzy, _ := cmd.Flags().GetBool("fuzzy")
	threshold, _ := cmd.Flags().GetFloat64("similarity-threshold")
	skipHeader, _ := cmd.Flags().GetBool("skip-header")

	subjects, err := match.ReadTermsColumn(termsFile, skipHeader)
	if err != nil {
		return err
	}
	reference, err := match.ReadTermList(listFile)
	if err != nil {
		return err
	}

	records, err := match.Terms(subjects, reference, match.Options{
		Fuzzy:               fuzzy,
		SimilarityThreshold: threshold,
	})
	if err != nil {
		return err
	}

	if err := writeMatchRecords(output, records); err != nil {
		return err
	}

	matched := 0
	for _, rec := range records {
		if rec.MatchFound {
			matched++
		}
	}
	fmt.Fprintf(os.Stderr, "%d of %d terms matched\n", matched, len(records))
	fmt.Printf("Matched terms written to %s\n", output)
	return nil
}

func writeMatchRecords(path string, records []types.MatchRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '\t'
	rows := [][]string{{"subject_term", "match_found", "match_type", "matched_term", "similarity_score"}}
	for _, rec := range records {
		score := ""
		if rec.MatchFound {
			score = strconv.FormatFloat(rec.SimilarityScore, 'f', 1, 64)
		}
		rows = append(rows, []string{
			rec.SubjectTerm,
			strconv.FormatBool(rec.MatchFound),
			string(rec.MatchType),
			rec.MatchedTerm,
			score,
		})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	matchCmd.Flags().String("terms-file", "", "TSV file with subject terms in the first column (required)")
	matchCmd.Flags().String("list-file", "", "reference vocabulary, one term per line (required)")
	matchCmd.Flags().String("output", "matched_terms.tsv", "output TSV path")
	matchCmd.Flags().Bool("fuzzy", false, "enable fuzzy matching for terms without an exact match")
	matchCmd.Flags().Float64("similarity-threshold", match.DefaultSimilarityThreshold, "minimum fuzzy similarity score (0-100)")
	matchCmd.Flags().Bool("skip-header", false, "skip the first row of --terms-file")
	matchCmd.MarkFlagRequired("terms-file")
	matchCmd.MarkFlagRequired("list-file")

	rootCmd.AddCommand(matchCmd)
}
