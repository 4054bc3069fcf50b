package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/contact-engine/internal/compare"
)

// newCompareCmd creates the compare subcommand.
func newCompareCmd() *cobra.Command {
	var (
		fileA   string
		fileB   string
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "compare --a record-a.json --b record-b.json",
		Short: "Compare two contact records",
		Long: `Compare two contact records and print a weighted similarity score.

Each input file holds one record as JSON, for example:

  {"name": "Robert Chen", "email": "rchen@cityofspringfield.gov",
   "department": "Public Works", "title": "Civil Engineer"}

Field weights come from the config file's compare.weights section;
unset weights fall back to the built-in defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			recordA, err := loadRecord(fileA)
			if err != nil {
				return fmt.Errorf("record A: %w", err)
			}
			recordB, err := loadRecord(fileB)
			if err != nil {
				return fmt.Errorf("record B: %w", err)
			}

			result, err := eng.Compare(recordA, recordB, compare.Options{Explain: explain})
			if err != nil {
				return fmt.Errorf("compare records: %w", err)
			}

			return printComparison(result)
		},
	}

	cmd.Flags().StringVar(&fileA, "a", "", "path to the first record (JSON)")
	cmd.Flags().StringVar(&fileB, "b", "", "path to the second record (JSON)")
	cmd.Flags().BoolVar(&explain, "explain", false, "include a per-field explanation")
	cmd.MarkFlagRequired("a")
	cmd.MarkFlagRequired("b")

	return cmd
}

func loadRecord(path string) (compare.Record, error) {
	var record compare.Record
	data, err := os.ReadFile(path)
	if err != nil {
		return record, err
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("parse %s: %w", path, err)
	}
	return record, nil
}

func printComparison(result compare.ComparisonResult) error {
	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	okColor().Printf("Score: %.1f / 100\n", result.Score)
	for _, fs := range result.Components {
		if !fs.Present {
			fmt.Printf("  %-12s (absent, excluded)\n", fs.Field)
			continue
		}
		fmt.Printf("  %-12s similarity %.3f  weight %.3f\n", fs.Field, fs.Similarity, fs.WeightApplied)
	}
	for _, line := range result.Explanation {
		fmt.Printf("  · %s\n", line)
	}
	return nil
}
