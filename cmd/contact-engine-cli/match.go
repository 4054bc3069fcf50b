package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/contact-engine/internal/matching"
)

// newMatchCmd creates the match subcommand tree.
func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Canonicalize titles and departments",
	}

	cmd.AddCommand(newMatchTitleCmd())
	cmd.AddCommand(newMatchDepartmentCmd())

	return cmd
}

func newMatchTitleCmd() *cobra.Command {
	var (
		deptContext string
		top         int
	)

	cmd := &cobra.Command{
		Use:   "title <raw title>",
		Short: "Canonicalize a raw job title",
		Long: `Match a raw job title against the canonical title catalog.

Pass --context to supply the record's department, which is used to
break ties between equally-scored candidates. Pass --top N to list
the top N candidates instead of just the winner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			if top > 0 {
				return printCandidates(input, eng.TopTitleMatches(input, top))
			}

			result := eng.MatchTitle(input, deptContext)
			return printMatch(input, result)
		},
	}

	cmd.Flags().StringVar(&deptContext, "context", "", "department context for tie-breaking")
	cmd.Flags().IntVar(&top, "top", 0, "list the top N candidates instead of the best match")

	return cmd
}

func newMatchDepartmentCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "department <raw department>",
		Short: "Canonicalize a raw department name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			if top > 0 {
				return printCandidates(input, eng.TopDepartmentMatches(input, top))
			}

			result := eng.MatchDepartment(input)
			if err := printMatch(input, result); err != nil {
				return err
			}
			if !outputJSON && result.Found() {
				if category := eng.DepartmentCategory(result.CanonicalID); category != "" {
					fmt.Printf("  category:   %s\n", category)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "list the top N candidates instead of the best match")

	return cmd
}

func printMatch(input string, result matching.MatchResult) error {
	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	if !result.Found() {
		if result.Vetoed {
			warnColor().Printf("✗ %q rejected: best candidate conflicts semantically (score %.3f)\n", input, result.RawScore)
		} else {
			fmt.Printf("✗ no match for %q\n", input)
		}
		return nil
	}

	okColor().Printf("✓ %q → %q\n", input, result.Matched)
	fmt.Printf("  id:         %s\n", result.CanonicalID)
	fmt.Printf("  tier:       %s\n", result.Tier)
	fmt.Printf("  score:      %.3f\n", result.RawScore)
	fmt.Printf("  confidence: %.3f\n", result.Confidence)
	return nil
}

func printCandidates(input string, candidates []matching.Candidate) error {
	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Printf("✗ no candidates for %q\n", input)
		return nil
	}

	fmt.Printf("Top candidates for %q:\n", input)
	for i, c := range candidates {
		fmt.Printf("  %2d. %-40s %.3f  (%s)\n", i+1, c.Display, c.Score, c.CanonicalID)
	}
	return nil
}

func okColor() *color.Color {
	c := color.New(color.FgGreen)
	if noColor {
		c.DisableColor()
	}
	return c
}

func warnColor() *color.Color {
	c := color.New(color.FgYellow)
	if noColor {
		c.DisableColor()
	}
	return c
}
