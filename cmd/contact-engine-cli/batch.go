package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/contact-engine/internal/matching"
)

// batchRow is one canonicalized input row.
type batchRow struct {
	Name            string `json:"name,omitempty"`
	Title           string `json:"title,omitempty"`
	Department      string `json:"department,omitempty"`
	CanonicalTitle  string `json:"canonicalTitle"`
	TitleTier       string `json:"titleTier"`
	TitleConfidence string `json:"titleConfidence"`
	CanonicalDept   string `json:"canonicalDepartment"`
	DeptTier        string `json:"departmentTier"`
	DeptConfidence  string `json:"departmentConfidence"`
	DeptCategory    string `json:"departmentCategory,omitempty"`
}

// newBatchCmd creates the batch subcommand.
func newBatchCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "batch --input records.csv",
		Short: "Canonicalize a CSV of contact records",
		Long: `Batch reads a CSV with a header row and canonicalizes every record.

Recognized columns (case-insensitive): name, title, department. Other
columns are ignored. Output preserves input order and is written as CSV,
or as JSON when --json is set. Rows are processed concurrently; use
--workers to tune parallelism.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := uuid.NewString()

			rows, err := readBatchInput(inputPath)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if len(rows) == 0 {
				return fmt.Errorf("no data rows in %s", inputPath)
			}

			logger.Info().
				Str("job_id", jobID).
				Str("input", inputPath).
				Int("rows", len(rows)).
				Int("workers", workers).
				Msg("Starting batch canonicalization")

			var bar *progressbar.ProgressBar
			if !outputJSON {
				bar = progressbar.Default(int64(len(rows)), "canonicalizing")
			}

			processBatch(rows, workers, bar)

			out := os.Stdout
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rows); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			} else if err := writeBatchCSV(out, rows); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			logger.Info().Str("job_id", jobID).Int("rows", len(rows)).Msg("Batch complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent workers")
	cmd.MarkFlagRequired("input")

	return cmd
}

// processBatch canonicalizes rows in place with a bounded worker pool.
// Each worker owns its row slots, so output order matches input order.
func processBatch(rows []*batchRow, workers int, bar *progressbar.ProgressBar) {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *batchRow)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				canonicalizeRow(row)
				if bar != nil {
					bar.Add(1)
				}
			}
		}()
	}

	for _, row := range rows {
		jobs <- row
	}
	close(jobs)
	wg.Wait()
}

func canonicalizeRow(row *batchRow) {
	if row.Title != "" {
		result := eng.MatchTitle(row.Title, row.Department)
		row.CanonicalTitle = result.Matched
		row.TitleTier = result.Tier.String()
		row.TitleConfidence = formatConfidence(result)
	}
	if row.Department != "" {
		result := eng.MatchDepartment(row.Department)
		row.CanonicalDept = result.Matched
		row.DeptTier = result.Tier.String()
		row.DeptConfidence = formatConfidence(result)
		if result.Found() {
			row.DeptCategory = eng.DepartmentCategory(result.CanonicalID)
		}
	}
}

func formatConfidence(result matching.MatchResult) string {
	if !result.Found() {
		return ""
	}
	return fmt.Sprintf("%.3f", result.Confidence)
}

func readBatchInput(path string) ([]*batchRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []*batchRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, &batchRow{
			Name:       field(record, "name"),
			Title:      field(record, "title"),
			Department: field(record, "department"),
		})
	}
	return rows, nil
}

func writeBatchCSV(out io.Writer, rows []*batchRow) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{
		"name", "title", "canonical_title", "title_tier", "title_confidence",
		"department", "canonical_department", "department_tier", "department_confidence",
		"department_category",
	}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write([]string{
			row.Name, row.Title, row.CanonicalTitle, row.TitleTier, row.TitleConfidence,
			row.Department, row.CanonicalDept, row.DeptTier, row.DeptConfidence,
			row.DeptCategory,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
