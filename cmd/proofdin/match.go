package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/export"
	"github.com/proofdin/proofdin/internal/types"
	"github.com/spf13/cobra"
)

var (
	matchJobID string
	matchQuery string
	matchXLSX  string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank candidates against an analyzed job",
	Long: `Rank every stored candidate profile against the skills of an analyzed job and print
the results as JSON. With --query, skills are extracted from the query and only
candidates sharing at least one of them are ranked. With --xlsx the ranking is also
written to a workbook.`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchJobID, "job-id", "", "ID of the analyzed job (required)")
	matchCmd.Flags().StringVar(&matchQuery, "query", "", "Optional candidate search query")
	matchCmd.Flags().StringVar(&matchXLSX, "xlsx", "", "Write the ranking to this .xlsx file")
	_ = matchCmd.MarkFlagRequired("job-id")
	rootCmd.AddCommand(matchCmd)
}

type matchOutput struct {
	JobID      string              `json:"jobId"`
	Title      string              `json:"title"`
	Skills     []string            `json:"skills"`
	Candidates []types.MatchResult `json:"candidates"`
	Workbook   string              `json:"workbook,omitempty"`
}

func runMatch(cmd *cobra.Command, _ []string) error {
	jobID, err := uuid.Parse(matchJobID)
	if err != nil {
		return fmt.Errorf("invalid --job-id %q: %w", matchJobID, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, appOptions{stderrLog: true})
	if err != nil {
		return err
	}
	defer a.Close()

	job, results, err := a.service.MatchJob(ctx, jobID, matchQuery)
	if err != nil {
		return err
	}

	out := matchOutput{
		JobID:      job.ID.String(),
		Title:      job.Title,
		Skills:     job.Skills,
		Candidates: results,
	}
	if matchXLSX != "" {
		path, err := export.WriteFile(matchXLSX, job, results, time.Now())
		if err != nil {
			return err
		}
		out.Workbook = path
	}
	return printJSON(cmd, out)
}
