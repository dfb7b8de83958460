package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/proofdin/proofdin/internal/ingestion"
	"github.com/proofdin/proofdin/internal/skills"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	extractText   string
	extractFile   string
	extractURL    string
	extractManual []string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract required skills from a job description",
	Long: `Run the skill extraction pipeline on a job description given as text, a local
.txt/.pdf/.docx file or a job page URL, and print the resolved skills as JSON.
No database is needed.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractText, "text", "", "Job description text")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "Path to a .txt, .pdf or .docx job description")
	extractCmd.Flags().StringVar(&extractURL, "url", "", "URL of a job posting page")
	extractCmd.Flags().StringSliceVar(&extractManual, "manual", nil, "Manual skills to merge into the result")
	extractCmd.MarkFlagsOneRequired("text", "file", "url")
	extractCmd.MarkFlagsMutuallyExclusive("text", "file", "url")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	text, err := extractInput(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("job description is empty")
	}

	client, err := newLLM(ctx, cfg, log)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}
	resolver, err := newResolver(cfg, client, log)
	if err != nil {
		return err
	}

	res := resolver.Resolve(ctx, text, extractManual)
	if res.AIError != nil {
		log.Debug("AI extraction unavailable", zap.Error(res.AIError))
	}
	return printJSON(cmd, extractOutput{Resolution: res, Characters: len([]rune(text))})
}

type extractOutput struct {
	skills.Resolution
	Characters int `json:"characters"`
}

func extractInput(ctx context.Context) (string, error) {
	switch {
	case extractFile != "":
		return ingestion.ReadFile(extractFile)
	case extractURL != "":
		return ingestion.NewFetcher(30*time.Second).FetchText(ctx, extractURL)
	default:
		return extractText, nil
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
