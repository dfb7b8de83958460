package main

import (
	"context"

	"github.com/proofdin/proofdin/internal/mcptools"
	"github.com/spf13/cobra"
)

// version is reported to MCP clients.
var version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve skill extraction and matching as MCP tools over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing the extract_skills,
match_candidates and list_candidates tools.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(context.Background(), cfg, appOptions{stderrLog: true})
	if err != nil {
		return err
	}
	defer a.Close()

	return mcptools.Serve(mcptools.NewServer(a.service, version, a.log))
}
