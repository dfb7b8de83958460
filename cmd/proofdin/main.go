// Package main provides the proofdin command: the HTTP API server, the analysis worker, the
// MCP server and local extraction and matching tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "proofdin",
	Short:        "ProofdIn skill-matching backend",
	Long:         "ProofdIn extracts required skills from job descriptions and ranks candidate profiles against them, over REST, AMQP, MCP or the command line.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
