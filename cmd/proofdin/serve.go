package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/proofdin/proofdin/internal/server"
	"github.com/proofdin/proofdin/internal/server/ratelimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job analysis, matching and candidate endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before starting")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{publish: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if serveMigrate {
		if err := a.store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Jobs:      a.service,
		Users:     a.store,
		Auth:      cfg.Auth,
		RateLimit: ratelimit.FromConfig(cfg.RateLimit),
		Logger:    a.log,
	})

	a.log.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.Bool("ai_available", a.service.AIAvailable()),
	)
	return srv.Start(ctx)
}
