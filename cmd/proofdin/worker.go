package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/proofdin/proofdin/internal/events"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Analyze job descriptions queued on RabbitMQ",
	Long: `Consume analysis requests from the proofdin.analyze queue, run the same analysis as
POST /jobs/analyze for each and store the resulting jobs. Requires RABBITMQ_URL.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 4, "Number of messages processed in parallel")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{publish: true})
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("starting worker",
		zap.String("queue", events.AnalyzeQueue),
		zap.Int("concurrency", workerConcurrency),
	)
	consumer := events.NewConsumer(cfg.AMQPURL, workerConcurrency, a.log)
	return consumer.Run(ctx, a.service.HandleAnalyzeMessage)
}
