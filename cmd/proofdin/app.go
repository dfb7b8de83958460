package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/proofdin/proofdin/internal/config"
	"github.com/proofdin/proofdin/internal/db"
	"github.com/proofdin/proofdin/internal/db/sqlite"
	"github.com/proofdin/proofdin/internal/events"
	"github.com/proofdin/proofdin/internal/ingestion"
	"github.com/proofdin/proofdin/internal/jobs"
	"github.com/proofdin/proofdin/internal/llm"
	"github.com/proofdin/proofdin/internal/logger"
	"github.com/proofdin/proofdin/internal/server"
	"github.com/proofdin/proofdin/internal/skills"
	"go.uber.org/zap"
)

// sqlitePrefix selects the embedded SQLite store, e.g. DATABASE_URL=sqlite:proofdin.db.
const sqlitePrefix = "sqlite:"

// store is what every command needs from a database backend.
type store interface {
	jobs.Store
	server.UserStore
	Migrate(ctx context.Context) error
	Close()
}

// app bundles the collaborators built from configuration.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   store
	service *jobs.Service
	closers []func()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr when stdout carries command output.
func newLogger(cfg *config.Config, stderr bool) (*zap.Logger, error) {
	build := logger.New
	if stderr {
		build = logger.NewStderr
	}
	log, err := build(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func openStore(ctx context.Context, databaseURL string) (store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if path, ok := strings.CutPrefix(databaseURL, sqlitePrefix); ok {
		return sqlite.Open(ctx, path)
	}
	return db.Connect(ctx, databaseURL)
}

// newResolver builds the extraction orchestrator. client may be nil.
func newResolver(cfg *config.Config, client llm.Client, log *zap.Logger) (*skills.Resolver, error) {
	dict := skills.DefaultDictionary()
	if cfg.Skills.DictionaryPath != "" {
		loaded, err := skills.LoadDictionary(cfg.Skills.DictionaryPath)
		if err != nil {
			return nil, err
		}
		dict = loaded
	}

	fallback, err := skills.ParseFallbackPolicy(cfg.Skills.FallbackPolicy)
	if err != nil {
		return nil, err
	}
	merge, err := skills.ParseMergePolicy(cfg.Skills.ManualMerge)
	if err != nil {
		return nil, err
	}

	var ai skills.Extractor
	if client != nil {
		ai = skills.NewAIExtractor(client, cfg.Skills.AIInputLimit, log)
	}
	return skills.NewResolver(ai, skills.NewDictionaryExtractor(dict),
		skills.WithFallbackPolicy(fallback),
		skills.WithMergePolicy(merge),
		skills.WithLogger(log),
	), nil
}

// newLLM returns nil without error when the provider has no credentials.
func newLLM(ctx context.Context, cfg *config.Config, log *zap.Logger) (llm.Client, error) {
	client, err := llm.NewClient(ctx, cfg.LLM)
	if errors.Is(err, llm.ErrNotConfigured) {
		log.Warn("LLM provider not configured, AI features disabled", zap.String("provider", cfg.LLM.Provider))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// appOptions select per-command wiring.
type appOptions struct {
	// publish sends job.analyzed events to amqp_url when it is configured.
	publish bool
	// stderrLog keeps stdout free for command output.
	stderrLog bool
}

// newApp wires logging, storage, the LLM client, the resolver and the job service.
func newApp(ctx context.Context, cfg *config.Config, opt appOptions) (*app, error) {
	log, err := newLogger(cfg, opt.stderrLog)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	st, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	client, err := newLLM(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if client != nil {
		a.closers = append(a.closers, func() { _ = client.Close() })
	}

	resolver, err := newResolver(cfg, client, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []jobs.Option{
		jobs.WithLogger(log),
		jobs.WithFetcher(ingestion.NewFetcher(30 * time.Second)),
	}
	if client != nil {
		opts = append(opts, jobs.WithLLM(client))
	}
	if opt.publish && cfg.AMQPURL != "" {
		pub, err := events.DialPublisher(cfg.AMQPURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = pub.Close() })
		opts = append(opts, jobs.WithPublisher(pub))
	}

	a.service = jobs.NewService(st, resolver, opts...)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
