// Package jobs implements the job and candidate operations behind the HTTP API, the worker,
// the MCP tools and the CLI: analysis, matching, export, AI parsing and CRUD.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/events"
	"github.com/proofdin/proofdin/internal/llm"
	"github.com/proofdin/proofdin/internal/skills"
	"github.com/proofdin/proofdin/internal/types"
	"go.uber.org/zap"
)

// Store is the persistence the service needs. Both the PostgreSQL and SQLite stores
// implement it. Getters return nil, nil for missing rows.
type Store interface {
	CreateJob(ctx context.Context, job *types.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ListJobsByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Job, error)
	UpdateJob(ctx context.Context, job *types.Job) error
	DeleteJob(ctx context.Context, id uuid.UUID) error

	CreateCandidate(ctx context.Context, c *types.CandidateProfile) error
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error)
	ListCandidates(ctx context.Context) ([]types.CandidateProfile, error)
	UpdateCandidate(ctx context.Context, c *types.CandidateProfile) error
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
}

// PageFetcher downloads a job page and returns its readable text.
type PageFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Service holds the collaborators of every job operation.
type Service struct {
	store     Store
	resolver  *skills.Resolver
	llm       llm.Client
	publisher events.Publisher
	fetcher   PageFetcher
	log       *zap.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLLM sets the model client used for parsing and resume generation. A nil client
// leaves those operations unavailable.
func WithLLM(c llm.Client) Option {
	return func(s *Service) { s.llm = c }
}

// WithPublisher sets where job.analyzed events go.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithFetcher sets the fetcher used for sourceUrl.
func WithFetcher(f PageFetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service over store and resolver.
func NewService(store Store, resolver *skills.Resolver, opts ...Option) *Service {
	s := &Service{
		store:     store,
		resolver:  resolver,
		publisher: events.NopPublisher{},
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AIAvailable reports whether a model client is configured.
func (s *Service) AIAvailable() bool {
	return s.llm != nil
}

// Resolver returns the skill resolver used by the service.
func (s *Service) Resolver() *skills.Resolver {
	return s.resolver
}

// Validatable is implemented by every request type.
type Validatable interface {
	Validate() error
}

// ValidateRequest runs req.Validate and converts failures to *ValidationError, naming the
// first offending field by its JSON name.
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return &ValidationError{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ValidationError{Message: err.Error()}
}
