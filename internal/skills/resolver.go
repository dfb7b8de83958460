package skills

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/proofdin/proofdin/internal/llm"
)

// FallbackPolicy decides when the dictionary extractor replaces the AI result.
type FallbackPolicy string

const (
	// FallbackOnEmpty falls back whenever the AI produced no skills, failed or not.
	FallbackOnEmpty FallbackPolicy = "on-empty"
	// FallbackOnError falls back only when the AI call failed.
	FallbackOnError FallbackPolicy = "on-error"
)

// MergePolicy decides how manual skills are deduplicated against extracted ones.
type MergePolicy string

const (
	// MergeVerbatim skips a manual entry only when the identical string is present.
	MergeVerbatim MergePolicy = "verbatim"
	// MergeCaseInsensitive skips a manual entry when an entry equal under case folding is present.
	MergeCaseInsensitive MergePolicy = "case-insensitive"
)

// ParseFallbackPolicy validates a configured fallback policy name.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackOnEmpty, FallbackOnError:
		return p, nil
	case "":
		return FallbackOnEmpty, nil
	default:
		return "", fmt.Errorf("unknown fallback policy %q", s)
	}
}

// ParseMergePolicy validates a configured manual merge policy name.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(s); p {
	case MergeVerbatim, MergeCaseInsensitive:
		return p, nil
	case "":
		return MergeVerbatim, nil
	default:
		return "", fmt.Errorf("unknown manual merge policy %q", s)
	}
}

// Source names where the automatically extracted skills came from.
type Source string

const (
	SourceAI         Source = "ai"
	SourceDictionary Source = "dictionary"
	// SourceNone means no skills were extracted automatically.
	SourceNone Source = "none"
)

// Resolution is the outcome of Resolver.Resolve.
type Resolution struct {
	Skills []string `json:"skills"`
	Source Source   `json:"source"`
	// AIError is the AI extractor's failure, if any, kept for logging and diagnostics.
	AIError error `json:"-"`
}

// Resolver runs the AI extractor, falls back to the dictionary extractor and merges manual
// skills into the result.
type Resolver struct {
	ai       Extractor
	dict     *DictionaryExtractor
	fallback FallbackPolicy
	merge    MergePolicy
	logger   *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFallbackPolicy sets the fallback policy. The default is FallbackOnEmpty.
func WithFallbackPolicy(p FallbackPolicy) ResolverOption {
	return func(r *Resolver) { r.fallback = p }
}

// WithMergePolicy sets the manual merge policy. The default is MergeVerbatim.
func WithMergePolicy(p MergePolicy) ResolverOption {
	return func(r *Resolver) { r.merge = p }
}

// WithLogger sets the logger used to report AI failures.
func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a Resolver. ai may be nil, in which case only the dictionary is used.
func NewResolver(ai Extractor, dict *DictionaryExtractor, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		ai:       ai,
		dict:     dict,
		fallback: FallbackOnEmpty,
		merge:    MergeVerbatim,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve extracts skills from text and merges manualSkills into them. It never fails: AI
// problems are reported through Resolution.AIError and the dictionary result is used instead.
func (r *Resolver) Resolve(ctx context.Context, text string, manualSkills []string) Resolution {
	var (
		aiSkills []string
		aiErr    error
	)
	if r.ai != nil {
		aiSkills, aiErr = r.ai.Extract(ctx, text)
	} else {
		aiErr = &ExtractionError{Kind: KindUnavailable, Cause: llm.ErrNotConfigured}
	}

	if aiErr != nil && !IsKind(aiErr, KindUnavailable) {
		r.logger.Warn("AI skill extraction failed, using dictionary", zap.Error(aiErr))
	}

	res := Resolution{AIError: aiErr}
	useFallback := aiErr != nil
	if r.fallback == FallbackOnEmpty && len(aiSkills) == 0 {
		useFallback = true
	}

	auto := aiSkills
	res.Source = SourceAI
	if useFallback {
		auto = nil
		if r.dict != nil {
			auto = r.dict.Extract(text)
		}
		res.Source = SourceDictionary
	}
	if len(auto) == 0 {
		res.Source = SourceNone
	}

	res.Skills = r.mergeManual(auto, manualSkills)
	return res
}

func (r *Resolver) mergeManual(auto, manual []string) []string {
	merged := make([]string, 0, len(auto)+len(manual))
	merged = append(merged, auto...)

	present := make(map[string]bool, len(merged))
	key := func(s string) string {
		if r.merge == MergeCaseInsensitive {
			return strings.ToLower(s)
		}
		return s
	}
	for _, s := range merged {
		present[key(s)] = true
	}

	for _, s := range manual {
		if strings.TrimSpace(s) == "" || present[key(s)] {
			continue
		}
		present[key(s)] = true
		merged = append(merged, s)
	}
	return merged
}
