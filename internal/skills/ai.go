package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/proofdin/proofdin/internal/llm"
	"github.com/proofdin/proofdin/internal/logger"
	"github.com/proofdin/proofdin/internal/prompts"
	"github.com/proofdin/proofdin/internal/safeguards"
)

// DefaultAIInputLimit bounds, in runes, how much of the input text is sent to the model.
const DefaultAIInputLimit = 3000

// Extractor extracts skill names from text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// ErrorKind classifies an AI extraction failure.
type ErrorKind string

const (
	// KindUnavailable means no model client is configured.
	KindUnavailable ErrorKind = "unavailable"
	// KindRequest means the provider call failed.
	KindRequest ErrorKind = "request"
	// KindParse means the model answered with something other than a JSON string array.
	KindParse ErrorKind = "parse"
)

// ExtractionError is returned by AIExtractor.Extract.
type ExtractionError struct {
	Kind  ErrorKind
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("skill extraction failed (%s): %v", e.Kind, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is an ExtractionError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var extractionErr *ExtractionError
	return errors.As(err, &extractionErr) && extractionErr.Kind == kind
}

// AIExtractor asks an LLM for the skills in a text. It makes a single attempt per call.
type AIExtractor struct {
	client     llm.Client
	inputLimit int
	logger     *zap.Logger
}

// NewAIExtractor returns an extractor backed by client. A nil client is allowed; Extract
// then always fails with KindUnavailable.
func NewAIExtractor(client llm.Client, inputLimit int, log *zap.Logger) *AIExtractor {
	if inputLimit <= 0 {
		inputLimit = DefaultAIInputLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AIExtractor{client: client, inputLimit: inputLimit, logger: log}
}

// Extract implements Extractor.
func (e *AIExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	if e.client == nil {
		return nil, &ExtractionError{Kind: KindUnavailable, Cause: llm.ErrNotConfigured}
	}
	safeguards.Inspect(e.logger, "skill extraction", text)

	prompt, err := prompts.Render("skills.json", "extract-skills", map[string]string{
		"Text": safeguards.Quote(truncateRunes(text, e.inputLimit), "job description"),
	})
	if err != nil {
		return nil, &ExtractionError{Kind: KindRequest, Cause: err}
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &ExtractionError{Kind: KindRequest, Cause: err}
	}
	e.logger.Debug("AI skill extraction response",
		zap.String("model", e.client.GetModel(llm.TierLite)),
		zap.String("response", logger.TruncateForLog(raw, 200)))

	skills, err := parseSkillList(raw)
	if err != nil {
		return nil, &ExtractionError{Kind: KindParse, Cause: err}
	}
	return skills, nil
}

// parseSkillList accepts a JSON array of strings, or an object wrapping one under "skills".
// Blank entries and exact duplicates are dropped.
func parseSkillList(raw string) ([]string, error) {
	cleaned := llm.CleanJSONBlock(raw)

	var list []string
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		var wrapped struct {
			Skills []string `json:"skills"`
		}
		if objErr := json.Unmarshal([]byte(cleaned), &wrapped); objErr != nil || wrapped.Skills == nil {
			return nil, fmt.Errorf("response is not a JSON array of strings: %w", err)
		}
		list = wrapped.Skills
	}

	result := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, skill := range list {
		skill = strings.TrimSpace(skill)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		result = append(result, skill)
	}
	return result, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
