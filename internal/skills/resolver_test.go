package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExtractor struct {
	skills []string
	err    error
}

func (s stubExtractor) Extract(context.Context, string) ([]string, error) {
	return s.skills, s.err
}

func newTestResolver(t *testing.T, ai Extractor, opts ...ResolverOption) *Resolver {
	t.Helper()
	opts = append(opts, WithLogger(zap.NewNop()))
	return NewResolver(ai, NewDictionaryExtractor(newTestDictionary(t)), opts...)
}

func TestResolver_AIResultWins(t *testing.T) {
	r := newTestResolver(t, stubExtractor{skills: []string{"Kafka"}})

	res := r.Resolve(context.Background(), "Python and React", nil)
	assert.Equal(t, []string{"Kafka"}, res.Skills)
	assert.Equal(t, SourceAI, res.Source)
	assert.NoError(t, res.AIError)
}

func TestResolver_FallbackOnError(t *testing.T) {
	aiErr := &ExtractionError{Kind: KindRequest, Cause: errors.New("timeout")}

	for _, policy := range []FallbackPolicy{FallbackOnEmpty, FallbackOnError} {
		t.Run(string(policy), func(t *testing.T) {
			r := newTestResolver(t, stubExtractor{err: aiErr}, WithFallbackPolicy(policy))

			res := r.Resolve(context.Background(), "Python and React", nil)
			assert.Equal(t, []string{"React", "Python"}, res.Skills)
			assert.Equal(t, SourceDictionary, res.Source)
			assert.True(t, IsKind(res.AIError, KindRequest))
		})
	}
}

func TestResolver_EmptyAIResult(t *testing.T) {
	ai := stubExtractor{skills: []string{}}

	onEmpty := newTestResolver(t, ai).Resolve(context.Background(), "Python", nil)
	assert.Equal(t, []string{"Python"}, onEmpty.Skills)
	assert.Equal(t, SourceDictionary, onEmpty.Source)

	onError := newTestResolver(t, ai, WithFallbackPolicy(FallbackOnError)).Resolve(context.Background(), "Python", nil)
	assert.Empty(t, onError.Skills)
	assert.Equal(t, SourceNone, onError.Source)
}

func TestResolver_NilAI(t *testing.T) {
	r := newTestResolver(t, nil)

	res := r.Resolve(context.Background(), "Node backend", []string{"GraphQL"})
	assert.Equal(t, []string{"Node.js", "GraphQL"}, res.Skills)
	assert.Equal(t, SourceDictionary, res.Source)
	assert.True(t, IsKind(res.AIError, KindUnavailable))
}

func TestResolver_AIAndDictionaryNeverMerged(t *testing.T) {
	r := newTestResolver(t, stubExtractor{skills: []string{"Kafka"}})

	res := r.Resolve(context.Background(), "Python", nil)
	assert.NotContains(t, res.Skills, "Python")
}

func TestResolver_NothingFound(t *testing.T) {
	r := newTestResolver(t, nil)

	res := r.Resolve(context.Background(), "", nil)
	assert.Empty(t, res.Skills)
	assert.NotNil(t, res.Skills)
	assert.Equal(t, SourceNone, res.Source)
}

func TestResolver_ManualMerge(t *testing.T) {
	ai := stubExtractor{skills: []string{"React", "Node.js"}}
	manual := []string{"react", "GraphQL", "", "  ", "GraphQL", "Node.js"}

	verbatim := newTestResolver(t, ai).Resolve(context.Background(), "text", manual)
	assert.Equal(t, []string{"React", "Node.js", "react", "GraphQL"}, verbatim.Skills)

	folded := newTestResolver(t, ai, WithMergePolicy(MergeCaseInsensitive)).Resolve(context.Background(), "text", manual)
	assert.Equal(t, []string{"React", "Node.js", "GraphQL"}, folded.Skills)
}

// Every non-blank manual entry must survive resolution under the verbatim policy.
func TestResolver_ManualSuperset(t *testing.T) {
	inputs := [][]string{
		nil,
		{"GraphQL"},
		{"React", "react", "REACT"},
		{"Go", "golang", "Go "},
	}
	r := newTestResolver(t, stubExtractor{err: errors.New("down")})

	for _, manual := range inputs {
		res := r.Resolve(context.Background(), "golang and React", manual)
		for _, m := range manual {
			assert.Contains(t, res.Skills, m)
		}
	}
}

func TestParsePolicies(t *testing.T) {
	fp, err := ParseFallbackPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FallbackOnEmpty, fp)

	fp, err = ParseFallbackPolicy("on-error")
	require.NoError(t, err)
	assert.Equal(t, FallbackOnError, fp)

	_, err = ParseFallbackPolicy("always")
	assert.Error(t, err)

	mp, err := ParseMergePolicy("case-insensitive")
	require.NoError(t, err)
	assert.Equal(t, MergeCaseInsensitive, mp)

	_, err = ParseMergePolicy("lower")
	assert.Error(t, err)
}
