package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofdin/proofdin/internal/config"
	"github.com/proofdin/proofdin/internal/db/sqlite"
	"github.com/proofdin/proofdin/internal/export"
	"github.com/proofdin/proofdin/internal/ingestion"
	"github.com/proofdin/proofdin/internal/jobs"
	"github.com/proofdin/proofdin/internal/llm"
	"github.com/proofdin/proofdin/internal/server/ratelimit"
	"github.com/proofdin/proofdin/internal/skills"
	"github.com/proofdin/proofdin/internal/types"
)

var testAuth = config.AuthConfig{
	JWTSecret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
	JWTExpirationHours: 24,
	BcryptCost:         4,
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateContent(ctx, prompt, tier)
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeLLM) Close() error                  { return nil }

type testServer struct {
	*Server
	handler http.Handler
}

func newTestServerWith(t *testing.T, rl *ratelimit.Config, opts ...jobs.Option) *testServer {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)

	resolver := skills.NewResolver(nil, skills.NewDictionaryExtractor(skills.DefaultDictionary()))
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	s := New(Config{
		Port:      0,
		Jobs:      jobs.NewService(store, resolver, opts...),
		Users:     store,
		Auth:      testAuth,
		RateLimit: rl,
	})
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, handler: s.Handler()}
}

func newTestServer(t *testing.T, opts ...jobs.Option) *testServer {
	return newTestServerWith(t, nil, opts...)
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Rita", "email": email, "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	msg, _ := resp["error"].(string)
	return msg
}

func (s *testServer) analyze(t *testing.T, token, description string) types.AnalyzeJobResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/jobs/analyze", token, map[string]any{"description": description})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.AnalyzeJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *testServer) createCandidate(t *testing.T, token string, body map[string]any) types.CandidateProfile {
	t.Helper()
	w := s.do(t, http.MethodPost, "/candidates", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c types.CandidateProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodOptions, "/jobs/analyze", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/jobs/analyze"},
		{http.MethodPost, "/jobs/match"},
		{http.MethodGet, "/jobs"},
		{http.MethodGet, "/candidates"},
		{http.MethodPost, "/jobs/parse-jd"},
	} {
		w := s.do(t, route.method, route.path, "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}

	w := s.do(t, http.MethodGet, "/jobs", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnalyzeJob(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "rita@example.com")

	w := s.do(t, http.MethodPost, "/jobs/analyze", token, map[string]any{
		"description":  "We need Python and React.",
		"manualSkills": []string{"Leadership"},
		"title":        "Frontend Engineer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.AnalyzeJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Python", "React", "Leadership"}, resp.Skills)
	assert.Equal(t, types.JobStatusOpen, resp.Status)
	assert.NotEqual(t, uuid.Nil, resp.JobID)

	w = s.do(t, http.MethodGet, "/jobs/"+resp.JobID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var job types.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, "Frontend Engineer", job.Title)
	assert.Equal(t, "dictionary", job.SkillSource)
}

func TestAnalyzeJob_BadRequests(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "rita@example.com")

	w := s.do(t, http.MethodPost, "/jobs/analyze", token, `{"description":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/jobs/analyze", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "description")

	w = s.do(t, http.MethodPost, "/jobs/analyze", token, map[string]any{
		"description": "Go", "employmentType": "gig",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "employmentType")
}

func TestAnalyzeJob_SourceURLOnInternalAddress(t *testing.T) {
	var hits atomic.Int32
	metadata := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("INTERNAL-ONLY aws_secret_access_key=abc123"))
	}))
	defer metadata.Close()

	s := newTestServer(t, jobs.WithFetcher(ingestion.NewFetcher(time.Second)))
	token := s.register(t, "rita@example.com")

	w := s.do(t, http.MethodPost, "/jobs/analyze", token, map[string]any{
		"sourceUrl": metadata.URL + "/latest/meta-data",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to fetch job page", decodeError(t, w))
	assert.NotContains(t, w.Body.String(), "127.0.0.1")
	assert.Equal(t, int32(0), hits.Load())

	w = s.do(t, http.MethodGet, "/jobs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListJobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)
}

func TestJobCRUD(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")
	job := s.analyze(t, owner, "Python")
	path := "/jobs/" + job.JobID.String()

	w := s.do(t, http.MethodGet, "/jobs", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListJobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = s.do(t, http.MethodGet, "/jobs", other, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Jobs)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/jobs/"+uuid.NewString(), owner, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/jobs/42", owner, nil).Code)

	w = s.do(t, http.MethodPut, path, owner, map[string]any{"description": "Docker and Python"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, []string{"Python", "Docker"}, updated.Skills)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, path, other, map[string]any{"description": "Go"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path, other, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, owner, nil).Code)
}

func TestMatch(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	job := s.analyze(t, owner, "We need Python and React.")

	s.createCandidate(t, owner, map[string]any{"name": "Both", "skills": []any{"python", map[string]any{"name": "React", "level": "expert"}}})
	s.createCandidate(t, owner, map[string]any{"name": "Half", "skills": []string{"React"}})
	s.createCandidate(t, owner, map[string]any{"name": "None", "skills": []string{"Java"}})

	w := s.do(t, http.MethodPost, "/jobs/match", owner, map[string]any{"jobId": job.JobID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, "Both", resp.Candidates[0].Name)
	assert.Equal(t, 100, resp.Candidates[0].Score)
	assert.Equal(t, 50, resp.Candidates[1].Score)

	w = s.do(t, http.MethodPost, "/jobs/match", owner, map[string]any{"jobId": job.JobID, "query": "Java"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "None", resp.Candidates[0].Name)
}

func TestMatch_QueryWithNoOverlap(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	job := s.analyze(t, owner, "We need Python and React.")

	s.createCandidate(t, owner, map[string]any{"name": "Py", "skills": []string{"Python"}})
	s.createCandidate(t, owner, map[string]any{"name": "Jav", "skills": []string{"Java"}})

	w := s.do(t, http.MethodPost, "/jobs/match", owner, map[string]any{"jobId": job.JobID, "query": "react developer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.JSONEq(t, `[]`, string(raw["candidates"]))
}

func TestAnalyzeJob_ManualSkillsWithoutAI(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "owner@example.com")

	w := s.do(t, http.MethodPost, "/jobs/analyze", token, map[string]any{
		"description":  "Backend role using Node",
		"manualSkills": []string{"GraphQL"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.AnalyzeJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Skills, "Node.js")
	assert.Contains(t, resp.Skills, "GraphQL")
}

func TestMatch_Errors(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")
	job := s.analyze(t, owner, "Python")

	w := s.do(t, http.MethodPost, "/jobs/match", owner, map[string]any{"jobId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/jobs/match", owner, map[string]any{"jobId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/jobs/match", other, map[string]any{"jobId": job.JobID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMatchExport(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	job := s.analyze(t, owner, "Python")
	s.createCandidate(t, owner, map[string]any{"name": "Ada", "skills": []string{"Python"}})

	w := s.do(t, http.MethodPost, "/jobs/match/export", owner, map[string]any{"jobId": job.JobID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), job.JobID.String())
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "expected a zip container")
}

const validParsedJob = `{
	"title": "Senior Backend Engineer",
	"type": "full-time",
	"experienceLevel": "senior",
	"location": "Remote (EU)",
	"salaryRange": {"min": 80000, "max": 100000, "currency": "EUR"},
	"skills": ["golang", "PostgreSQL", "Go"],
	"niceToHaveSkills": ["k8s"],
	"benefits": ["Learning budget"],
	"responsibilities": ["Own the billing service"]
}`

func TestParseJD(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		s := newTestServer(t)
		token := s.register(t, "rita@example.com")

		w := s.do(t, http.MethodPost, "/jobs/parse-jd", token, map[string]string{"description": "Senior Go engineer"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "AI service unavailable", decodeError(t, w))
	})

	t.Run("success", func(t *testing.T) {
		s := newTestServer(t, jobs.WithLLM(&fakeLLM{response: validParsedJob}))
		token := s.register(t, "rita@example.com")

		w := s.do(t, http.MethodPost, "/jobs/parse-jd", token, map[string]string{"description": "Senior Go engineer"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var parsed types.ParsedJob
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
		assert.Equal(t, "Senior Backend Engineer", parsed.Title)
		assert.Equal(t, []string{"Go", "PostgreSQL"}, parsed.Skills)
	})

	t.Run("invalid model output", func(t *testing.T) {
		s := newTestServer(t, jobs.WithLLM(&fakeLLM{response: "I cannot help with that"}))
		token := s.register(t, "rita@example.com")

		w := s.do(t, http.MethodPost, "/jobs/parse-jd", token, map[string]string{"description": "Senior Go engineer"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("missing description", func(t *testing.T) {
		s := newTestServer(t)
		token := s.register(t, "rita@example.com")

		w := s.do(t, http.MethodPost, "/jobs/parse-jd", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider error is not echoed", func(t *testing.T) {
		providerErr := errors.New("googleapi: Error 403: API key AIzaSECRET invalid")
		s := newTestServer(t, jobs.WithLLM(&fakeLLM{err: providerErr}))
		token := s.register(t, "rita@example.com")

		w := s.do(t, http.MethodPost, "/jobs/parse-jd", token, map[string]string{"description": "Senior Go engineer"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to parse job description", decodeError(t, w))
		assert.NotContains(t, w.Body.String(), "AIzaSECRET")
		assert.NotContains(t, w.Body.String(), "googleapi")
	})
}

func TestCandidateCRUD(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")

	c := s.createCandidate(t, owner, map[string]any{
		"name":       "Ada",
		"headline":   "Backend engineer",
		"skills":     []any{"Go", map[string]any{"skill": "SQL", "years": "3"}},
		"experience": []map[string]string{{"title": "Engineer", "company": "Acme", "startDate": "2019-01"}},
	})
	assert.Equal(t, []string{"Go", "SQL"}, types.SkillNames(c.Skills))
	assert.Equal(t, 3, c.Skills[1].Years)
	path := "/candidates/" + c.ID.String()

	w := s.do(t, http.MethodGet, "/candidates", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListCandidatesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/candidates/"+uuid.NewString(), owner, nil).Code)

	w = s.do(t, http.MethodPut, path, other, map[string]any{"name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, path, owner, map[string]any{"name": "Ada Lovelace", "skills": []string{"Go"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.CandidateProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Ada Lovelace", updated.Name)

	w = s.do(t, http.MethodPost, "/candidates", owner, map[string]any{
		"name":       "Bad",
		"experience": []map[string]string{{"title": "Dev", "startDate": "someday"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path, other, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, owner, nil).Code)
}

func TestTailoredResume(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	job := s.analyze(t, owner, "Python")
	c := s.createCandidate(t, owner, map[string]any{"name": "Ada", "skills": []string{"Python"}})
	path := "/candidates/" + c.ID.String() + "/tailored-resume"

	w := s.do(t, http.MethodPost, path, owner, map[string]any{"jobId": job.JobID})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s = newTestServer(t, jobs.WithLLM(&fakeLLM{response: "# Ada\n\nPython engineer"}))
	owner = s.register(t, "owner@example.com")
	job = s.analyze(t, owner, "Python")
	c = s.createCandidate(t, owner, map[string]any{"name": "Ada", "skills": []string{"Python"}})
	path = "/candidates/" + c.ID.String() + "/tailored-resume"

	w = s.do(t, http.MethodPost, path, owner, map[string]any{"jobId": job.JobID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp types.TailoredResumeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "# Ada\n\nPython engineer", resp.Resume)

	w = s.do(t, http.MethodPost, path, owner, map[string]any{"jobId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTailoredResume_ProviderErrorIsNotEchoed(t *testing.T) {
	s := newTestServer(t, jobs.WithLLM(&fakeLLM{err: errors.New("upstream 500: quota project secret-project-42")}))
	owner := s.register(t, "owner@example.com")
	job := s.analyze(t, owner, "Python")
	c := s.createCandidate(t, owner, map[string]any{"name": "Ada", "skills": []string{"Python"}})

	w := s.do(t, http.MethodPost, "/candidates/"+c.ID.String()+"/tailored-resume", owner, map[string]any{"jobId": job.JobID})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to generate resume", decodeError(t, w))
	assert.NotContains(t, w.Body.String(), "secret-project-42")
}

func TestRateLimit(t *testing.T) {
	s := newTestServerWith(t, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/jobs", "", nil).Code)
	w := s.do(t, http.MethodGet, "/jobs", "", nil)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = s.do(t, http.MethodGet, "/jobs", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeError(t, w))

	// Health checks are never limited.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
}
