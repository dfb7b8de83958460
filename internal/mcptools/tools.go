// Package mcptools exposes skill extraction and candidate matching as Model Context Protocol
// tools served over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/proofdin/proofdin/internal/jobs"
	"github.com/proofdin/proofdin/internal/types"
)

// ServerName is reported to MCP clients.
const ServerName = "proofdin"

// Tools holds the handlers of every tool.
type Tools struct {
	svc *jobs.Service
	log *zap.Logger
}

// New returns the tool handlers over svc.
func New(svc *jobs.Service, log *zap.Logger) *Tools {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tools{svc: svc, log: log}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(svc *jobs.Service, version string, log *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version)
	New(svc, log).Register(s)
	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// Register adds the tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	extract := mcp.NewTool("extract_skills",
		mcp.WithDescription("Extract technical skills from a job description, using the AI extractor when configured and the skill dictionary otherwise"),
	)
	extract.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"text": map[string]interface{}{"type": "string", "description": "Job description text"},
			"manual_skills": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Skills to append to the extracted ones",
			},
		},
		Required: []string{"text"},
	}
	s.AddTool(extract, t.ExtractSkills)

	match := mcp.NewTool("match_candidates",
		mcp.WithDescription("Rank stored candidates against a stored job's skills"),
	)
	match.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"job_id": map[string]interface{}{"type": "string", "description": "ID of the job"},
			"query":  map[string]interface{}{"type": "string", "description": "Optional free-text skill filter"},
		},
		Required: []string{"job_id"},
	}
	s.AddTool(match, t.MatchCandidates)

	list := mcp.NewTool("list_candidates",
		mcp.WithDescription("List stored candidate profiles with their skills"),
	)
	s.AddTool(list, t.ListCandidates)
}

// ExtractSkills handles extract_skills.
func (t *Tools) ExtractSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	text, _ := args["text"].(string)
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	manual, err := stringList(args["manual_skills"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := t.svc.ExtractSkills(ctx, text, manual)
	if res.AIError != nil {
		t.log.Debug("extract_skills used the dictionary", zap.Error(res.AIError))
	}
	return jsonResult(map[string]interface{}{
		"skills": res.Skills,
		"source": res.Source,
	})
}

// MatchCandidates handles match_candidates.
func (t *Tools) MatchCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	rawID, _ := args["job_id"].(string)
	jobID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid job_id %q", rawID)), nil
	}
	query, _ := args["query"].(string)

	job, results, err := t.svc.MatchJob(ctx, jobID, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to match candidates: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"jobId":      job.ID,
		"title":      job.Title,
		"skills":     job.Skills,
		"candidates": results,
	})
}

type candidateSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Headline string    `json:"headline"`
	Skills   []string  `json:"skills"`
}

// ListCandidates handles list_candidates.
func (t *Tools) ListCandidates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	candidates, err := t.svc.ListCandidates(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list candidates: %v", err)), nil
	}
	out := make([]candidateSummary, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, candidateSummary{
			ID:       c.ID,
			Name:     c.Name,
			Headline: c.Headline,
			Skills:   types.SkillNames(c.Skills),
		})
	}
	return jsonResult(out)
}

func stringList(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("manual_skills must be an array of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("manual_skills must be an array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
