package mcp

import (
	"context"
	"fmt"

	"tracescope/internal/investigate"
	"tracescope/internal/locator"
	"tracescope/internal/report"
	"tracescope/internal/tracker"
)

func (s *Server) registerTools() {
	s.tools = []Tool{
		{
			Name:        "investigate_error",
			Description: "Parse a stack trace, locate each frame in the codebase and return a markdown report with code context per frame",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"trace_text": map[string]any{
						"type":        "string",
						"description": "Raw stack-trace text, any supported dialect",
					},
					"root": map[string]any{
						"type":        "string",
						"description": "Codebase root path; defaults to the configured project root",
					},
					"context_radius": map[string]any{
						"type":        "integer",
						"default":     investigate.DefaultRadius,
						"description": "Lines of context on each side of a frame's target line",
					},
					"max_frames": map[string]any{
						"type":        "integer",
						"default":     investigate.DefaultMaxFrames,
						"description": "How many of the top frames to analyze",
					},
				},
				"required": []string{"trace_text"},
			},
			handler: s.investigateError,
		},
		{
			Name:        "analyze_codebase",
			Description: "Scan the codebase and return a markdown summary of its source files, functions and imports",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"root": map[string]any{
						"type":        "string",
						"description": "Codebase root path; defaults to the configured project root",
					},
					"max_files": map[string]any{
						"type":        "integer",
						"default":     locator.DefaultMaxFiles,
						"description": "Cap on the number of files analyzed",
					},
				},
			},
			handler: s.analyzeCodebase,
		},
		{
			Name:        "fetch_issue",
			Description: "Fetch an issue from the configured tracker and extract its stack-trace text",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"number": map[string]any{
						"type":        "integer",
						"description": "Issue number",
					},
				},
				"required": []string{"number"},
			},
			handler: s.fetchIssue,
		},
		{
			Name:        "create_ticket",
			Description: "Create a follow-up ticket on the configured tracker",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "Ticket title",
					},
					"body": map[string]any{
						"type":        "string",
						"description": "Ticket body, markdown",
					},
				},
				"required": []string{"title", "body"},
			},
			handler: s.createTicket,
		},
	}
}

func (s *Server) investigateError(ctx context.Context, args map[string]any) (string, error) {
	traceText := stringArg(args, "trace_text", "")
	if traceText == "" {
		return "", fmt.Errorf("trace_text is required")
	}
	root := stringArg(args, "root", s.deps.Config.Project.Root)

	inv, err := investigate.Run(ctx, traceText, root, investigate.Options{
		Radius:    intArg(args, "context_radius", s.deps.Config.Limits.ContextRadius),
		MaxFrames: intArg(args, "max_frames", s.deps.Config.Limits.MaxFrames),
		GitInfo:   true,
	})
	if err != nil {
		return "", err
	}

	rendered := report.Investigation(inv)

	if s.deps.Advisor != nil && inv.Parsed() {
		narrative, err := s.deps.Advisor.ExplainFailure(ctx, traceText, rendered)
		if err != nil {
			s.logger.Warn("advisor failed, returning heuristic report", "error", err)
		} else {
			rendered = report.WithNarrative(rendered, narrative)
		}
	}

	if s.deps.Store != nil {
		if _, err := s.deps.Store.SaveInvestigation(ctx, inv, rendered); err != nil {
			s.logger.Warn("failed to archive investigation", "error", err)
		}
	}
	return rendered, nil
}

func (s *Server) analyzeCodebase(ctx context.Context, args map[string]any) (string, error) {
	root := stringArg(args, "root", s.deps.Config.Project.Root)

	analyses, err := locator.Scan(root, locator.ScanOptions{
		MaxFiles: intArg(args, "max_files", s.deps.Config.Limits.MaxFiles),
	})
	if err != nil {
		return "", fmt.Errorf("scan failed: %w", err)
	}
	return report.CodebaseSummary(root, analyses), nil
}

func (s *Server) fetchIssue(ctx context.Context, args map[string]any) (string, error) {
	if s.deps.Tracker == nil {
		return "", fmt.Errorf("no tracker configured")
	}
	number := intArg(args, "number", 0)
	if number <= 0 {
		return "", fmt.Errorf("number is required")
	}

	issue, err := s.deps.Tracker.FetchIssue(ctx, number)
	if err != nil {
		return "", err
	}

	extracted := ""
	if t := tracker.ExtractTraceText(issue.Body); t != issue.Body {
		extracted = fmt.Sprintf("\n\nExtracted trace:\n```\n%s\n```", t)
	}

	// Follow-up traces often arrive as comments; include them so the model
	// sees the full discussion. A comment fetch failure is not fatal.
	discussion := ""
	if comments, err := s.deps.Tracker.ListComments(ctx, number); err == nil {
		for _, c := range comments {
			discussion += fmt.Sprintf("\n\n---\nComment:\n%s", c.Body)
		}
	}
	return fmt.Sprintf("# Issue #%d: %s\n\nState: %s\n\n%s%s%s", issue.Number, issue.Title, issue.State, issue.Body, extracted, discussion), nil
}

func (s *Server) createTicket(ctx context.Context, args map[string]any) (string, error) {
	if s.deps.Tracker == nil {
		return "", fmt.Errorf("no tracker configured")
	}
	title := stringArg(args, "title", "")
	body := stringArg(args, "body", "")
	if title == "" || body == "" {
		return "", fmt.Errorf("title and body are required")
	}

	issue, err := s.deps.Tracker.CreateIssue(ctx, title, body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created ticket #%d: %s", issue.Number, issue.URL), nil
}

// JSON numbers arrive as float64; tool schemas declare integers.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}
