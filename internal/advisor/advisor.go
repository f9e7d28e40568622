// Package advisor turns a finished investigation into an optional
// root-cause narrative using an LLM. The investigation pipeline never
// depends on it: a missing or failing advisor degrades the report to its
// heuristic content.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"tracescope/internal/config"
)

// Advisor generates a prose analysis of an investigated failure.
type Advisor interface {
	ExplainFailure(ctx context.Context, traceText, reportMarkdown string) (string, error)
}

// NewFromConfig builds the configured advisor. An empty provider returns
// (nil, nil): advice is disabled, not broken.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Advisor, error) {
	switch cfg.AI.Provider {
	case "":
		return nil, nil
	case "gemini":
		if cfg.AI.APIKey == "" {
			return nil, fmt.Errorf("gemini advisor requires an API key")
		}
		model := cfg.AI.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return NewGeminiAdvisor(ctx, cfg.AI.APIKey, model)
	case "openai":
		if cfg.AI.APIKey == "" {
			return nil, fmt.Errorf("openai advisor requires an API key")
		}
		model := cfg.AI.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAIAdvisor(cfg.AI.APIKey, model, cfg.AI.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AI.Provider)
	}
}

func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
