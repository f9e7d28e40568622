package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiAdvisor implements Advisor using Gemini text generation.
type GeminiAdvisor struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
}

func NewGeminiAdvisor(ctx context.Context, apiKey, modelName string) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiAdvisor{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
	}, nil
}

func (a *GeminiAdvisor) ExplainFailure(ctx context.Context, traceText, reportMarkdown string) (string, error) {
	prompt := a.promptBuilder.BuildExplainPrompt(traceText, reportMarkdown)

	contents := genai.Text(prompt)
	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "No analysis available.", nil
	}
	return cleanMarkdownOutput(text), nil
}
