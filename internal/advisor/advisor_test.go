package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracescope/internal/config"
)

func TestNewFromConfig_DisabledWhenNoProvider(t *testing.T) {
	cfg := &config.Config{}
	a, err := NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNewFromConfig_RequiresAPIKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.Provider = "openai"

	_, err := NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewFromConfig_UnsupportedProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.Provider = "mainframe"
	cfg.AI.APIKey = "k"

	_, err := NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestBuildExplainPrompt(t *testing.T) {
	p := &PromptBuilder{}
	prompt := p.BuildExplainPrompt("from a.rb:1:in `x'", "# Report")

	assert.Contains(t, prompt, "from a.rb:1:in `x'")
	assert.Contains(t, prompt, "# Report")
	assert.Contains(t, prompt, "root cause")
}

func TestOpenAIAdvisor_ExplainFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req openAIChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "```markdown\nThe nil comes from the repo layer.\n```"}},
			},
		})
	}))
	defer srv.Close()

	a := NewOpenAIAdvisor("key", "gpt-4o-mini", srv.URL)
	out, err := a.ExplainFailure(context.Background(), "trace", "report")
	require.NoError(t, err)
	assert.Equal(t, "The nil comes from the repo layer.", out)
}

func TestOpenAIAdvisor_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewOpenAIAdvisor("key", "gpt-4o-mini", srv.URL)
	_, err := a.ExplainFailure(context.Background(), "trace", "report")
	assert.Error(t, err)
}

func TestCleanMarkdownOutput(t *testing.T) {
	assert.Equal(t, "hello", cleanMarkdownOutput("```markdown\nhello\n```"))
	assert.Equal(t, "hello", cleanMarkdownOutput("```\nhello\n```"))
	assert.Equal(t, "hello", cleanMarkdownOutput("  hello  "))
}
