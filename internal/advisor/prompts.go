package advisor

import (
	"fmt"
	"strings"
)

// PromptBuilder assembles the prompts sent to the LLM backends.
type PromptBuilder struct{}

func (p *PromptBuilder) BuildExplainPrompt(traceText, reportMarkdown string) string {
	var b strings.Builder
	b.WriteString("You are a senior engineer investigating a production error.\n")
	b.WriteString("Below is the raw stack trace and the code context extracted for each frame.\n")
	b.WriteString("Explain the most likely root cause and suggest a concrete fix.\n")
	b.WriteString("Be specific about file names and line numbers. Keep it under 300 words.\n\n")
	fmt.Fprintf(&b, "Stack trace:\n%s\n\n", strings.TrimSpace(traceText))
	fmt.Fprintf(&b, "Extracted context:\n%s\n", reportMarkdown)
	return b.String()
}
