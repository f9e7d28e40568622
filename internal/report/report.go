// Package report renders structured analysis results into markdown. It
// contains no decision logic of its own; everything it prints was decided by
// the investigation pipeline.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"tracescope/internal/analyzer"
	"tracescope/internal/investigate"
	"tracescope/internal/trace"
)

// CouldNotParse is the outcome shown when the trace text yielded no frames.
const CouldNotParse = "The stack trace could not be parsed. No recognized frame format was found in the input."

// Investigation renders a full investigation report.
func Investigation(inv *investigate.Investigation) string {
	var b strings.Builder
	b.WriteString("# Error Investigation\n\n")
	fmt.Fprintf(&b, "Codebase: `%s`\n\n", inv.Root)

	if !inv.Parsed() {
		b.WriteString(CouldNotParse)
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Parsed %d frame(s)", inv.TotalFrames)
	if inv.TotalFrames > len(inv.Frames) {
		fmt.Fprintf(&b, ", analyzing the top %d", len(inv.Frames))
	}
	b.WriteString(".\n\n")

	for i, fr := range inv.Frames {
		writeFrame(&b, i+1, inv.Root, fr)
	}
	return b.String()
}

func writeFrame(b *strings.Builder, n int, root string, fr investigate.FrameResult) {
	fmt.Fprintf(b, "## Frame %d: `%s` at %s:%d\n\n", n, fr.Frame.Function, fr.Frame.Filename, fr.Frame.Line)

	if fr.Missing {
		b.WriteString("File not found in the codebase (possibly external or library code).\n\n")
		return
	}

	rel := fr.Path
	if r, err := filepath.Rel(root, fr.Path); err == nil {
		rel = r
	}
	fmt.Fprintf(b, "Resolved to `%s`", rel)
	if fr.LastChange != nil {
		fmt.Fprintf(b, " (last changed %s by %s in %s: %s)",
			fr.LastChange.Date, fr.LastChange.Author, fr.LastChange.Hash, fr.LastChange.Subject)
	}
	b.WriteString("\n\n")

	if fr.NoContext || fr.Window == nil {
		fmt.Fprintf(b, "Line %d is outside the file, no context available.\n\n", fr.Frame.Line)
		return
	}

	if fr.Window.Function != trace.UnknownFunction {
		fmt.Fprintf(b, "Containing function: `%s`\n\n", fr.Window.Function)
	}

	b.WriteString("```\n")
	for i, line := range fr.Window.Lines {
		num := fr.Window.StartLine + i
		marker := "  "
		if num == fr.Window.TargetLine {
			marker = "> "
		}
		fmt.Fprintf(b, "%s%4d | %s\n", marker, num, line)
	}
	b.WriteString("```\n\n")
}

// CodebaseSummary renders a discovery-mode scan.
func CodebaseSummary(root string, analyses []*analyzer.FileAnalysis) string {
	var b strings.Builder
	b.WriteString("# Codebase Summary\n\n")
	fmt.Fprintf(&b, "Root: `%s`\n\nAnalyzed %d file(s).\n\n", root, len(analyses))

	for _, fa := range analyses {
		rel := fa.Path
		if r, err := filepath.Rel(root, fa.Path); err == nil {
			rel = r
		}
		fmt.Fprintf(&b, "## %s\n\n", rel)
		fmt.Fprintf(&b, "- Lines: %d\n", fa.LineCount)
		if len(fa.Functions) > 0 {
			fmt.Fprintf(&b, "- Functions: %s\n", strings.Join(fa.Functions, ", "))
		}
		if len(fa.Imports) > 0 {
			fmt.Fprintf(&b, "- Imports: %s\n", strings.Join(fa.Imports, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WithNarrative appends an advisor-produced analysis section to a rendered
// report.
func WithNarrative(rendered, narrative string) string {
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		return rendered
	}
	return rendered + "## Analysis\n\n" + narrative + "\n"
}
