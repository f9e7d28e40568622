package analyzer

import (
	"strings"

	"tracescope/internal/trace"
)

// ContextWindow is a contiguous slice of a file's lines centered on a target
// line. Windows are recomputed per request and never cached.
type ContextWindow struct {
	StartLine  int      `json:"start_line"` // 1-based, inclusive
	EndLine    int      `json:"end_line"`   // 1-based, inclusive
	TargetLine int      `json:"target_line"`
	Lines      []string `json:"lines"`
	Function   string   `json:"function"` // containing function, trace.UnknownFunction when none found
}

// WindowAround extracts up to radius lines on each side of targetLine,
// clamped to the file boundaries. A target outside [1, lineCount] means no
// context is available and nil is returned; that is an expected outcome, not
// an error.
func WindowAround(content string, targetLine, radius int) *ContextWindow {
	lines := strings.Split(content, "\n")
	if targetLine < 1 || targetLine > len(lines) {
		return nil
	}

	idx := targetLine - 1
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius + 1
	if end > len(lines) {
		end = len(lines)
	}

	return &ContextWindow{
		StartLine:  start + 1,
		EndLine:    end,
		TargetLine: targetLine,
		Lines:      append([]string(nil), lines[start:end]...),
		Function:   containingFunction(lines, idx),
	}
}

// containingFunction scans backward from the target line looking for the
// nearest declaration any recognizer accepts. Reaching the top of the file
// without a match yields the unknown sentinel.
func containingFunction(lines []string, idx int) string {
	for i := idx; i >= 0; i-- {
		for _, p := range declPatterns {
			if m := p.FindStringSubmatch(lines[i]); m != nil {
				return m[1]
			}
		}
	}
	return trace.UnknownFunction
}
