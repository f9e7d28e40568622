package trace

import (
	"regexp"
	"strconv"
	"strings"
)

// UnknownFunction is the sentinel used when no symbol name could be inferred
// for a frame or a context window.
const UnknownFunction = "unknown"

// StackFrame is one call-site reference extracted from stack-trace text.
type StackFrame struct {
	Filename string `json:"filename"` // final path component only
	Function string `json:"function"` // UnknownFunction when nothing could be inferred
	Line     int    `json:"line"`     // 1-based as written in the trace
	Column   int    `json:"column,omitempty"`
}

// recognizer pairs a line pattern with an extraction rule. Recognizers are
// evaluated in order, first match wins, so the table must be sorted from the
// most language-specific format down to the generic fallback.
type recognizer struct {
	pattern *regexp.Regexp
	extract func(m []string) StackFrame
}

// sourceExtensions are the extensions the bare-frame recognizer accepts.
// A bare "path:line" with any other extension is too ambiguous to trust.
const sourceExtensions = `rb|rake|py|js|jsx|ts|tsx|mjs|go|java|kt|php|cs|rs|c|h|cc|cpp|hpp|ex|exs`

var recognizers = []recognizer{
	// Ruby continuation: from app/models/user.rb:25:in `find'
	{
		pattern: regexp.MustCompile("^\\s*from\\s+(.+?):(\\d+):in\\s+`([^']+)'"),
		extract: func(m []string) StackFrame {
			return StackFrame{Filename: baseName(m[1]), Function: m[3], Line: atoi(m[2])}
		},
	},
	// Ruby frame: app/models/user.rb:25:in `find'
	{
		pattern: regexp.MustCompile("^\\s*(.+?):(\\d+):in\\s+`([^']+)'"),
		extract: func(m []string) StackFrame {
			return StackFrame{Filename: baseName(m[1]), Function: m[3], Line: atoi(m[2])}
		},
	},
	// Bare frame with a known source extension: src/server.py:40
	{
		pattern: regexp.MustCompile(`^\s*([^\s()]+\.(?:` + sourceExtensions + `)):(\d+)\s*$`),
		extract: func(m []string) StackFrame {
			return StackFrame{Filename: baseName(m[1]), Function: UnknownFunction, Line: atoi(m[2])}
		},
	},
	// Node / V8: at Object.getUser (/srv/app/user.js:10:15)
	{
		pattern: regexp.MustCompile(`^\s*at\s+(.+?)\s+\((.+?):(\d+)(?::(\d+))?\)\s*$`),
		extract: func(m []string) StackFrame {
			return StackFrame{Filename: baseName(m[2]), Function: m[1], Line: atoi(m[3]), Column: atoi(m[4])}
		},
	},
	// Python: File "/srv/app/user.py", line 10, in get_user
	{
		pattern: regexp.MustCompile(`^\s*File\s+"(.+?)",\s+line\s+(\d+),\s+in\s+(\S+)`),
		extract: func(m []string) StackFrame {
			return StackFrame{Filename: baseName(m[1]), Function: m[3], Line: atoi(m[2])}
		},
	},
	// JVM: at com.example.UserService.getUser(UserService.java:42)
	{
		pattern: regexp.MustCompile(`^\s*at\s+([\w.$<>]+)\((.+?):(\d+)\)\s*$`),
		extract: func(m []string) StackFrame {
			return StackFrame{Filename: baseName(m[2]), Function: m[1], Line: atoi(m[3])}
		},
	},
	// Generic fallback: get_user app/user.rb:25
	{
		pattern: regexp.MustCompile(`^\s*(\S+)\s+(\S+?):(\d+)\s*$`),
		extract: func(m []string) StackFrame {
			return StackFrame{Filename: baseName(m[2]), Function: m[1], Line: atoi(m[3])}
		},
	},
}

// Parse converts raw stack-trace text into structured frames, preserving the
// order the frames appear in the input. Lines matching no recognizer are
// skipped; an empty result means the text could not be parsed and is not an
// error.
func Parse(text string) []StackFrame {
	var frames []StackFrame
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, r := range recognizers {
			m := r.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			frames = append(frames, r.extract(m))
			break
		}
	}
	return frames
}

// baseName strips any directory prefix, keeping only the final path
// component. The locator re-resolves the real path on disk, so frames only
// need a stable lookup key. Both separator styles appear in real traces.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
