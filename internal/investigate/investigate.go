// Package investigate runs the per-error pipeline: parse the trace, resolve
// each frame against the codebase, and extract code context around each
// call site.
package investigate

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"tracescope/internal/analyzer"
	"tracescope/internal/gitinfo"
	"tracescope/internal/locator"
	"tracescope/internal/trace"
)

const (
	// DefaultRadius is the context-window half-size in lines.
	DefaultRadius = 3
	// DefaultMaxFrames bounds per-investigation work to the top frames.
	DefaultMaxFrames = 5
)

// Options tunes one investigation.
type Options struct {
	Radius    int  // <= 0 means DefaultRadius
	MaxFrames int  // <= 0 means DefaultMaxFrames
	GitInfo   bool // annotate resolved files with their last commit
}

// FrameResult pairs a parsed frame with whatever could be recovered for it.
// Every failure mode is local: a frame can be missing its file or its
// context without affecting its neighbours.
type FrameResult struct {
	Frame trace.StackFrame
	Path  string // resolved on-disk path, "" when not found
	// Window is nil when the file was not found or the frame's line is
	// outside the file.
	Window     *analyzer.ContextWindow
	Missing    bool // not found, possibly external/library code
	NoContext  bool // file resolved but the target line is out of range
	LastChange *gitinfo.Commit
}

// Investigation is the structured result handed to report assembly.
type Investigation struct {
	Root        string
	TraceText   string
	Frames      []FrameResult
	TotalFrames int // frames parsed before the analysis cap
}

// Parsed reports whether the trace text yielded any frames at all. False
// means "could not parse", which the caller presents as its own outcome.
func (inv *Investigation) Parsed() bool { return inv.TotalFrames > 0 }

// Run parses traceText and analyzes the top frames against root. Frame
// analyses run concurrently; results keep the original frame order.
func Run(ctx context.Context, traceText, root string, opts Options) (*Investigation, error) {
	radius := opts.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	maxFrames := opts.MaxFrames
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}

	frames := trace.Parse(traceText)
	inv := &Investigation{
		Root:        root,
		TraceText:   traceText,
		TotalFrames: len(frames),
	}
	if len(frames) > maxFrames {
		frames = frames[:maxFrames]
	}
	inv.Frames = make([]FrameResult, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFrames)
	for i, frame := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			inv.Frames[i] = analyzeFrame(frame, root, radius, opts.GitInfo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inv, nil
}

func analyzeFrame(frame trace.StackFrame, root string, radius int, withGit bool) FrameResult {
	res := FrameResult{Frame: frame}

	path, ok := locator.Resolve(frame.Filename, root)
	if !ok {
		res.Missing = true
		return res
	}

	content, err := os.ReadFile(path)
	if err != nil {
		// Unreadable is reported like unresolvable; the distinction
		// only matters internally.
		res.Missing = true
		return res
	}

	res.Path = path
	res.Window = analyzer.WindowAround(string(content), frame.Line, radius)
	if res.Window == nil {
		res.NoContext = true
	}
	if withGit {
		res.LastChange, _ = gitinfo.LastChange(root, path)
	}
	return res
}
