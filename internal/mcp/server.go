// Package mcp exposes the investigator over the Model Context Protocol:
// JSON-RPC 2.0 messages, one per line, on stdin/stdout. All logging goes to
// stderr so the transport stays clean.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tracescope/internal/advisor"
	"tracescope/internal/config"
	"tracescope/internal/storage"
	"tracescope/internal/tracker"
)

const protocolVersion = "2024-11-05"

// MaxMessageSize is the maximum size for a single message (1MB). Large
// enough for a full rendered report in a tool response.
const MaxMessageSize = 1024 * 1024

// ToolHandler executes one tool call and returns the text result.
type ToolHandler func(ctx context.Context, args map[string]any) (string, error)

// Tool pairs a tool definition with its handler.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`

	handler ToolHandler
}

// Deps are the collaborators tool handlers draw on. Store, Tracker and
// Advisor are all optional; tools that need an absent one report that as a
// tool error, not a transport failure.
type Deps struct {
	Config  *config.Config
	Store   *storage.SQLiteStore
	Tracker *tracker.Client
	Advisor advisor.Advisor
}

// Server is the stdio MCP server.
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
	version string
	deps    Deps
	tools   []Tool
}

func NewServer(version string, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		logger:  logger,
		version: version,
		deps:    deps,
	}
	s.registerTools()
	return s
}

// Run reads messages until EOF.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server started", "version", s.version)
	for {
		line, err := s.readLine()
		if err == io.EOF {
			s.logger.Info("stdin closed, shutting down")
			return nil
		}
		if err != nil {
			return err
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			s.logger.Error("malformed message", "error", err)
			if werr := s.writeMessage(NewErrorMessage(nil, ParseError, err.Error())); werr != nil {
				return werr
			}
			continue
		}

		resp := s.handleMessage(ctx, &msg)
		if resp == nil {
			continue
		}
		if err := s.writeMessage(resp); err != nil {
			return err
		}
	}
}

func (s *Server) readLine() ([]byte, error) {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.stdin)
		s.scanner.Buffer(make([]byte, MaxMessageSize), MaxMessageSize)
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading from stdin: %w", err)
		}
		return nil, io.EOF
	}
	return s.scanner.Bytes(), nil
}

func (s *Server) writeMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling JSON-RPC message: %w", err)
	}
	if _, err := fmt.Fprintf(s.stdout, "%s\n", data); err != nil {
		return fmt.Errorf("error writing to stdout: %w", err)
	}
	return nil
}

func (s *Server) handleMessage(ctx context.Context, msg *Message) *Message {
	if msg.IsNotification() {
		s.logger.Debug("notification", "method", msg.Method)
		return nil
	}
	if !msg.IsRequest() {
		return NewErrorMessage(msg.ID, InvalidRequest, "invalid message: not a request or notification")
	}

	s.logger.Debug("request", "method", msg.Method, "id", msg.ID)

	switch msg.Method {
	case "initialize":
		return NewResultMessage(msg.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "tracescope",
				"version": s.version,
			},
		})
	case "tools/list":
		return NewResultMessage(msg.ID, map[string]any{"tools": s.tools})
	case "tools/call":
		return s.handleToolCall(ctx, msg)
	default:
		return NewErrorMessage(msg.ID, MethodNotFound, fmt.Sprintf("method not found: %s", msg.Method))
	}
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolCall(ctx context.Context, msg *Message) *Message {
	raw, err := json.Marshal(msg.Params)
	if err != nil {
		return NewErrorMessage(msg.ID, InvalidParams, "invalid params")
	}
	var params toolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return NewErrorMessage(msg.ID, InvalidParams, "invalid params")
	}

	for _, tool := range s.tools {
		if tool.Name != params.Name {
			continue
		}
		text, err := tool.handler(ctx, params.Arguments)
		if err != nil {
			s.logger.Warn("tool call failed", "tool", params.Name, "error", err)
			return NewResultMessage(msg.ID, toolResult(err.Error(), true))
		}
		return NewResultMessage(msg.ID, toolResult(text, false))
	}
	return NewErrorMessage(msg.ID, MethodNotFound, fmt.Sprintf("unknown tool: %s", params.Name))
}

// toolResult wraps text in the MCP content envelope. Tool failures are
// reported in-band via isError so the client can show them to the model.
func toolResult(text string, isError bool) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"isError": isError,
	}
}
