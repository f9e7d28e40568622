// Package tracker is a thin HTTP client for a GitHub-style issue tracker.
// It fetches the error reports investigations start from and files the
// follow-up tickets they produce. No analysis happens here.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"

	// DefaultListLimit and MaxListLimit bound issue listing upstream.
	DefaultListLimit = 10
	MaxListLimit     = 100
)

type Client struct {
	client  *http.Client
	baseURL string
	owner   string
	repo    string
	token   string
}

// Issue is the subset of tracker issue fields the investigator consumes.
type Issue struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	State     string `json:"state"`
	URL       string `json:"html_url"`
	CreatedAt string `json:"created_at"`
}

// Comment is one issue comment.
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	URL  string `json:"html_url"`
}

func NewClient(baseURL, owner, repo, token string) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(endpoint, "/"),
		owner:   owner,
		repo:    repo,
		token:   token,
	}
}

// FetchIssue retrieves a single issue by number.
func (c *Client) FetchIssue(ctx context.Context, number int) (*Issue, error) {
	var issue Issue
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", c.owner, c.repo, number)
	if err := c.do(ctx, http.MethodGet, path, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListIssues retrieves open issues, newest first. limit defaults to
// DefaultListLimit and is clamped to MaxListLimit.
func (c *Client) ListIssues(ctx context.Context, limit int) ([]Issue, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	var issues []Issue
	path := fmt.Sprintf("/repos/%s/%s/issues?state=open&per_page=%d", c.owner, c.repo, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// ListComments retrieves all comments on an issue.
func (c *Client) ListComments(ctx context.Context, number int) ([]Comment, error) {
	var comments []Comment
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", c.owner, c.repo, number)
	if err := c.do(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateIssue files a new ticket.
func (c *Client) CreateIssue(ctx context.Context, title, body string) (*Issue, error) {
	payload := map[string]string{"title": title, "body": body}
	var issue Issue
	path := fmt.Sprintf("/repos/%s/%s/issues", c.owner, c.repo)
	if err := c.do(ctx, http.MethodPost, path, payload, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// AddComment posts a comment, typically the rendered investigation report.
func (c *Client) AddComment(ctx context.Context, number int, body string) (*Comment, error) {
	payload := map[string]string{"body": body}
	var comment Comment
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", c.owner, c.repo, number)
	if err := c.do(ctx, http.MethodPost, path, payload, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tracker request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tracker returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode tracker response: %w", err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ExtractTraceText pulls the most likely stack-trace text out of an issue
// body: the first fenced code block when present, the whole body otherwise.
// The parser tolerates surrounding prose either way.
func ExtractTraceText(body string) string {
	lines := strings.Split(body, "\n")
	var block []string
	inBlock := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				return strings.Join(block, "\n")
			}
			inBlock = true
			continue
		}
		if inBlock {
			block = append(block, line)
		}
	}
	return body
}
