// Package issuefiler files a tracking issue on the source host when the
// image audit finds broken photo references.
package issuefiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mgoto/recipelog/internal/imagecheck"
)

const defaultAPIBase = "https://api.github.com"

// Client talks to the issues endpoint of a GitHub-compatible API.
type Client struct {
	apiBase   string
	repo      string // "owner/name"
	token     string
	labels    []string
	assignees []string
	http      *http.Client
}

func New(repo, token string) *Client {
	return &Client{
		apiBase: defaultAPIBase,
		repo:    repo,
		token:   token,
		labels:  []string{"image-audit"},
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithAPIBase overrides the API endpoint, for GitHub Enterprise or tests.
func (c *Client) WithAPIBase(base string) *Client {
	c.apiBase = base
	return c
}

// WithLabels replaces the default "image-audit" label set.
func (c *Client) WithLabels(labels []string) *Client {
	c.labels = labels
	return c
}

// WithAssignees sets the accounts assigned to filed issues.
func (c *Client) WithAssignees(assignees []string) *Client {
	c.assignees = assignees
	return c
}

type issueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// FileReport opens one issue listing every missing photo. An empty report
// files nothing and returns an empty URL.
func (c *Client) FileReport(ctx context.Context, missing []imagecheck.Missing) (string, error) {
	if len(missing) == 0 {
		return "", nil
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "The image audit found %d public entr", len(missing))
	if len(missing) == 1 {
		body.WriteString("y")
	} else {
		body.WriteString("ies")
	}
	body.WriteString(" referencing photo files that no longer exist on disk:\n\n")
	for _, m := range missing {
		fmt.Fprintf(&body, "- entry %d: `%s`\n", m.ID, m.Path)
	}

	req := issueRequest{
		Title:     fmt.Sprintf("Image audit: %d missing photo file(s)", len(missing)),
		Body:      body.String(),
		Labels:    c.labels,
		Assignees: c.assignees,
	}
	return c.createIssue(ctx, req)
}

func (c *Client) createIssue(ctx context.Context, issue issueRequest) (string, error) {
	payload, err := json.Marshal(issue)
	if err != nil {
		return "", fmt.Errorf("marshal issue: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues", c.apiBase, c.repo)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/vnd.github+json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create issue: unexpected status %d", resp.StatusCode)
	}

	var created struct {
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return created.HTMLURL, nil
}
