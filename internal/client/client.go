// Package client provides the HTTP client for the CV Studio API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cvforge/cvchat/internal/metrics"
)

// ResultType classifies the outcome of an executed command.
type ResultType string

// Result types returned by the command endpoint.
const (
	TypeConversation ResultType = "conversation"
	TypePDF          ResultType = "pdf"
	TypeEdit         ResultType = "edit"
	TypeFileContent  ResultType = "file_content"
	TypeGeneric      ResultType = "generic"
)

// CommandResult is the typed outcome of a command execution.
type CommandResult struct {
	Success bool            `json:"success"`
	Type    ResultType      `json:"type"`
	Reply   string          `json:"reply,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// DocumentData is the payload of a pdf result. The server either inlines the
// document base64-encoded or hands out a URL to fetch it from.
type DocumentData struct {
	FileName      string `json:"fileName"`
	ContentBase64 string `json:"contentBase64,omitempty"`
	URL           string `json:"url,omitempty"`
}

// EditData is the payload of an edit result.
type EditData struct {
	Section     string `json:"section"`
	Instruction string `json:"instruction"`
}

// FileContentData is the payload of a file_content result.
type FileContentData struct {
	Path    string `json:"path"`
	MIME    string `json:"mime"`
	Content string `json:"content"`
}

// Document decodes the pdf payload.
func (r *CommandResult) Document() (*DocumentData, error) {
	var d DocumentData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal document payload: %w", err)
	}
	return &d, nil
}

// Edit decodes the edit payload.
func (r *CommandResult) Edit() (*EditData, error) {
	var e EditData
	if err := json.Unmarshal(r.Data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal edit payload: %w", err)
	}
	return &e, nil
}

// FileContent decodes the file_content payload.
func (r *CommandResult) FileContent() (*FileContentData, error) {
	var f FileContentData
	if err := json.Unmarshal(r.Data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal file content payload: %w", err)
	}
	return &f, nil
}

// TokenFunc supplies the current bearer token, or "" when signed out.
type TokenFunc func() string

// Client talks to the CV Studio API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
	collector  *metrics.Collector
}

// New creates a client for the given API base URL. token may be nil for
// unauthenticated use; collector may be nil to disable stats.
func New(baseURL string, timeout time.Duration, token TokenFunc, collector *metrics.Collector) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		token:     token,
		collector: collector,
	}
}

type commandRequest struct {
	Text string `json:"text"`
}

// Execute sends a free-text command for interpretation and returns its
// typed result. A non-nil error means the command never produced a result
// (transport failure, server error); unsuccessful commands come back as a
// CommandResult with Success=false.
func (c *Client) Execute(ctx context.Context, text string) (*CommandResult, error) {
	start := time.Now()
	result, err := c.execute(ctx, text)
	c.record(metrics.OpExecute, start, err)
	return result, err
}

func (c *Client) execute(ctx context.Context, text string) (*CommandResult, error) {
	reqBody, err := json.Marshal(commandRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}

	body, err := c.do(ctx, "POST", "/api/commands", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}

	var result CommandResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal command result: %w", err)
	}
	return &result, nil
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggestions returns completion candidates for a partial command, in the
// server's ranking order.
func (c *Client) Suggestions(ctx context.Context, partial string) ([]string, error) {
	start := time.Now()
	suggestions, err := c.suggestions(ctx, partial)
	c.record(metrics.OpSuggest, start, err)
	return suggestions, err
}

func (c *Client) suggestions(ctx context.Context, partial string) ([]string, error) {
	path := "/api/suggestions?q=" + url.QueryEscape(partial)
	body, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp suggestionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	return resp.Suggestions, nil
}

// FetchURL retrieves an absolute or API-relative URL, used to follow
// document links from pdf results.
func (c *Client) FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "/") {
		rawURL = c.baseURL + rawURL
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server error: %s", resp.Status)
	}
	return body, nil
}

// do performs a JSON request against an API path and returns the raw body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server error: %s - %s", resp.Status, serverMessage(respBody))
	}
	return respBody, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token == nil {
		return
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
}

func (c *Client) record(op string, start time.Time, err error) {
	if c.collector != nil {
		c.collector.Record(op, time.Since(start), err != nil)
	}
}

// serverMessage extracts the error message from an API error body, falling
// back to the raw body for non-JSON responses.
func serverMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
