// Package api implements the HTTP client for the Strand analysis
// platform: the chat stream, plan confirmation, and session and message
// CRUD.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/strandtools/strand/internal/plan"
)

// RequestTimeout bounds non-streaming requests. The chat stream is
// exempt; its lifetime is controlled by the caller's context.
const RequestTimeout = 30 * time.Second

// Client talks to the Strand backend.
type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{},
	}
}

// newRequest builds an authenticated request with a JSON body.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// checkStatus maps non-2xx responses to the error taxonomy. It consumes
// the body on error. A 401 clears the stored token so the caller can
// route to login.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.Clear(); err != nil {
			slog.Warn("failed to clear expired token", "error", err)
		}
		return ErrAuthExpired
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &detail)
	slog.Debug("api error response", "status", resp.StatusCode, "detail", detail.Detail)
	return &HTTPError{Status: resp.StatusCode, Detail: detail.Detail}
}

// doJSON executes a request and decodes the JSON response into out
// (which may be nil for empty responses).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	slog.Debug("api request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StartStream opens the chat stream for a turn. The returned body is a
// sequence of "data: <json>" lines; the caller owns it and must close
// it. No timeout is applied beyond ctx: the stream is long-lived.
func (c *Client) StartStream(ctx context.Context, projectID string, req StreamRequest) (io.ReadCloser, error) {
	path := fmt.Sprintf("/projects/%s/chat/stream", url.PathEscape(projectID))
	httpReq, err := c.newRequest(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	slog.Debug("starting chat stream", "project", projectID, "session", req.SessionID)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ConfirmPlan routes a confirmed plan to the execution endpoint matching
// its cardinality: multi-step plans go to chain execution, everything
// else to single execution. A missing type is treated as single.
// The backend does not guarantee idempotence; the caller must hold its
// own in-flight guard so one user action issues one call.
func (c *Client) ConfirmPlan(ctx context.Context, projectID, sessionID, planData string) (*ConfirmResponse, error) {
	p, err := plan.Parse(planData)
	if err != nil {
		return nil, err
	}

	endpoint := "execute-plan"
	if p.IsMulti() {
		endpoint = "execute-chain"
	}
	path := fmt.Sprintf("/projects/%s/chat/%s", url.PathEscape(projectID), endpoint)

	var out ConfirmResponse
	if err := c.doJSON(ctx, http.MethodPost, path, ConfirmRequest{
		PlanData:  planData,
		SessionID: sessionID,
	}, &out); err != nil {
		return nil, err
	}
	slog.Info("plan dispatched", "endpoint", endpoint, "analysis", out.AnalysisID)
	return &out, nil
}

// ListSessions returns the project's conversations, newest first.
func (c *Client) ListSessions(ctx context.Context, projectID string) ([]Session, error) {
	var out []Session
	path := fmt.Sprintf("/projects/%s/conversations", url.PathEscape(projectID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSession creates a conversation and returns the server record.
func (c *Client) CreateSession(ctx context.Context, projectID, title string) (*Session, error) {
	var out Session
	path := fmt.Sprintf("/projects/%s/conversations", url.PathEscape(projectID))
	if err := c.doJSON(ctx, http.MethodPost, path, CreateSessionRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameSession updates a conversation title.
func (c *Client) RenameSession(ctx context.Context, sessionID, title string) error {
	path := fmt.Sprintf("/conversations/%s", url.PathEscape(sessionID))
	return c.doJSON(ctx, http.MethodPut, path, RenameSessionRequest{Title: title}, nil)
}

// DeleteSession removes a conversation and its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/conversations/%s", url.PathEscape(sessionID))
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// ListMessages returns a conversation's history in append order.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var out []Message
	path := fmt.Sprintf("/conversations/%s/messages", url.PathEscape(sessionID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMessage edits a committed message's content.
func (c *Client) UpdateMessage(ctx context.Context, messageID, content string) error {
	path := fmt.Sprintf("/messages/%s", url.PathEscape(messageID))
	return c.doJSON(ctx, http.MethodPut, path, UpdateMessageRequest{Content: content}, nil)
}

// DeleteMessage removes a committed message.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	path := fmt.Sprintf("/messages/%s", url.PathEscape(messageID))
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}
