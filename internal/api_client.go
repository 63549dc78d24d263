package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultAPIURL is used when no api-url is configured
const DefaultAPIURL = "http://localhost:8000"

// DefaultTimeout bounds every remote call
const DefaultTimeout = 60 * time.Second

// ChatSender posts a message to the remote chat endpoint
type ChatSender interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// HistoryFetcher loads server-held history for a session
type HistoryFetcher interface {
	History(ctx context.Context, sessionID string) ([]HistoryRecord, error)
}

// APIClient talks to the chat backend over HTTP
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the backend at baseURL
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend address
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Chat sends a message with its context window and returns the reply
func (c *APIClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.History == nil {
		req.History = ContextWindow{}
	}
	var resp ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// History returns the stored messages of a session
func (c *APIClient) History(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	var resp historyResponse
	if err := c.do(ctx, "history", http.MethodGet, "/history/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// Sessions lists every session the server knows about, most recent first
func (c *APIClient) Sessions(ctx context.Context) ([]SessionSummary, error) {
	var resp sessionsResponse
	if err := c.do(ctx, "sessions", http.MethodGet, "/sessions", nil, &resp); err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(resp.Sessions))
	for _, rec := range resp.Sessions {
		if rec.SessionID == "" {
			continue
		}
		summaries = append(summaries, SessionSummary{
			ID:        rec.SessionID,
			CreatedAt: ParseServerTime(rec.CreatedAt),
			UpdatedAt: ParseServerTime(rec.UpdatedAt),
		})
	}
	return summaries, nil
}

// DeleteHistory removes a session and its messages on the server
func (c *APIClient) DeleteHistory(ctx context.Context, sessionID string) error {
	return c.do(ctx, "delete", http.MethodDelete, "/history/"+url.PathEscape(sessionID), nil, nil)
}

// Health returns the backend's reported status
func (c *APIClient) Health(ctx context.Context) (string, error) {
	var resp healthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *APIClient) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, URL: endpoint, Err: errors.Wrap(err, "encode request")}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, URL: endpoint, Err: errors.Wrap(err, "build request")}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		Logger().Debug().Str("op", op).Str("request_id", requestID).Err(err).Msg("request failed")
		return &TransportError{Op: op, URL: endpoint, Err: errors.Wrapf(err, "%s %s", method, path)}
	}
	defer resp.Body.Close()

	Logger().Debug().
		Str("op", op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &TransportError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(raw),
			Err:        errors.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: errors.Wrap(err, "decode response")}
	}
	return nil
}

// errorDetail extracts the "detail" field of an error body.
// Non-string details (validation error lists) are returned as compact JSON.
func errorDetail(raw []byte) string {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body.Detail); err != nil {
		return ""
	}
	if buf.String() == "null" {
		return ""
	}
	return buf.String()
}

var (
	_ ChatSender     = (*APIClient)(nil)
	_ HistoryFetcher = (*APIClient)(nil)
)
