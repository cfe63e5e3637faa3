package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMalformedResponse is wrapped by errors caused by a 2xx body that could
// not be decoded.
var ErrMalformedResponse = errors.New("webhook: malformed response")

// AskRequest is the body sent to the ask-question webhook.
type AskRequest struct {
	Question      string `json:"question"`
	AccountNumber string `json:"accountNumber"`
	SessionID     string `json:"sessionId,omitempty"`
	Date          string `json:"date,omitempty"`
}

// Answer is the decoded reply of the ask-question webhook. Answer is empty
// when the webhook omitted it.
type Answer struct {
	Answer   string
	DataRows *int
}

// ReportRequest is the body sent to the problem-report webhook.
type ReportRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Account     string `json:"account"`
	Timestamp   string `json:"timestamp"`
	SessionID   string `json:"sessionId,omitempty"`
}

// ReportReply carries the optional free-text reply of the report webhook.
type ReportReply struct {
	Output string
}

type reportEnvelope struct {
	Output string `json:"output"`
}

// HTTPStatusError captures non-2xx webhook responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("webhook: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client posts questions and problem reports to the two assistant webhooks.
type Client struct {
	askURL     string
	reportURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client for the given endpoints. Timeouts are left to
// the caller's context; the default HTTP client has none of its own.
func NewClient(askURL, reportURL string, opts ...Option) (*Client, error) {
	askURL = strings.TrimSpace(askURL)
	reportURL = strings.TrimSpace(reportURL)
	if err := validateEndpoint(askURL); err != nil {
		return nil, fmt.Errorf("webhook: ask url: %w", err)
	}
	if err := validateEndpoint(reportURL); err != nil {
		return nil, fmt.Errorf("webhook: report url: %w", err)
	}
	c := &Client{
		askURL:     askURL,
		reportURL:  reportURL,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func validateEndpoint(raw string) error {
	if raw == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

// AskQuestion posts a question and decodes the answer envelope, which may be
// a single object or an array whose first element holds the answer.
func (c *Client) AskQuestion(ctx context.Context, in AskRequest) (Answer, error) {
	raw, err := c.postJSON(ctx, c.askURL, in)
	if err != nil {
		return Answer{}, err
	}
	return decodeAnswer(raw)
}

// SendReport posts a problem report. The reply output is only set when the
// webhook answered with an array whose first element carries one.
func (c *Client) SendReport(ctx context.Context, in ReportRequest) (ReportReply, error) {
	raw, err := c.postJSON(ctx, c.reportURL, in)
	if err != nil {
		return ReportReply{}, err
	}
	return decodeReportReply(raw)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("webhook: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	raw, err := c.doJSONRequest(req, endpoint)
	c.logger.Debug("webhook request finished",
		"url", endpoint,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err,
	)
	if err != nil {
		return nil, fmt.Errorf("webhook: request failed: %w", err)
	}
	return raw, nil
}

func (c *Client) doJSONRequest(req *http.Request, endpoint string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        endpoint,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

// decodeAnswer only fails on a body that is not JSON. Fields of the wrong type
// are dropped so the caller can fall back to its default text.
func decodeAnswer(raw []byte) (Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Answer{}, nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return Answer{}, fmt.Errorf("webhook: decode answer: %w: %w", ErrMalformedResponse, err)
	}
	if list, ok := body.([]any); ok {
		if len(list) == 0 {
			return Answer{}, nil
		}
		body = list[0]
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return Answer{}, nil
	}

	var out Answer
	if text, ok := obj["answer"].(string); ok {
		out.Answer = text
	}
	if n, ok := rowCount(obj["dataRows"]); ok {
		out.DataRows = &n
	}
	return out, nil
}

// rowCount accepts whole, non-negative numbers that fit in an int32.
func rowCount(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func decodeReportReply(raw []byte) (ReportReply, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ReportReply{}, nil
	}
	if !json.Valid(raw) {
		return ReportReply{}, fmt.Errorf("webhook: decode report reply: %w", ErrMalformedResponse)
	}
	if raw[0] != '[' {
		return ReportReply{}, nil
	}

	var list []reportEnvelope
	if err := json.Unmarshal(raw, &list); err != nil {
		// An array of something other than objects carries no output.
		return ReportReply{}, nil
	}
	if len(list) == 0 {
		return ReportReply{}, nil
	}
	return ReportReply{Output: list[0].Output}, nil
}
