// Package remote is the HTTP client for the disk simulator command endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
)

// ErrStatus wraps replies with a non-2xx status.
var ErrStatus = errors.New("unexpected status")

// ErrOffline is returned by the offline executor.
var ErrOffline = errors.New("network disabled")

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Output string `json:"output"`
}

// Client posts command text to <base>/command.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// maxDetail bounds the response body quoted in status errors, in cells.
const maxDetail = 200

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout bounds each request. It applies to a copy of the HTTP client,
// so a shared client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

func (c *Client) BaseURL() string { return c.base }

// Execute sends command and returns the raw output text of the service.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	body, err := json.Marshal(commandRequest{Command: command})
	if err != nil {
		return "", fmt.Errorf("encode command: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/command", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("command request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return "", fmt.Errorf("send command: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("command response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("took", time.Since(start)))

	var out commandResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(out.Output)
		if decodeErr != nil || detail == "" {
			detail = strings.TrimSpace(string(raw))
		}
		detail = ansi.Truncate(detail, maxDetail, "")
		return "", fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, detail)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	return out.Output, nil
}

// Offline fails every request with ErrOffline.
type Offline struct{}

func (Offline) Execute(context.Context, string) (string, error) {
	return "", ErrOffline
}
