package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tom-doerr/perplexity-search/internal/chat"
)

// DefaultEndpoint is the hosted chat-completions endpoint.
const DefaultEndpoint = "https://api.perplexity.ai/chat/completions"

// Config holds client construction parameters.
type Config struct {
	APIKey   string
	Endpoint string // defaults to DefaultEndpoint
}

// Client issues search requests against a Perplexity-compatible
// chat-completions endpoint. One request is in flight at a time; the caller
// blocks until the response is exhausted.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewClient constructs a Client. A missing API key is a *ConfigError: it is
// required via argument or the PERPLEXITY_API_KEY environment variable, and
// that resolution happens in config, before this point.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Reason: "API key must be provided either directly or via PERPLEXITY_API_KEY environment variable"}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		// No overall timeout: streaming bodies may legitimately stay open
		// for as long as the model generates. Headers must arrive promptly.
		http: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}, nil
}

// SearchRequest describes one query turn.
type SearchRequest struct {
	Query         string
	Model         string
	Stream        bool
	ShowCitations bool
	Context       []chat.Message
}

// Search performs one request and passes response text to emit as it becomes
// available: many chunks in streaming mode, exactly one otherwise, plus an
// optional trailing references chunk. Status codes are classified into the
// typed error taxonomy before any decoding. No retry is attempted here.
func (c *Client) Search(ctx context.Context, req SearchRequest, emit func(string)) error {
	payload, err := BuildPayload(req.Query, req.Model, req.Stream, req.ShowCitations, req.Context)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("perplexity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp)
	}

	if req.Stream {
		err = decodeStream(resp.Body, req.ShowCitations, emit)
	} else {
		err = decodeBody(resp.Body, req.ShowCitations, emit)
	}
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "search completed",
		"model", req.Model,
		"stream", req.Stream,
		"context_messages", len(req.Context),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// classifyStatus maps a non-200 response to a typed error. The body is only
// consulted for the generic case, where the provider's JSON error message is
// used when parseable and the raw text otherwise.
func classifyStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &AuthenticationError{}
	case http.StatusTooManyRequests:
		return &RateLimitError{}
	case http.StatusInternalServerError:
		return &ServerError{}
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var errBody struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	detail := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &errBody); err == nil && errBody.Error.Message != "" {
		detail = errBody.Error.Message
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
