// Package ollama is a minimal client for the Ollama text-generation API.
package ollama

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
)

const (
	DefaultURL         = "http://localhost:11434"
	DefaultModel       = "llama2"
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.3
	DefaultNumPredict  = 500

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"

	// maxErrorBody bounds how much of a failed response is kept in the error.
	maxErrorBody = 512
)

// ErrUnavailable is returned when the server cannot be reached or answers
// with a non-success status.
var ErrUnavailable = errors.New("ollama is not available")

// Options are the generation options sent with every request.
type Options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// Config configures a Client.
type Config struct {
	// URL is the server base URL. A trailing /api/generate is tolerated.
	URL     string
	Model   string
	Timeout time.Duration
	Options Options
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to one Ollama server and model.
type Client struct {
	baseURL string
	model   string
	options Options
	http    *http.Client
}

// New builds a client, filling unset config from the defaults.
func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	base = strings.TrimSuffix(base, generatePath)
	if base == "" {
		base = DefaultURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	opts := cfg.Options
	if opts.NumPredict == 0 {
		opts.NumPredict = DefaultNumPredict
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: base, model: model, options: opts, http: httpClient}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the server answers GET /api/tags.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tagsPath, nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a non-streaming completion request and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return out.Response, nil
}
