package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
)

// Config holds Ollama connection settings
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration // applies to non-streaming calls only
}

// Client talks to an Ollama server's /api/chat endpoint
type Client struct {
	baseURL     string
	model       string
	temperature float64
	timeout     time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

// NewClient creates a new Ollama client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ollama base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("ollama model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		// No client-wide timeout: streamed responses are bounded by the caller's context
		httpClient: &http.Client{},
		// Local model server; just smooth out bursts
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  observability.Component("ollama"),
	}, nil
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  chatOptions      `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message domain.Message `json:"message"`
	Done    bool           `json:"done"`
	Error   string         `json:"error,omitempty"`
}

// Complete returns the full assistant reply for messages
func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrCompletionService, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrCompletionService, out.Error)
	}

	return out.Message.Content, nil
}

// Stream yields reply fragments as the model produces them.
// Any error is yielded once as the final value.
func (c *Client) Stream(ctx context.Context, messages []domain.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := c.post(ctx, messages, true)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chunk chatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				yield("", fmt.Errorf("%w: decode stream chunk: %v", domain.ErrCompletionService, err))
				return
			}
			if chunk.Error != "" {
				yield("", fmt.Errorf("%w: %s", domain.ErrCompletionService, chunk.Error))
				return
			}
			if chunk.Message.Content != "" {
				if !yield(chunk.Message.Content, nil) {
					return
				}
			}
			if chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("%w: read stream: %v", domain.ErrCompletionService, err))
			return
		}

		// Body ended without a done marker
		yield("", fmt.Errorf("%w: stream ended unexpectedly", domain.ErrCompletionService))
	}
}

func (c *Client) post(ctx context.Context, messages []domain.Message, stream bool) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionService, err)
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   stream,
		Options:  chatOptions{Temperature: c.temperature},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrCompletionService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrCompletionService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg := readError(resp.Body)
		c.logger.Error().Int("status", resp.StatusCode).Str("error", msg).Msg("request rejected")
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrCompletionService, resp.StatusCode, msg)
	}

	c.logger.Debug().
		Str("model", c.model).
		Bool("stream", stream).
		Int("messages", len(messages)).
		Dur("latency", time.Since(start)).
		Msg("response started")

	return resp, nil
}

func readError(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
