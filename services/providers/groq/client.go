package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/studyhub/studyhub-backend/config"
	"github.com/studyhub/studyhub-backend/services/providers"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 60 * time.Second

	// maxRetries bounds retries on rate limit errors
	maxRetries = 3

	baseBackoff = 2 * time.Second
	maxBackoff  = 32 * time.Second

	// jsonParseMaxRetries bounds re-asks when the model returns invalid JSON
	jsonParseMaxRetries = 1
)

var (
	// ErrAPIKeyNotSet is returned when no Groq API key is configured
	ErrAPIKeyNotSet = errors.New("Groq API key not set")

	// ErrMaxRetriesExceeded is returned when rate limit retries are exhausted
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Client calls Groq's OpenAI-compatible chat completions API
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new Groq client from configuration
func NewClient(cfg config.GroqConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// ModelName returns the configured model name
func (c *Client) ModelName() string {
	return c.model
}

// Complete generates a completion for the request. Rate limit errors are
// retried with exponential backoff; invalid JSON responses are re-asked
// once when a JSON response format was requested.
func (c *Client) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	var jsonParseRetries int
	for {
		resp, err := c.completeWithRetry(ctx, model, req)
		if err != nil {
			return providers.CompletionResponse{}, err
		}

		if req.ResponseFormat == "json" && !isValidJSON(resp.Content) {
			jsonParseRetries++
			if jsonParseRetries > jsonParseMaxRetries {
				return providers.CompletionResponse{}, fmt.Errorf("JSON parse failed after %d retries", jsonParseMaxRetries)
			}
			continue
		}

		return resp, nil
	}
}

func (c *Client) completeWithRetry(ctx context.Context, model string, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(math.Pow(2, float64(attempt-1))) * baseBackoff
			if backoffDuration > maxBackoff {
				backoffDuration = maxBackoff
			}

			c.logger.Warn("rate limited by provider, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoffDuration))

			select {
			case <-ctx.Done():
				return providers.CompletionResponse{}, ctx.Err()
			case <-time.After(backoffDuration):
			}
		}

		messages := []openai.ChatCompletionMessageParamUnion{}
		if req.System != "" {
			messages = append(messages, openai.SystemMessage(req.System))
		}
		messages = append(messages, openai.UserMessage(req.Prompt))

		params := openai.ChatCompletionNewParams{
			Model:       shared.ChatModel(model),
			Messages:    messages,
			Temperature: openai.Float(req.Temperature),
		}

		if req.MaxTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.MaxTokens))
		}

		if req.ResponseFormat == "json" {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{
					Type: "json_object",
				},
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err

			if isRateLimitError(err) {
				continue
			}

			return providers.CompletionResponse{}, fmt.Errorf("Groq API call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return providers.CompletionResponse{}, fmt.Errorf("no completion choices returned")
		}

		return providers.CompletionResponse{
			Content:    completion.Choices[0].Message.Content,
			TokensUsed: int(completion.Usage.TotalTokens),
			Model:      string(completion.Model),
		}, nil
	}

	return providers.CompletionResponse{}, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}

func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

var _ providers.Completer = (*Client)(nil)
