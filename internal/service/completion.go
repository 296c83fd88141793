package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lyratng/ai-menu/internal/domain"
	"github.com/lyratng/ai-menu/internal/logger"
)

const (
	// transportTimeout bounds a single HTTP attempt. Deliberately looser
	// than the business deadline below.
	transportTimeout = 120 * time.Second

	// completionDeadline is the independent business deadline the whole
	// call (all retries included) races against.
	completionDeadline = 90 * time.Second

	// maxRetries is the number of additional attempts after the first.
	maxRetries = 5

	// retryBackoff is the fixed wait between attempts.
	retryBackoff = 3 * time.Second
)

// Message is one chat message sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage carries the token accounting of one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of one completion call.
type Completion struct {
	Text  string
	Usage Usage
}

// CompletionOptions tunes a single call. A zero Model falls back to the
// client's configured default.
type CompletionOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Completer is the completion-service contract the pipeline consumes.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (*Completion, error)
	Model() string
}

// CompletionConfig holds configuration for the completion client.
type CompletionConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// CompletionService calls an OpenAI-compatible chat completion endpoint
// over a persistent keep-alive transport. Transient transport failures are
// retried with a fixed backoff; provider errors propagate immediately.
type CompletionService struct {
	client      *resty.Client
	endpoint    string
	model       string
	maxTokens   int
	temperature float32
}

// NewCompletionService creates a new completion client.
// Parameters:
//   - cfg: completion configuration including model, key, and endpoint.
//
// Returns:
//   - *CompletionService: initialized client wrapper.
func NewCompletionService(cfg *CompletionConfig) *CompletionService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(transportTimeout)
	client.SetRetryCount(maxRetries)
	client.SetRetryWaitTime(retryBackoff)
	client.SetRetryMaxWaitTime(retryBackoff)
	// Retry only transient transport failures; provider responses of any
	// status propagate without retry.
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil && isTransientTransport(err)
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &CompletionService{
		client:      client,
		endpoint:    baseURL + "/chat/completions",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Model returns the configured default model identifier.
func (s *CompletionService) Model() string {
	return s.model
}

// OpenAI-compatible chat completion request/response structures
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the messages to the completion endpoint and returns the
// generated text with token usage. The whole call, retries included, is
// raced against a 90s deadline independent of the transport timeout.
// Parameters:
//   - ctx: caller context; a tighter deadline is derived internally.
//   - messages: chat messages, system prompt first.
//   - opts: per-call overrides; zero values use configured defaults.
//
// Returns:
//   - *Completion: generated text and usage counts.
//   - error: a domain error kind (timeout, transient, provider).
func (s *CompletionService) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, completionDeadline)
	defer cancel()

	model := opts.Model
	if model == "" {
		model = s.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = s.maxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	req := chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: exceeded %s", domain.ErrCompletionTimeout, completionDeadline)
		}
		if isTransientTransport(err) {
			// Retries are already exhausted at this point.
			return nil, fmt.Errorf("%w: %v", domain.ErrTransientTransport, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionProvider, err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		detail := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			detail = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		logger.CtxError(ctx, "Completion provider returned error: %s", detail)
		return nil, fmt.Errorf("%w: %s", domain.ErrCompletionProvider, detail)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCompletionProvider, resp.Error.Message)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty choices in response", domain.ErrCompletionProvider)
	}

	return &Completion{
		Text:  resp.Choices[0].Message.Content,
		Usage: resp.Usage,
	}, nil
}

// isTransientTransport reports whether err is one of the narrow transport
// failure kinds worth retrying: connection reset, connection aborted, or a
// transport-level timeout.
func isTransientTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
