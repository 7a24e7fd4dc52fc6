// Package ollama answers prompts with a local Ollama model.
package ollama

import (
	"context"
	"time"

	"github.com/custodia-labs/briefly/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the local model. Zero values take the defaults above.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// KeepAlive controls how long Ollama keeps the model loaded after a
	// request, e.g. "10m". Empty leaves the server default.
	KeepAlive string

	Retry *httpapi.RetryPolicy
}

// LLMService talks to the non-streaming /api/generate and /api/chat endpoints.
type LLMService struct {
	api       *httpapi.Client
	model     string
	keepAlive string
}

type sampling struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Model     string   `json:"model"`
	Prompt    string   `json:"prompt"`
	Stream    bool     `json:"stream"`
	KeepAlive string   `json:"keep_alive,omitempty"`
	Options   sampling `json:"options"`
}

type chatRequest struct {
	Model     string   `json:"model"`
	Messages  []turn   `json:"messages"`
	Stream    bool     `json:"stream"`
	KeepAlive string   `json:"keep_alive,omitempty"`
	Options   sampling `json:"options"`
}

// NewLLMService never fails: Ollama needs no credentials, so reachability is
// left to Ping.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	var opts []httpapi.Option
	if cfg.Retry != nil {
		opts = append(opts, httpapi.WithRetry(*cfg.Retry))
	}
	return &LLMService{
		api:       httpapi.New("ollama", cfg.BaseURL, cfg.Timeout, opts...),
		model:     cfg.Model,
		keepAlive: cfg.KeepAlive,
	}
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Model:     s.model,
		Prompt:    prompt,
		KeepAlive: s.keepAlive,
		Options: sampling{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
			Stop:        opts.StopWords,
		},
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := s.api.PostJSON(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// Chat passes system turns through as-is; Ollama applies them in place.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	turns := make([]turn, len(messages))
	for i, m := range messages {
		turns[i] = turn{Role: m.Role, Content: m.Content}
	}

	req := chatRequest{
		Model:     s.model,
		Messages:  turns,
		KeepAlive: s.keepAlive,
		Options: sampling{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
		},
	}

	var resp struct {
		Message turn `json:"message"`
	}
	if err := s.api.PostJSON(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models, which runs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags")
}

func (s *LLMService) Close() error {
	return nil
}
