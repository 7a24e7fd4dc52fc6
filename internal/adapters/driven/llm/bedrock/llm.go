// Package bedrock provides an LLM service adapter for Anthropic Claude models
// served through AWS Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel     = "anthropic.claude-3-sonnet-20240229-v1:0"
	DefaultMaxTokens = 700

	// bedrockVersion is the Messages API version Bedrock expects in the body.
	bedrockVersion = "bedrock-2023-05-31"
)

// InvokeAPI is the subset of the Bedrock runtime client the service calls.
type InvokeAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Config holds configuration for the Bedrock LLM service.
type Config struct {
	// Region is the AWS region hosting the model. Empty uses the config chain.
	Region string

	// Model is the Bedrock model id (default: anthropic.claude-3-sonnet-20240229-v1:0).
	Model string
}

// LLMService provides LLM operations using Bedrock InvokeModel.
type LLMService struct {
	client InvokeAPI
	model  string
}

// invokeRequest is the Claude Messages body accepted by InvokeModel.
type invokeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []invokeMessage `json:"messages"`
	Temperature      float64         `json:"temperature"`
	TopP             float64         `json:"top_p,omitempty"`
	StopSeqs         []string        `json:"stop_sequences,omitempty"`
}

type invokeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// invokeResponse is the Claude Messages response body.
type invokeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewLLMService creates a Bedrock LLM service from the default AWS config chain.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("bedrock: loading aws config: %w", err)
	}

	return NewLLMServiceWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg.Model), nil
}

// NewLLMServiceWithClient wraps an existing runtime client.
func NewLLMServiceWithClient(client InvokeAPI, model string) *LLMService {
	if model == "" {
		model = DefaultModel
	}
	return &LLMService{client: client, model: model}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []driven.ChatMessage{
		{Role: driven.RoleUser, Content: prompt},
	}
	chatOpts := driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
	}
	return s.invoke(ctx, "", messages, chatOpts, opts.StopWords)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var systemParts []string
	var chatMessages []driven.ChatMessage

	for _, msg := range messages {
		if msg.Role == driven.RoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			chatMessages = append(chatMessages, msg)
		}
	}

	return s.invoke(ctx, strings.Join(systemParts, "\n\n"), chatMessages, opts, nil)
}

func (s *LLMService) invoke(
	ctx context.Context,
	systemPrompt string,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
	stopWords []string,
) (string, error) {
	apiMessages := make([]invokeMessage, len(messages))
	for i, msg := range messages {
		apiMessages[i] = invokeMessage{Role: msg.Role, Content: msg.Content}
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	body, err := json.Marshal(invokeRequest{
		AnthropicVersion: bedrockVersion,
		MaxTokens:        maxTokens,
		System:           systemPrompt,
		Messages:         apiMessages,
		Temperature:      opts.Temperature,
		TopP:             opts.TopP,
		StopSeqs:         stopWords,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	out, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: invoke model: %w", err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("bedrock: no response content returned")
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return result.String(), nil
}

// ModelName returns the Bedrock model id.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates credentials and model access with a one-token invocation.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("bedrock: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
