package verify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Provider names for OpenAI-compatible judge services.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

// ProviderDefaults describes the endpoint and model used when none is configured.
type ProviderDefaults struct {
	BaseURL string
	Model   string
}

var providers = map[string]ProviderDefaults{
	ProviderOpenAI: {BaseURL: "https://api.openai.com/v1", Model: "gpt-4.1-mini"},
	ProviderGroq:   {BaseURL: "https://api.groq.com/openai/v1", Model: "llama3-8b-8192"},
}

// DefaultsFor returns the defaults for a provider name.
func DefaultsFor(provider string) (ProviderDefaults, error) {
	d, ok := providers[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return ProviderDefaults{}, fmt.Errorf("unsupported provider %q", provider)
	}
	return d, nil
}

// OpenAIConfig configures an OpenAI-compatible chat completions client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIClient implements ChatClient over the chat completions API.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient builds a client. Retries are left to the caller.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = providers[ProviderOpenAI].BaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(0),
	)
	return &OpenAIClient{client: client}, nil
}

// Complete implements ChatClient.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		case "user":
			messages = append(messages, openai.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
		Seed:        openai.Int(0),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}
