package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAISystemPrompt = "You are a cybersecurity expert analyzing network logs."

// OpenAIProvider implements Provider using the OpenAI API.
// Also works with compatible endpoints via BaseURL.
type OpenAIProvider struct {
	client openai.Client
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIProvider{client: openai.NewClient(opts...)}
}

func (p *OpenAIProvider) Name() ProviderID { return ProviderOpenAI }

// ListModels queries the /models endpoint and keeps only chat-capable
// models, in the order the vendor returns them.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	var models []ModelDescriptor
	iter := p.client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		m := iter.Current()
		if !isOpenAIChatModel(m.ID) {
			continue
		}
		models = append(models, ModelDescriptor{ID: m.ID, Provider: ProviderOpenAI})
	}
	if err := iter.Err(); err != nil {
		return nil, &LLMError{Kind: ErrorDiscovery, Message: err.Error(), Err: err}
	}
	return models, nil
}

// Complete sends one chat completion request. No internal retries.
func (p *OpenAIProvider) Complete(ctx context.Context, model ModelDescriptor, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model.ID,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAISystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &LLMError{Kind: ErrorProvider, Message: "empty completion from " + model.ID}
	}
	return resp.Choices[0].Message.Content, nil
}

// isOpenAIChatModel filters the listing down to text-completion models,
// excluding embedding, audio, image and moderation ids.
func isOpenAIChatModel(id string) bool {
	lower := strings.ToLower(id)
	for _, skip := range []string{
		"embedding", "whisper", "tts", "dall-e", "moderation",
		"audio", "realtime", "transcribe", "image", "davinci", "babbage",
	} {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	return strings.HasPrefix(lower, "gpt-") ||
		strings.HasPrefix(lower, "chatgpt-") ||
		strings.HasPrefix(lower, "o1") ||
		strings.HasPrefix(lower, "o3") ||
		strings.HasPrefix(lower, "o4")
}

func classifyOpenAIError(err error) *LLMError {
	msg := err.Error()
	lower := strings.ToLower(msg)
	llmErr := &LLMError{Err: err, Message: msg}

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "403") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "incorrect api key"):
		llmErr.Kind = ErrorAuth
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "quota"):
		llmErr.Kind = ErrorRateLimit
	case strings.Contains(lower, "404") || strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "deprecated") || strings.Contains(lower, "model_not_found"):
		llmErr.Kind = ErrorModelUnavailable
	default:
		llmErr.Kind = ErrorProvider
	}
	return llmErr
}
