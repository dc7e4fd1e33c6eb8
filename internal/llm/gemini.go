package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiProvider implements Provider using the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() ProviderID { return ProviderGemini }

// ListModels queries the vendor's model listing and keeps only models
// that support generateContent. Ids are returned without the "models/"
// resource prefix so they match what users select.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	var models []ModelDescriptor
	iter := p.client.ListModels(ctx)
	for {
		info, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &LLMError{Kind: ErrorDiscovery, Message: err.Error(), Err: err}
		}
		if !supportsGeneration(info) {
			continue
		}
		id := strings.TrimPrefix(info.Name, "models/")
		models = append(models, ModelDescriptor{ID: id, Provider: ProviderGemini})
	}
	return models, nil
}

// Complete sends one generateContent request. No internal retries.
func (p *GeminiProvider) Complete(ctx context.Context, model ModelDescriptor, prompt string) (string, error) {
	gm := p.client.GenerativeModel(model.ID)
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &LLMError{Kind: ErrorProvider, Message: "empty response from " + model.ID}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", &LLMError{Kind: ErrorProvider, Message: "no text parts in response from " + model.ID}
	}
	return sb.String(), nil
}

// Close releases the underlying gRPC connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func supportsGeneration(info *genai.ModelInfo) bool {
	for _, method := range info.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}

func classifyGeminiError(err error) *LLMError {
	msg := err.Error()
	lower := strings.ToLower(msg)
	llmErr := &LLMError{Err: err, Message: msg}

	switch {
	case strings.Contains(lower, "api key not valid") || strings.Contains(lower, "api_key_invalid") ||
		strings.Contains(lower, "unauthenticated") || strings.Contains(lower, "permission"):
		llmErr.Kind = ErrorAuth
	case strings.Contains(lower, "429") || strings.Contains(lower, "quota") ||
		strings.Contains(lower, "resource has been exhausted") || strings.Contains(lower, "rate"):
		llmErr.Kind = ErrorRateLimit
	case strings.Contains(lower, "404") || strings.Contains(lower, "not found") ||
		strings.Contains(lower, "is not supported") || strings.Contains(lower, "deprecated"):
		llmErr.Kind = ErrorModelUnavailable
	default:
		llmErr.Kind = ErrorProvider
	}
	return llmErr
}
