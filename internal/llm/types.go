package llm

import "fmt"

// ProviderID identifies an LLM vendor.
type ProviderID string

const (
	ProviderGemini ProviderID = "gemini"
	ProviderOpenAI ProviderID = "openai"
)

// ParseProviderID validates a provider name from user input.
func ParseProviderID(s string) (ProviderID, error) {
	switch ProviderID(s) {
	case ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unknown provider: %q", s)
	}
}

// ModelDescriptor identifies a single model offered by a provider.
// Identity is (Provider, ID). Descriptors are never mutated after creation.
type ModelDescriptor struct {
	ID        string     `json:"id"`
	Provider  ProviderID `json:"provider"`
	IsDefault bool       `json:"is_default"`
}

// AnalysisRequest is one user-initiated analysis. Built once, immutable.
type AnalysisRequest struct {
	Provider       ProviderID
	PreferredModel ModelDescriptor
	Prompt         string
}

// AnalysisAttempt records one model invocation and its outcome.
// Err is nil on success, in which case Text holds the model's response.
type AnalysisAttempt struct {
	Model ModelDescriptor `json:"model"`
	Text  string          `json:"-"`
	Err   *LLMError       `json:"error,omitempty"`
}

// Succeeded reports whether this attempt produced a usable response.
func (a AnalysisAttempt) Succeeded() bool {
	return a.Err == nil
}

// AnalysisResult is the terminal artifact of one analysis request.
// Either SucceededModel+Text are set, or Err explains why every
// candidate failed. Attempts is the full trail, in invocation order.
type AnalysisResult struct {
	SucceededModel *ModelDescriptor  `json:"succeeded_model,omitempty"`
	Text           string            `json:"text,omitempty"`
	Attempts       []AnalysisAttempt `json:"attempts"`
	Err            *LLMError         `json:"error,omitempty"`
}

// Succeeded reports whether any candidate model produced a response.
func (r *AnalysisResult) Succeeded() bool {
	return r.SucceededModel != nil
}
