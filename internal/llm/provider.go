// Package llm provides the provider adapters, model registry and fallback
// orchestration behind the log analysis service.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Provider is the interface both vendor backends implement.
type Provider interface {
	// Name returns the provider identity.
	Name() ProviderID

	// ListModels queries the vendor's model-listing endpoint and returns
	// the models capable of text completion, in the vendor's order.
	// A failed or empty listing is a recoverable state: the registry
	// substitutes its static fallback list.
	ListModels(ctx context.Context) ([]ModelDescriptor, error)

	// Complete sends the prompt to the named model and returns the raw
	// text response. Failures are classified into an *LLMError. One
	// network call per invocation; retry policy belongs to the
	// orchestrator, not the adapter.
	Complete(ctx context.Context, model ModelDescriptor, prompt string) (string, error)
}

// ErrorKind classifies a provider failure for the orchestrator's
// abort-vs-continue decision.
type ErrorKind int

const (
	// ErrorProvider is the catch-all: malformed response, timeout, 5xx.
	// Recovered by advancing to the next candidate model.
	ErrorProvider ErrorKind = iota
	// ErrorModelUnavailable means the model id is unknown or deprecated.
	ErrorModelUnavailable
	// ErrorRateLimit means the vendor is throttling us.
	ErrorRateLimit
	// ErrorAuth means the credential was rejected. Authentication is
	// provider-wide, so this aborts the whole candidate sequence.
	ErrorAuth
	// ErrorDiscovery means listing models failed. Never surfaced as a
	// hard failure; the registry falls back to its static list.
	ErrorDiscovery
	// ErrorExhausted is the terminal state after every candidate failed.
	ErrorExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorModelUnavailable:
		return "model_unavailable"
	case ErrorRateLimit:
		return "rate_limited"
	case ErrorAuth:
		return "auth_failed"
	case ErrorDiscovery:
		return "discovery_failed"
	case ErrorExhausted:
		return "all_models_exhausted"
	default:
		return "provider_error"
	}
}

// LLMError wraps a vendor error with its classification.
type LLMError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *LLMError) Error() string {
	if e.Message != "" {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String()
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// AsLLMError extracts the classification from err, wrapping anything
// unclassified as a provider error so the caller never sees a raw
// vendor failure.
func AsLLMError(err error) *LLMError {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}
	return &LLMError{Kind: ErrorProvider, Message: err.Error(), Err: err}
}

// MarshalJSON renders the kind as its string form for API consumers.
func (e *LLMError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		Message string `json:"message,omitempty"`
	}{Kind: e.Kind.String(), Message: e.Message})
}
