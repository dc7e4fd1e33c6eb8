// Package analyzer exposes the log analysis entry point: it cleans the
// pasted log, builds the prompt and hands the request to the fallback
// orchestrator.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"loglens/internal/config"
	"loglens/internal/eventbus"
	"loglens/internal/llm"
	"loglens/internal/security"
)

// ErrLogTooShort is returned when the pasted log is empty or trivially small.
var ErrLogTooShort = fmt.Errorf("log data is too short or empty")

// Service orchestrates one analysis request end to end.
type Service struct {
	cfg       config.AnalysisConfig
	registry  *llm.Registry
	orch      *llm.Orchestrator
	sanitizer *security.Sanitizer
	bus       *eventbus.Bus
}

// New creates the analysis service. bus may be nil when no shell wants
// lifecycle events.
func New(cfg config.AnalysisConfig, registry *llm.Registry, sanitizer *security.Sanitizer, bus *eventbus.Bus) *Service {
	orch := llm.NewOrchestrator(registry)
	if bus != nil {
		orch.OnAttempt = func(a llm.AnalysisAttempt) {
			bus.Publish(eventbus.TopicModelAttempt, a)
		}
	}
	return &Service{
		cfg:       cfg,
		registry:  registry,
		orch:      orch,
		sanitizer: sanitizer,
		bus:       bus,
	}
}

// Analyze runs one analysis with the default instructions.
func (s *Service) Analyze(ctx context.Context, provider llm.ProviderID, preferredModelID, logText string) (*llm.AnalysisResult, error) {
	return s.AnalyzeWithInstructions(ctx, provider, preferredModelID, logText, "")
}

// AnalyzeWithInstructions runs one analysis with custom instructions
// replacing the configured ones. An empty preferredModelID selects the
// provider's default; an id absent from the registry is still honored
// as the first attempt.
func (s *Service) AnalyzeWithInstructions(ctx context.Context, provider llm.ProviderID, preferredModelID, logText, instructions string) (*llm.AnalysisResult, error) {
	if len(strings.TrimSpace(logText)) < s.minLogChars() {
		return nil, ErrLogTooShort
	}

	preferred, err := s.resolvePreferred(ctx, provider, preferredModelID)
	if err != nil {
		return nil, err
	}

	if instructions == "" {
		instructions = s.cfg.Instructions
	}
	cleaned := s.cleanLog(logText)

	req := llm.AnalysisRequest{
		Provider:       provider,
		PreferredModel: preferred,
		Prompt:         BuildPrompt(cleaned, instructions),
	}

	s.publish(eventbus.TopicAnalysisRequest, req)
	log.Printf("[analyzer] analyzing %d chars with %s (preferred model %s)", len(logText), provider, preferred.ID)

	result, err := s.orch.Run(ctx, req)
	if err != nil {
		s.publish(eventbus.TopicError, err)
		return nil, err
	}

	if result.Succeeded() && s.sanitizer != nil {
		result.Text = s.sanitizer.Restore(result.Text)
	}
	s.publish(eventbus.TopicAnalysisResult, result)
	return result, nil
}

// Models returns the registry's candidate ordering for a provider.
func (s *Service) Models(ctx context.Context, provider llm.ProviderID) []llm.ModelDescriptor {
	return s.registry.Models(ctx, provider)
}

// Providers lists the configured providers.
func (s *Service) Providers() []llm.ProviderID {
	return s.registry.Providers()
}

// RefreshModels drops the cached model ordering for a provider.
func (s *Service) RefreshModels(provider llm.ProviderID) {
	s.registry.Invalidate(provider)
}

func (s *Service) resolvePreferred(ctx context.Context, provider llm.ProviderID, modelID string) (llm.ModelDescriptor, error) {
	if modelID != "" {
		return llm.ModelDescriptor{ID: modelID, Provider: provider}, nil
	}
	def, ok := s.registry.Default(ctx, provider)
	if !ok {
		return llm.ModelDescriptor{}, fmt.Errorf("no models available for provider %s", provider)
	}
	return def, nil
}

func (s *Service) cleanLog(logText string) string {
	if s.sanitizer == nil {
		return logText
	}
	return s.sanitizer.CleanLog(logText)
}

func (s *Service) minLogChars() int {
	if s.cfg.MinLogChars > 0 {
		return s.cfg.MinLogChars
	}
	return 10
}

func (s *Service) publish(topic eventbus.Topic, payload any) {
	if s.bus != nil {
		s.bus.Publish(topic, payload)
	}
}
