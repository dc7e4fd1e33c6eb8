package llm

import (
	"context"
	"fmt"
	"log"
)

// Orchestrator walks a request's candidate models in order until one
// succeeds or the sequence is exhausted. Attempts are strictly
// sequential; there is no parallelism and no per-model retry.
type Orchestrator struct {
	registry *Registry

	// OnAttempt, when set, observes each attempt as it is recorded.
	// Used by the shell for live diagnostics.
	OnAttempt func(AnalysisAttempt)
}

// NewOrchestrator creates an orchestrator over the registry.
func NewOrchestrator(registry *Registry) *Orchestrator {
	return &Orchestrator{registry: registry}
}

// Run executes one analysis request. The preferred model is always
// attempt #1 — user intent overrides the registry's ordering even when
// the id was never discovered — and the registry's list supplies the
// fallback tail. On success the walk short-circuits; an auth failure
// aborts the whole sequence, since further attempts against the same
// provider cannot succeed. The returned error is non-nil only for
// requests that cannot be attempted at all (unknown provider, no
// candidates).
func (o *Orchestrator) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	provider, ok := o.registry.Provider(req.Provider)
	if !ok {
		return nil, fmt.Errorf("provider %s is not configured", req.Provider)
	}

	candidates := buildCandidates(req.PreferredModel, o.registry.Models(ctx, req.Provider))
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate models for provider %s", req.Provider)
	}

	result := &AnalysisResult{}
	for i, model := range candidates {
		text, err := provider.Complete(ctx, model, req.Prompt)
		if err == nil {
			attempt := AnalysisAttempt{Model: model, Text: text}
			result.Attempts = append(result.Attempts, attempt)
			result.SucceededModel = &candidates[i]
			result.Text = text
			o.observe(attempt)
			if i > 0 {
				log.Printf("[orchestrator] fallback model %s succeeded after %d failed attempts", model.ID, i)
			}
			return result, nil
		}

		llmErr := AsLLMError(err)
		attempt := AnalysisAttempt{Model: model, Err: llmErr}
		result.Attempts = append(result.Attempts, attempt)
		o.observe(attempt)

		if llmErr.Kind == ErrorAuth {
			log.Printf("[orchestrator] auth failure on %s, aborting candidate sequence for %s", model.ID, req.Provider)
			result.Err = llmErr
			return result, nil
		}
		log.Printf("[orchestrator] model %s failed (%s), trying next candidate", model.ID, llmErr.Kind)
	}

	result.Err = &LLMError{
		Kind:    ErrorExhausted,
		Message: fmt.Sprintf("all %d candidate models failed for %s", len(result.Attempts), req.Provider),
	}
	return result, nil
}

func (o *Orchestrator) observe(a AnalysisAttempt) {
	if o.OnAttempt != nil {
		o.OnAttempt(a)
	}
}

// buildCandidates puts the preferred model first and appends the
// registry ordering minus the preferred id. No model id appears twice.
func buildCandidates(preferred ModelDescriptor, registryOrder []ModelDescriptor) []ModelDescriptor {
	candidates := make([]ModelDescriptor, 0, len(registryOrder)+1)
	seen := make(map[string]bool, len(registryOrder)+1)

	if preferred.ID != "" {
		candidates = append(candidates, preferred)
		seen[preferred.ID] = true
	}
	for _, m := range registryOrder {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		candidates = append(candidates, m)
	}
	return candidates
}
