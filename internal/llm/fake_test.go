package llm

import (
	"context"
	"fmt"
)

// fakeProvider is a deterministic scripted provider for tests.
type fakeProvider struct {
	name ProviderID

	listed    []string
	listErr   error
	listCalls int

	// completions maps model id to a scripted outcome. A nil entry
	// means success with canned text.
	completions map[string]*LLMError
	invoked     []string
}

func newFakeProvider(name ProviderID, listed ...string) *fakeProvider {
	return &fakeProvider{
		name:        name,
		listed:      listed,
		completions: make(map[string]*LLMError),
	}
}

func (f *fakeProvider) failWith(modelID string, kind ErrorKind) *fakeProvider {
	f.completions[modelID] = &LLMError{Kind: kind, Message: string(f.name) + " scripted failure for " + modelID}
	return f
}

func (f *fakeProvider) Name() ProviderID { return f.name }

func (f *fakeProvider) ListModels(_ context.Context) ([]ModelDescriptor, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	models := make([]ModelDescriptor, 0, len(f.listed))
	for _, id := range f.listed {
		models = append(models, ModelDescriptor{ID: id, Provider: f.name})
	}
	return models, nil
}

func (f *fakeProvider) Complete(_ context.Context, model ModelDescriptor, _ string) (string, error) {
	f.invoked = append(f.invoked, model.ID)
	if scripted, ok := f.completions[model.ID]; ok && scripted != nil {
		return "", scripted
	}
	return fmt.Sprintf("analysis from %s", model.ID), nil
}
