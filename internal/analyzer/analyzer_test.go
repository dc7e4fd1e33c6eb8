package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loglens/internal/config"
	"loglens/internal/eventbus"
	"loglens/internal/llm"
	"loglens/internal/security"
)

// scriptedProvider is a minimal deterministic llm.Provider for tests.
type scriptedProvider struct {
	name     llm.ProviderID
	listed   []string
	failures map[string]llm.ErrorKind
	prompts  []string
}

func (p *scriptedProvider) Name() llm.ProviderID { return p.name }

func (p *scriptedProvider) ListModels(context.Context) ([]llm.ModelDescriptor, error) {
	models := make([]llm.ModelDescriptor, 0, len(p.listed))
	for _, id := range p.listed {
		models = append(models, llm.ModelDescriptor{ID: id, Provider: p.name})
	}
	return models, nil
}

func (p *scriptedProvider) Complete(_ context.Context, model llm.ModelDescriptor, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if kind, ok := p.failures[model.ID]; ok {
		return "", &llm.LLMError{Kind: kind, Message: "scripted failure"}
	}
	return "analysis from " + model.ID, nil
}

func newService(p *scriptedProvider, bus *eventbus.Bus) *Service {
	reg := llm.NewRegistry(llm.RegistryConfig{
		DefaultModel: map[llm.ProviderID]string{p.name: p.listed[0]},
	}, p)
	san := security.NewSanitizer(config.SecurityConfig{StripHTML: true})
	return New(config.AnalysisConfig{Instructions: "inspect this", MinLogChars: 10}, reg, san, bus)
}

const sampleLog = "Mar 15 06:42:12 server sshd[5774]: Failed password for invalid user admin from 192.168.1.100"

func TestAnalyzeRejectsShortLog(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}}
	svc := newService(p, nil)

	_, err := svc.Analyze(context.Background(), llm.ProviderGemini, "", "short")
	if !errors.Is(err, ErrLogTooShort) {
		t.Fatalf("expected ErrLogTooShort, got %v", err)
	}
}

func TestAnalyzeUsesProviderDefault(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite", "gemini-2.0-flash"}}
	svc := newService(p, nil)

	res, err := svc.Analyze(context.Background(), llm.ProviderGemini, "", sampleLog)
	if err != nil {
		t.Fatal(err)
	}
	if res.SucceededModel.ID != "gemini-2.0-flash-lite" {
		t.Fatalf("expected registry default, got %s", res.SucceededModel.ID)
	}
}

func TestAnalyzeHonorsPreferredModel(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderOpenAI, listed: []string{"gpt-4o", "gpt-4o-mini"}}
	svc := newService(p, nil)

	res, err := svc.Analyze(context.Background(), llm.ProviderOpenAI, "gpt-4o-mini", sampleLog)
	if err != nil {
		t.Fatal(err)
	}
	if res.SucceededModel.ID != "gpt-4o-mini" {
		t.Fatalf("user choice should win, got %s", res.SucceededModel.ID)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("expected single attempt, got %d", len(res.Attempts))
	}
}

func TestPromptEmbedsVerbatimLog(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}}
	svc := newService(p, nil)

	if _, err := svc.Analyze(context.Background(), llm.ProviderGemini, "", sampleLog); err != nil {
		t.Fatal(err)
	}
	if len(p.prompts) != 1 {
		t.Fatalf("expected one completion call, got %d", len(p.prompts))
	}
	if !strings.Contains(p.prompts[0], sampleLog) {
		t.Fatal("prompt must embed the log verbatim")
	}
	if !strings.Contains(p.prompts[0], "inspect this") {
		t.Fatal("prompt must embed the configured instructions")
	}
}

func TestCustomInstructionsOverrideConfigured(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}}
	svc := newService(p, nil)

	if _, err := svc.AnalyzeWithInstructions(context.Background(), llm.ProviderGemini, "", sampleLog, "focus on lateral movement"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.prompts[0], "focus on lateral movement") {
		t.Fatal("custom instructions were not used")
	}
	if strings.Contains(p.prompts[0], "inspect this") {
		t.Fatal("configured instructions should have been replaced")
	}
}

func TestHTMLStrippedBeforePrompting(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}}
	svc := newService(p, nil)

	if _, err := svc.Analyze(context.Background(), llm.ProviderGemini, "", "<b>"+sampleLog+"</b>"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(p.prompts[0], "<b>") {
		t.Fatal("HTML tags should be stripped before the log leaves the process")
	}
}

func TestAttemptEventsPublished(t *testing.T) {
	p := &scriptedProvider{
		name:     llm.ProviderGemini,
		listed:   []string{"gemini-2.0-flash-lite", "gemini-2.0-flash"},
		failures: map[string]llm.ErrorKind{"gemini-2.0-flash-lite": llm.ErrorRateLimit},
	}
	bus := eventbus.New()
	svc := newService(p, bus)

	var attempts int
	bus.Subscribe(eventbus.TopicModelAttempt, func(eventbus.Event) { attempts++ })

	res, err := svc.Analyze(context.Background(), llm.ProviderGemini, "", sampleLog)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Succeeded() {
		t.Fatalf("expected fallback success, got %v", res.Err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempt events, got %d", attempts)
	}
}

func TestModelsAndRefresh(t *testing.T) {
	p := &scriptedProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite", "gemini-2.0-flash"}}
	svc := newService(p, nil)

	models := svc.Models(context.Background(), llm.ProviderGemini)
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	svc.RefreshModels(llm.ProviderGemini)
	if got := svc.Models(context.Background(), llm.ProviderGemini); len(got) != 2 {
		t.Fatalf("expected re-discovery to work, got %d", len(got))
	}
}
