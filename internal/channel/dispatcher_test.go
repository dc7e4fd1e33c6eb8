package channel

import (
	"context"
	"strings"
	"testing"

	"loglens/internal/analyzer"
	"loglens/internal/config"
	"loglens/internal/llm"
	"loglens/internal/security"
)

type stubProvider struct {
	name   llm.ProviderID
	listed []string
	broken map[string]llm.ErrorKind
}

func (p *stubProvider) Name() llm.ProviderID { return p.name }

func (p *stubProvider) ListModels(context.Context) ([]llm.ModelDescriptor, error) {
	models := make([]llm.ModelDescriptor, 0, len(p.listed))
	for _, id := range p.listed {
		models = append(models, llm.ModelDescriptor{ID: id, Provider: p.name})
	}
	return models, nil
}

func (p *stubProvider) Complete(_ context.Context, model llm.ModelDescriptor, _ string) (string, error) {
	if kind, ok := p.broken[model.ID]; ok {
		return "", &llm.LLMError{Kind: kind, Message: "stubbed failure"}
	}
	return "report from " + model.ID, nil
}

func newDispatcher(providers ...llm.Provider) *Dispatcher {
	defaults := make(map[llm.ProviderID]string)
	for _, p := range providers {
		if sp, ok := p.(*stubProvider); ok && len(sp.listed) > 0 {
			defaults[sp.name] = sp.listed[0]
		}
	}
	reg := llm.NewRegistry(llm.RegistryConfig{DefaultModel: defaults}, providers...)
	san := security.NewSanitizer(config.SecurityConfig{StripHTML: true})
	svc := analyzer.New(config.AnalysisConfig{Instructions: "analyze", MinLogChars: 10}, reg, san, nil)
	return NewDispatcher(svc)
}

func inbound(text string) InboundMessage {
	return InboundMessage{ChannelName: "console", ChatID: "console", Text: text}
}

const stubLog = "1709913600.123456 CXWfwc3LHJYnCZGbt3 192.168.1.100 22 tcp 15 Port_Scanning Medium"

func TestDispatcherAnalyzesPlainText(t *testing.T) {
	d := newDispatcher(&stubProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}})

	reply := d.Handle(context.Background(), inbound(stubLog))
	if !strings.Contains(reply, "report from gemini-2.0-flash-lite") {
		t.Fatalf("expected analysis reply, got %q", reply)
	}
}

func TestDispatcherRejectsShortLog(t *testing.T) {
	d := newDispatcher(&stubProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}})

	reply := d.Handle(context.Background(), inbound("short"))
	if !strings.Contains(reply, "too short") {
		t.Fatalf("expected short-log message, got %q", reply)
	}
}

func TestDispatcherProviderSwitch(t *testing.T) {
	d := newDispatcher(
		&stubProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}},
		&stubProvider{name: llm.ProviderOpenAI, listed: []string{"gpt-4o-mini"}},
	)

	reply := d.Handle(context.Background(), inbound("/provider openai"))
	if !strings.Contains(reply, "openai") {
		t.Fatalf("unexpected reply %q", reply)
	}
	reply = d.Handle(context.Background(), inbound(stubLog))
	if !strings.Contains(reply, "report from gpt-4o-mini") {
		t.Fatalf("expected openai analysis, got %q", reply)
	}
}

func TestDispatcherRejectsUnconfiguredProvider(t *testing.T) {
	d := newDispatcher(&stubProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}})

	reply := d.Handle(context.Background(), inbound("/provider openai"))
	if !strings.Contains(reply, "no API key") {
		t.Fatalf("expected rejection, got %q", reply)
	}
}

func TestDispatcherModelPin(t *testing.T) {
	d := newDispatcher(&stubProvider{
		name:   llm.ProviderGemini,
		listed: []string{"gemini-2.0-flash-lite", "gemini-2.0-flash"},
	})

	d.Handle(context.Background(), inbound("/model gemini-2.0-flash"))
	reply := d.Handle(context.Background(), inbound(stubLog))
	if reply != "report from gemini-2.0-flash" {
		t.Fatalf("pinned model was not used, got %q", reply)
	}
}

func TestDispatcherFallbackFootnote(t *testing.T) {
	d := newDispatcher(&stubProvider{
		name:   llm.ProviderGemini,
		listed: []string{"gemini-2.0-flash-lite", "gemini-2.0-flash"},
		broken: map[string]llm.ErrorKind{"gemini-2.0-flash-lite": llm.ErrorRateLimit},
	})

	reply := d.Handle(context.Background(), inbound(stubLog))
	if !strings.Contains(reply, "report from gemini-2.0-flash") {
		t.Fatalf("expected fallback success, got %q", reply)
	}
	if !strings.Contains(reply, "failed attempts") {
		t.Fatalf("expected fallback footnote, got %q", reply)
	}
}

func TestDispatcherExhaustionShowsTrail(t *testing.T) {
	d := newDispatcher(&stubProvider{
		name:   llm.ProviderGemini,
		listed: []string{"gemini-2.0-flash-lite", "gemini-2.0-flash"},
		broken: map[string]llm.ErrorKind{
			"gemini-2.0-flash-lite": llm.ErrorRateLimit,
			"gemini-2.0-flash":      llm.ErrorModelUnavailable,
		},
	})

	reply := d.Handle(context.Background(), inbound(stubLog))
	if !strings.Contains(reply, "analysis failed") {
		t.Fatalf("expected failure reply, got %q", reply)
	}
	for _, want := range []string{"gemini-2.0-flash-lite: rate_limited", "gemini-2.0-flash: model_unavailable"} {
		if !strings.Contains(reply, want) {
			t.Fatalf("trail missing %q in %q", want, reply)
		}
	}
}

func TestDispatcherCommands(t *testing.T) {
	d := newDispatcher(&stubProvider{name: llm.ProviderGemini, listed: []string{"gemini-2.0-flash-lite"}})
	ctx := context.Background()

	if reply := d.Handle(ctx, inbound("/help")); !strings.Contains(reply, "/models") {
		t.Fatalf("help text incomplete: %q", reply)
	}
	if reply := d.Handle(ctx, inbound("/models")); !strings.Contains(reply, "gemini-2.0-flash-lite") {
		t.Fatalf("model list incomplete: %q", reply)
	}
	if reply := d.Handle(ctx, inbound("/samples")); !strings.Contains(reply, "Port Scan") {
		t.Fatalf("sample list incomplete: %q", reply)
	}
	if reply := d.Handle(ctx, inbound("/sample 1")); !strings.Contains(reply, "report from") {
		t.Fatalf("sample analysis failed: %q", reply)
	}
	if reply := d.Handle(ctx, inbound("/bogus")); !strings.Contains(reply, "unknown command") {
		t.Fatalf("expected unknown-command reply, got %q", reply)
	}
}
