package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"loglens/internal/analyzer"
	"loglens/internal/llm"
)

// Dispatcher routes inbound messages: slash commands adjust per-chat
// settings, anything else is treated as log data and analyzed.
type Dispatcher struct {
	svc *analyzer.Service

	mu       sync.Mutex
	sessions map[string]*session
}

// session holds a chat's provider and model preference.
type session struct {
	provider llm.ProviderID
	modelID  string
}

// NewDispatcher creates a dispatcher over the analysis service.
func NewDispatcher(svc *analyzer.Service) *Dispatcher {
	return &Dispatcher{
		svc:      svc,
		sessions: make(map[string]*session),
	}
}

// Attach subscribes the dispatcher to a channel's inbound messages and
// sends replies back through the same channel.
func (d *Dispatcher) Attach(ctx context.Context, ch Channel) {
	ch.OnMessage(func(msg InboundMessage) {
		reply := d.Handle(ctx, msg)
		if reply == "" {
			return
		}
		if err := ch.Send(ctx, OutboundMessage{ChatID: msg.ChatID, Text: reply}); err != nil {
			log.Printf("[dispatcher] send via %s failed: %v", ch.Name(), err)
		}
	})
}

// Handle processes one inbound message and returns the reply text.
func (d *Dispatcher) Handle(ctx context.Context, msg InboundMessage) string {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "/") {
		return d.handleCommand(ctx, msg.ChatID, text)
	}
	return d.analyze(ctx, msg.ChatID, text)
}

func (d *Dispatcher) handleCommand(ctx context.Context, chatID, text string) string {
	fields := strings.Fields(text)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help", "/start":
		return helpText
	case "/providers":
		return d.listProviders(chatID)
	case "/provider":
		if len(args) == 0 {
			return "usage: /provider <gemini|openai>"
		}
		return d.setProvider(chatID, args[0])
	case "/models":
		return d.listModels(ctx, chatID)
	case "/model":
		if len(args) == 0 {
			return "usage: /model <model-id>"
		}
		return d.setModel(chatID, args[0])
	case "/samples":
		return d.listSamples()
	case "/sample":
		if len(args) == 0 {
			return "usage: /sample <number>"
		}
		return d.analyzeSample(ctx, chatID, args[0])
	case "/refresh":
		s := d.session(chatID)
		d.svc.RefreshModels(s.provider)
		return fmt.Sprintf("model list for %s will be re-discovered", s.provider)
	default:
		return fmt.Sprintf("unknown command %s, try /help", cmd)
	}
}

func (d *Dispatcher) analyze(ctx context.Context, chatID, logText string) string {
	s := d.session(chatID)
	res, err := d.svc.Analyze(ctx, s.provider, s.modelID, logText)
	if err != nil {
		if errors.Is(err, analyzer.ErrLogTooShort) {
			return "that log is too short to analyze, paste at least a few lines"
		}
		return "analysis failed: " + err.Error()
	}
	return formatResult(res)
}

func (d *Dispatcher) analyzeSample(ctx context.Context, chatID, arg string) string {
	samples := analyzer.Samples()
	for i, s := range samples {
		if arg == fmt.Sprint(i+1) || strings.EqualFold(arg, s.Name) {
			return d.analyze(ctx, chatID, s.Log)
		}
	}
	return "unknown sample, see /samples"
}

func (d *Dispatcher) listProviders(chatID string) string {
	s := d.session(chatID)
	var b strings.Builder
	b.WriteString("configured providers:\n")
	for _, p := range d.svc.Providers() {
		marker := "  "
		if p == s.provider {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s%s\n", marker, p)
	}
	return b.String()
}

func (d *Dispatcher) setProvider(chatID, name string) string {
	id, err := llm.ParseProviderID(strings.ToLower(name))
	if err != nil {
		return err.Error()
	}
	var known bool
	for _, p := range d.svc.Providers() {
		if p == id {
			known = true
		}
	}
	if !known {
		return fmt.Sprintf("provider %s has no API key configured", id)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[chatID] = &session{provider: id}
	return fmt.Sprintf("switched to %s (default model)", id)
}

func (d *Dispatcher) listModels(ctx context.Context, chatID string) string {
	s := d.session(chatID)
	models := d.svc.Models(ctx, s.provider)
	if len(models) == 0 {
		return fmt.Sprintf("no models available for %s", s.provider)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "models for %s (fallback order):\n", s.provider)
	for _, m := range models {
		marker := "  "
		if m.ID == s.modelID || (s.modelID == "" && m.IsDefault) {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s%s (%s)\n", marker, m.ID, llm.Meta(m.ID).Name)
	}
	return b.String()
}

func (d *Dispatcher) setModel(chatID, modelID string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.sessionLocked(chatID)
	s.modelID = modelID
	return fmt.Sprintf("preferred model set to %s, falling back to the rest of the list if it fails", modelID)
}

func (d *Dispatcher) listSamples() string {
	var b strings.Builder
	b.WriteString("sample logs (/sample <number> to analyze):\n")
	for i, s := range analyzer.Samples() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
	}
	return b.String()
}

func (d *Dispatcher) session(chatID string) *session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessionLocked(chatID)
}

func (d *Dispatcher) sessionLocked(chatID string) *session {
	if s, ok := d.sessions[chatID]; ok {
		return s
	}
	s := &session{provider: d.defaultProvider()}
	d.sessions[chatID] = s
	return s
}

func (d *Dispatcher) defaultProvider() llm.ProviderID {
	providers := d.svc.Providers()
	for _, p := range providers {
		if p == llm.ProviderGemini {
			return p
		}
	}
	if len(providers) > 0 {
		return providers[0]
	}
	return llm.ProviderGemini
}

func formatResult(res *llm.AnalysisResult) string {
	if res.Succeeded() {
		text := res.Text
		if len(res.Attempts) > 1 {
			text += fmt.Sprintf("\n\n_(answered by %s after %d failed attempts)_",
				res.SucceededModel.ID, len(res.Attempts)-1)
		}
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "analysis failed: %s\n", res.Err.Message)
	b.WriteString("attempts:\n")
	for _, a := range res.Attempts {
		fmt.Fprintf(&b, "  %s: %s\n", a.Model.ID, a.Err.Kind)
	}
	return b.String()
}

const helpText = `LogLens analyzes network attack logs with an LLM.

Paste log data to analyze it, or:
/providers      list configured providers
/provider <p>   switch provider (gemini, openai)
/models         list models in fallback order
/model <id>     pin a preferred model
/samples        list built-in sample logs
/sample <n>     analyze a sample log
/refresh        re-discover the model list`
