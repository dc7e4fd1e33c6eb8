package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"loglens/internal/analyzer"
	"loglens/internal/channel"
	"loglens/internal/config"
	"loglens/internal/eventbus"
	"loglens/internal/llm"
	"loglens/internal/security"
	"loglens/internal/server"
)

const (
	keyringPlaceholder      = "[keyring]"
	secretNameGeminiKey     = "gemini_api_key"
	secretNameOpenAIKey     = "openai_api_key"
	secretNameTelegramToken = "telegram_token"
)

func main() {
	console := flag.Bool("console", false, "enable the interactive console channel")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, err := config.NewLoader()
	if err != nil {
		log.Fatalf("config loader: %v", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		log.Printf("failed to load config: %v, using defaults", err)
		cfg = config.Defaults()
	}
	if *console {
		cfg.Channels.Console = true
	}

	ks, err := security.NewKeyStore(nil)
	if err != nil {
		log.Printf("warning: failed to create key store: %v (secrets will stay in config file)", err)
		ks = nil
	}
	resolveSecrets(cfg, loader, ks)

	registry, err := llm.NewRegistryFromConfig(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("llm: %v", err)
	}
	defer closeProviders(registry)

	bus := eventbus.New()
	sanitizer := security.NewSanitizer(cfg.Security)
	svc := analyzer.New(cfg.Analysis, registry, sanitizer, bus)

	bus.Subscribe(eventbus.TopicError, func(e eventbus.Event) {
		log.Printf("[error] %v", e.Payload)
	})

	chanMgr := channel.NewManager()
	dispatcher := channel.NewDispatcher(svc)
	if cfg.Channels.Console {
		chanMgr.Register(channel.NewConsoleChannel())
	}
	if cfg.Channels.Telegram != nil && cfg.Channels.Telegram.Token != "" {
		chanMgr.Register(channel.NewTelegramChannel(channel.TelegramConfig{
			Token:      cfg.Channels.Telegram.Token,
			AllowedIDs: cfg.Channels.Telegram.AllowedIDs,
		}))
	}
	for name := range chanMgr.List() {
		if ch, ok := chanMgr.Get(name); ok {
			dispatcher.Attach(ctx, ch)
		}
	}
	if err := chanMgr.StartAll(ctx); err != nil {
		log.Fatalf("channels: %v", err)
	}
	defer chanMgr.StopAll(context.Background())

	srv := server.New(cfg.Server, svc)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Println("shut down cleanly")
}

// resolveSecrets fills provider credentials in priority order:
// environment, OS keyring, config file. Plaintext keys found in the
// config file are migrated to the keyring and replaced on disk with a
// placeholder so config.json never retains real keys.
func resolveSecrets(cfg *config.Config, loader *config.Loader, ks *security.KeyStore) {
	if key := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
		cfg.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAI.APIKey = key
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		if cfg.Channels.Telegram == nil {
			cfg.Channels.Telegram = &config.TelegramConfig{}
		}
		cfg.Channels.Telegram.Token = token
	}

	if ks == nil {
		return
	}

	migrated := false
	migrated = resolveSecret(&cfg.LLM.Gemini.APIKey, secretNameGeminiKey, ks) || migrated
	migrated = resolveSecret(&cfg.LLM.OpenAI.APIKey, secretNameOpenAIKey, ks) || migrated
	if cfg.Channels.Telegram != nil {
		migrated = resolveSecret(&cfg.Channels.Telegram.Token, secretNameTelegramToken, ks) || migrated
	}

	if cfg.LLM.Gemini.APIKey != "" {
		log.Printf("[main] gemini key: %s", security.MaskKey(cfg.LLM.Gemini.APIKey))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		log.Printf("[main] openai key: %s", security.MaskKey(cfg.LLM.OpenAI.APIKey))
	}

	if migrated {
		if err := saveWithPlaceholders(cfg, loader); err != nil {
			log.Printf("warning: failed to save config after secret migration: %v", err)
		}
	}
}

// resolveSecret swaps a placeholder for the keyring value, or migrates a
// plaintext value into the keyring. Reports whether a migration happened.
func resolveSecret(value *string, name string, ks *security.KeyStore) bool {
	switch *value {
	case "":
		return false
	case keyringPlaceholder:
		val, err := ks.Get(name)
		if err != nil {
			log.Printf("warning: failed to read %s from keyring: %v", name, err)
			*value = ""
			return false
		}
		*value = val
		return false
	default:
		if err := ks.Set(name, *value); err != nil {
			return false
		}
		log.Printf("migrated %s to secure storage", name)
		return true
	}
}

// saveWithPlaceholders writes the config to disk with secrets replaced
// by the keyring placeholder. The in-memory config keeps real values.
func saveWithPlaceholders(cfg *config.Config, loader *config.Loader) error {
	onDisk := *cfg
	if onDisk.LLM.Gemini.APIKey != "" {
		onDisk.LLM.Gemini.APIKey = keyringPlaceholder
	}
	if onDisk.LLM.OpenAI.APIKey != "" {
		onDisk.LLM.OpenAI.APIKey = keyringPlaceholder
	}
	if onDisk.Channels.Telegram != nil && onDisk.Channels.Telegram.Token != "" {
		tg := *onDisk.Channels.Telegram
		tg.Token = keyringPlaceholder
		onDisk.Channels.Telegram = &tg
	}
	return loader.Save(&onDisk)
}

func closeProviders(registry *llm.Registry) {
	if p, ok := registry.Provider(llm.ProviderGemini); ok {
		if g, ok := p.(*llm.GeminiProvider); ok {
			if err := g.Close(); err != nil {
				log.Printf("warning: closing gemini client: %v", err)
			}
		}
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
