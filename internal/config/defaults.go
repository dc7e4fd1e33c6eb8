package config

// Defaults returns a Config with sensible default values. The static
// fallback model lists are the known-good ids used when discovery
// against the vendor fails.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8001,
		},
		LLM: LLMConfig{
			Gemini: ProviderSettings{
				DefaultModel: "gemini-2.0-flash-lite",
				FallbackModels: []string{
					"gemini-2.0-flash-lite",
					"gemini-2.0-flash",
					"gemini-1.5-flash",
					"gemini-1.5-flash-8b",
				},
			},
			OpenAI: ProviderSettings{
				DefaultModel: "gpt-4o-mini",
				FallbackModels: []string{
					"gpt-4o-mini",
					"gpt-4o",
					"gpt-4-turbo",
				},
			},
			TimeoutSecs: 120,
		},
		Analysis: AnalysisConfig{
			Instructions: "Analyze this network log to identify attack patterns, severity, and provide recommended mitigations. Include a detailed explanation of what's happening in the log.",
			MinLogChars:  10,
		},
		Security: SecurityConfig{
			StripHTML: true,
			PIIFiltering: PIIFilterConfig{
				Enabled:      true,
				FilterEmails: true,
				FilterPhones: true,
				FilterCards:  true,
				FilterIPs:    false, // network logs legitimately carry IPs
				FilterSSN:    true,
			},
		},
		Channels: ChannelsConfig{
			Console: false,
		},
	}
}
