package config

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	LLM      LLMConfig      `json:"llm"`
	Analysis AnalysisConfig `json:"analysis"`
	Security SecurityConfig `json:"security"`
	Channels ChannelsConfig `json:"channels"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LLMConfig holds the per-provider settings. Default models and static
// fallback lists live here, not in code, so tests and deployments can
// swap them without rebuilding.
type LLMConfig struct {
	Gemini      ProviderSettings `json:"gemini"`
	OpenAI      ProviderSettings `json:"openai"`
	TimeoutSecs int              `json:"timeout_secs"`
}

type ProviderSettings struct {
	APIKey         string   `json:"api_key,omitempty"`
	BaseURL        string   `json:"base_url,omitempty"`
	DefaultModel   string   `json:"default_model"`
	FallbackModels []string `json:"fallback_models"`
}

// AnalysisConfig controls prompt construction.
type AnalysisConfig struct {
	Instructions string `json:"instructions"`
	MinLogChars  int    `json:"min_log_chars"`
}

type SecurityConfig struct {
	StripHTML    bool            `json:"strip_html"`
	PIIFiltering PIIFilterConfig `json:"pii_filtering"`
}

type PIIFilterConfig struct {
	Enabled      bool `json:"enabled"`
	FilterEmails bool `json:"filter_emails"`
	FilterPhones bool `json:"filter_phones"`
	FilterCards  bool `json:"filter_cards"`
	FilterIPs    bool `json:"filter_ips"`
	FilterSSN    bool `json:"filter_ssn"`
}

type ChannelsConfig struct {
	Console  bool            `json:"console"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

type TelegramConfig struct {
	Token      string  `json:"token"`
	AllowedIDs []int64 `json:"allowed_ids,omitempty"`
}
