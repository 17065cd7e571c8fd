package model

import "time"

// Config is the full application configuration tree.
// Populated from defaults, then ~/.greenaudit/config.yaml, then GREENAUDIT_*
// environment variables, then CLI flags (highest priority).
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Satellite SatelliteConfig `yaml:"satellite" mapstructure:"satellite"`
	FactCheck FactCheckConfig `yaml:"factcheck" mapstructure:"factcheck"`
	Workflow  WorkflowConfig  `yaml:"workflow" mapstructure:"workflow"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
}

// HTTPConfig configures the API server and outbound HTTP behavior.
type HTTPConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// LLMConfig configures the OpenAI-compatible endpoint used for claim
// extraction and fact-check verdicts.
type LLMConfig struct {
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	Model     string        `yaml:"model" mapstructure:"model"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SatelliteConfig configures the imagery statistics collaborator.
type SatelliteConfig struct {
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url"`
	Token            string        `yaml:"token" mapstructure:"token"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	ComparisonWindow time.Duration `yaml:"comparison_window" mapstructure:"comparison_window"`
	RequestsPerSec   float64       `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Simulate         bool          `yaml:"simulate" mapstructure:"simulate"`
}

// FactCheckConfig configures the web fact-check collaborator.
type FactCheckConfig struct {
	SearchBaseURL  string        `yaml:"search_base_url" mapstructure:"search_base_url"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSec float64       `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxSnippets    int           `yaml:"max_snippets" mapstructure:"max_snippets"`
}

// WorkflowConfig tunes the per-report orchestration.
type WorkflowConfig struct {
	// ClaimWorkers bounds parallel per-claim verification; 1 means sequential.
	ClaimWorkers int `yaml:"claim_workers" mapstructure:"claim_workers"`

	// NullIslandIsMissing routes claims located at exactly (0,0) to the
	// textual fact-check path. Extractors use (0,0) for "location unknown",
	// so this defaults to true; disable it for datasets with legitimate
	// gulf-of-guinea coordinates.
	NullIslandIsMissing bool `yaml:"null_island_is_missing" mapstructure:"null_island_is_missing"`
}

// CacheConfig configures the layered response cache for collaborator calls.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8080",
			UserAgent:      "GreenAudit/0.2 (+https://github.com/greenaudit/greenaudit)",
			Timeout:        30 * time.Second,
			MaxUploadBytes: 20 << 20, // 20 MiB
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			Timeout:   60 * time.Second,
			MaxTokens: 2000,
		},
		Satellite: SatelliteConfig{
			Timeout:          30 * time.Second,
			ComparisonWindow: 365 * 24 * time.Hour,
			RequestsPerSec:   2,
			Simulate:         true,
		},
		FactCheck: FactCheckConfig{
			SearchBaseURL:  "https://html.duckduckgo.com/html/",
			Timeout:        30 * time.Second,
			RequestsPerSec: 1,
			MaxSnippets:    8,
		},
		Workflow: WorkflowConfig{
			ClaimWorkers:        4,
			NullIslandIsMissing: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // resolved to ~/.greenaudit/cache at startup
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   24 * time.Hour,
		},
	}
}
