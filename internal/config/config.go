// Package config provides the configuration schema and loader for the dais
// binaries.
package config

import "github.com/openhearings/dais/pkg/provider/llm"

// LogLevel controls log verbosity for the dais binaries.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// WitnessFormat selects the witness roster file form.
type WitnessFormat string

const (
	// WitnessFormatJSONL is one JSON object per line, the form witness
	// scrapers emit.
	WitnessFormatJSONL WitnessFormat = "jsonl"

	// WitnessFormatJSON is a single flat JSON array.
	WitnessFormatJSON WitnessFormat = "json"
)

// IsValid reports whether f is a recognised witness roster form.
func (f WitnessFormat) IsValid() bool {
	return f == WitnessFormatJSONL || f == WitnessFormatJSON
}

// Config is the root configuration structure for dais.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	Resolver      ResolverConfig           `yaml:"resolver"`
	Providers     map[string]ProviderEntry `yaml:"providers"`
	Rosters       RostersConfig            `yaml:"rosters"`
	Observability ObservabilityConfig      `yaml:"observability"`
	Output        OutputConfig             `yaml:"output"`
}

// ResolverConfig holds the inference settings and evidence limits for
// resolution runs.
type ResolverConfig struct {
	// Provider selects the entry in [Config.Providers] used for inference.
	Provider string `yaml:"provider"`

	// Model is the model identifier passed to the provider.
	Model string `yaml:"model"`

	// ReasoningEffort is forwarded to backends that support it. One of
	// "", "minimal", "low", "medium", "high".
	ReasoningEffort llm.ReasoningEffort `yaml:"reasoning_effort"`

	// MaxLines bounds the transcript head window.
	MaxLines int `yaml:"max_lines"`

	// MaxExamples caps retained examples per speaker label. The YAML zero
	// value selects the default of 3; a per-run flag can still set 0 to
	// disable examples.
	MaxExamples int `yaml:"max_examples"`

	// SnippetLength bounds example text in characters.
	SnippetLength int `yaml:"snippet_length"`
}

// ProviderEntry configures one inference backend.
type ProviderEntry struct {
	// Type is the backend implementation (e.g. "openai", "anthropic",
	// "gemini", "ollama"). Defaults to the entry's key in
	// [Config.Providers].
	Type string `yaml:"type"`

	// APIKey authenticates against the backend. Empty falls back to the
	// backend's environment variable (OPENAI_API_KEY and friends).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default API endpoint.
	// Leave empty to use the backend's built-in default.
	BaseURL string `yaml:"base_url"`
}

// RostersConfig names the identity sources consulted during resolution.
type RostersConfig struct {
	// WitnessesPath is the witness roster file. Empty skips the source.
	WitnessesPath string `yaml:"witnesses_path"`

	// WitnessesFormat is the witness file form.
	WitnessesFormat WitnessFormat `yaml:"witnesses_format"`

	// CommitteePath is the committee membership dump, an object keyed by
	// committee code. Empty skips the source.
	CommitteePath string `yaml:"committee_path"`

	// CommitteeID selects the committee within CommitteePath, e.g. "HSAG".
	CommitteeID string `yaml:"committee_id"`
}

// ObservabilityConfig holds metrics settings.
type ObservabilityConfig struct {
	// MetricsAddr is the listen address for the /metrics endpoint
	// (e.g. ":9464"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// OutputConfig holds artifact settings.
type OutputConfig struct {
	// MappingPath is where resolution runs write the mapping artifact.
	MappingPath string `yaml:"mapping_path"`
}

// Provider returns the entry named by name, falling back to an implicit
// entry whose type is the name itself. A bare `resolver.provider: openai`
// therefore works without a providers block; the backend resolves its
// credentials from the environment.
func (c *Config) Provider(name string) ProviderEntry {
	if e, ok := c.Providers[name]; ok {
		return e
	}
	return ProviderEntry{Type: name}
}
