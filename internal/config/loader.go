package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [Load] when the config file leaves a setting unset.
const (
	DefaultProvider      = "openai"
	DefaultModel         = "gpt-5"
	DefaultMaxLines      = 150
	DefaultMaxExamples   = 3
	DefaultSnippetLength = 400
	DefaultMappingPath   = "speaker_mapping.json"
)

// ValidProviderTypes lists the backend names the binaries know how to
// construct. Used by [Validate] to warn about likely typos without rejecting
// third-party backends.
var ValidProviderTypes = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek",
	"mistral", "groq", "llamacpp", "llamafile",
}

// Default returns a configuration with all defaults applied, for runs that
// operate from flags alone without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Unknown fields are rejected so that misspelled keys
// fail loudly instead of silently doing nothing.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields with the documented defaults. The YAML
// zero value of resolver.max_examples selects the default; a per-run flag
// can still pass an explicit 0 to the pipeline to disable examples.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogInfo
	}
	if cfg.Resolver.Provider == "" {
		cfg.Resolver.Provider = DefaultProvider
	}
	if cfg.Resolver.Model == "" {
		cfg.Resolver.Model = DefaultModel
	}
	if cfg.Resolver.MaxLines == 0 {
		cfg.Resolver.MaxLines = DefaultMaxLines
	}
	if cfg.Resolver.MaxExamples == 0 {
		cfg.Resolver.MaxExamples = DefaultMaxExamples
	}
	if cfg.Resolver.SnippetLength == 0 {
		cfg.Resolver.SnippetLength = DefaultSnippetLength
	}
	if cfg.Rosters.WitnessesFormat == "" {
		cfg.Rosters.WitnessesFormat = WitnessFormatJSONL
	}
	for name, entry := range cfg.Providers {
		if entry.Type == "" {
			entry.Type = name
			cfg.Providers[name] = entry
		}
	}
	if cfg.Output.MappingPath == "" {
		cfg.Output.MappingPath = DefaultMappingPath
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if !cfg.Resolver.ReasoningEffort.IsValid() {
		errs = append(errs, fmt.Errorf("resolver.reasoning_effort %q is invalid; valid values: minimal, low, medium, high, or empty", cfg.Resolver.ReasoningEffort))
	}
	if cfg.Resolver.MaxLines < 0 {
		errs = append(errs, fmt.Errorf("resolver.max_lines %d must be positive", cfg.Resolver.MaxLines))
	}
	if cfg.Resolver.MaxExamples < 0 {
		errs = append(errs, fmt.Errorf("resolver.max_examples %d must not be negative", cfg.Resolver.MaxExamples))
	}
	if cfg.Resolver.SnippetLength < 0 {
		errs = append(errs, fmt.Errorf("resolver.snippet_length %d must be positive", cfg.Resolver.SnippetLength))
	}
	if !cfg.Rosters.WitnessesFormat.IsValid() {
		errs = append(errs, fmt.Errorf("rosters.witnesses_format %q is invalid; valid values: jsonl, json", cfg.Rosters.WitnessesFormat))
	}

	if cfg.Rosters.CommitteePath != "" && cfg.Rosters.CommitteeID == "" {
		slog.Warn("rosters.committee_path is set without rosters.committee_id; the committee source will be skipped")
	}

	// Provider type validation — warn only, so third-party or self-hosted
	// backends configured by type name still load.
	entry := cfg.Provider(cfg.Resolver.Provider)
	if entry.Type != "" && !slices.Contains(ValidProviderTypes, entry.Type) {
		slog.Warn("unknown provider type — may be a typo or third-party backend",
			"provider", cfg.Resolver.Provider,
			"type", entry.Type,
			"known", ValidProviderTypes,
		)
	}

	return errors.Join(errs...)
}
