// Command dais resolves anonymous speaker labels in a diarized hearing
// transcript to real identities using roster evidence and an LLM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/openhearings/dais/internal/config"
	"github.com/openhearings/dais/internal/observe"
	"github.com/openhearings/dais/internal/pipeline"
	"github.com/openhearings/dais/internal/resolve"
	"github.com/openhearings/dais/pkg/provider/llm"
	"github.com/openhearings/dais/pkg/provider/llm/anyllm"
	"github.com/openhearings/dais/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	transcriptPath := flag.String("transcript", "", "diarized transcript file to resolve (required)")
	witnessesPath := flag.String("witnesses", "", "witness roster file (overrides config)")
	witnessesFormat := flag.String("witnesses-format", "", "witness roster form, jsonl or json (overrides config)")
	committeePath := flag.String("committee", "", "committee membership file keyed by committee code (overrides config)")
	committeeID := flag.String("committee-id", "", "committee code, e.g. HSAG (overrides config)")
	outPath := flag.String("out", "", "mapping artifact output path (overrides config)")
	maxLines := flag.Int("max-lines", 0, "transcript head window in lines (overrides config)")
	maxExamples := flag.Int("max-examples", -1, "examples retained per speaker label (overrides config)")
	model := flag.String("model", "", "model identifier (overrides config)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dais: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// ── Flag overrides ────────────────────────────────────────────────────────
	if *witnessesPath != "" {
		cfg.Rosters.WitnessesPath = *witnessesPath
	}
	if *witnessesFormat != "" {
		cfg.Rosters.WitnessesFormat = config.WitnessFormat(*witnessesFormat)
	}
	if *committeePath != "" {
		cfg.Rosters.CommitteePath = *committeePath
	}
	if *committeeID != "" {
		cfg.Rosters.CommitteeID = *committeeID
	}
	if *outPath != "" {
		cfg.Output.MappingPath = *outPath
	}
	if *maxLines > 0 {
		cfg.Resolver.MaxLines = *maxLines
	}
	if *maxExamples >= 0 {
		cfg.Resolver.MaxExamples = *maxExamples
	}
	if *model != "" {
		cfg.Resolver.Model = *model
	}

	if *transcriptPath == "" {
		fmt.Fprintln(os.Stderr, "dais: -transcript is required")
		flag.Usage()
		return 2
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "dais"})
	if err != nil {
		slog.Error("failed to initialise metrics provider", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		srv := observe.NewServer(addr)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("metrics server shutdown error", "err", err)
			}
		}()
	}

	// ── Provider and pipeline ─────────────────────────────────────────────────
	provider, err := buildProvider(cfg)
	if err != nil {
		slog.Error("failed to build inference provider", "err", err)
		return 1
	}

	resolver, err := resolve.New(provider,
		resolve.WithReasoningEffort(cfg.Resolver.ReasoningEffort),
	)
	if err != nil {
		slog.Error("failed to create resolver", "err", err)
		return 1
	}

	pipe, err := pipeline.New(resolver)
	if err != nil {
		slog.Error("failed to create pipeline", "err", err)
		return 1
	}

	slog.Info("resolution run starting",
		"transcript", *transcriptPath,
		"provider", cfg.Resolver.Provider,
		"model", cfg.Resolver.Model,
		"max_lines", cfg.Resolver.MaxLines,
	)

	result, err := pipe.Run(ctx, pipeline.Request{
		TranscriptPath:  *transcriptPath,
		MaxLines:        cfg.Resolver.MaxLines,
		MaxExamples:     cfg.Resolver.MaxExamples,
		SnippetLength:   cfg.Resolver.SnippetLength,
		WitnessesPath:   cfg.Rosters.WitnessesPath,
		WitnessesFormat: string(cfg.Rosters.WitnessesFormat),
		CommitteePath:   cfg.Rosters.CommitteePath,
		CommitteeID:     cfg.Rosters.CommitteeID,
	})
	if err != nil {
		slog.Error("resolution run failed", "err", err)
		return 1
	}

	if err := resolve.WriteMapping(cfg.Output.MappingPath, result.Mapping); err != nil {
		slog.Error("failed to write mapping artifact", "err", err)
		return 1
	}

	fmt.Printf("resolved %d of %d labels — mapping written to %s\n",
		result.Mapping.Resolved(), result.Summary.Len(), cfg.Output.MappingPath)
	return 0
}

// loadConfig reads the config file, falling back to built-in defaults when
// the default config file does not exist and no -config flag was given.
// An explicitly requested file must exist.
func loadConfig(path string) (*config.Config, error) {
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// buildProvider constructs the inference backend named by the config. The
// openai type gets the dedicated backend with reasoning-effort support;
// everything else goes through any-llm. A missing OpenAI credential is a
// startup error, surfaced here before any transcript work happens.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	entry := cfg.Provider(cfg.Resolver.Provider)
	model := cfg.Resolver.Model

	switch entry.Type {
	case "openai":
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("no OpenAI API key: set providers.openai.api_key or OPENAI_API_KEY")
		}
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(apiKey, model, opts...)
	default:
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(entry.Type, model, opts...)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
