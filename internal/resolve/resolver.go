package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/openhearings/dais/internal/roster"
	"github.com/openhearings/dais/internal/transcript"
	llm "github.com/openhearings/dais/pkg/provider/llm"
)

// systemPrompt frames every resolution request.
const systemPrompt = "You are a precise mapping assistant for congressional hearings."

const (
	defaultTemperature     = 0.0
	defaultReasoningEffort = llm.ReasoningEffortMedium
)

// Option is a functional option for configuring a [Resolver].
type Option func(*Resolver)

// WithTemperature sets the sampling temperature. The default of 0 requests
// the most deterministic decoding the provider supports. Providers that
// apply a reasoning effort may ignore the temperature entirely.
func WithTemperature(temp float64) Option {
	return func(r *Resolver) {
		r.temperature = temp
	}
}

// WithReasoningEffort sets the reasoning effort forwarded to the provider.
// Default: medium. The empty value disables the knob.
func WithReasoningEffort(effort llm.ReasoningEffort) Option {
	return func(r *Resolver) {
		r.effort = effort
	}
}

// WithLogger sets the logger used to report degraded outcomes. Default:
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver issues the single inference call that maps speaker labels to
// identities. It is safe for concurrent use.
//
// Model selection follows the one-provider-per-model pattern: construct the
// [llm.Provider] with the desired model rather than overriding per request.
type Resolver struct {
	llm         llm.Provider
	logger      *slog.Logger
	temperature float64
	effort      llm.ReasoningEffort
}

// New returns a Resolver backed by the given provider.
func New(provider llm.Provider, opts ...Option) (*Resolver, error) {
	if provider == nil {
		return nil, errors.New("resolve: provider must not be nil")
	}
	r := &Resolver{
		llm:         provider,
		logger:      slog.Default(),
		temperature: defaultTemperature,
		effort:      defaultReasoningEffort,
	}
	for _, o := range opts {
		o(r)
	}
	if !r.effort.IsValid() {
		return nil, errors.New("resolve: invalid reasoning effort " + string(r.effort))
	}
	return r, nil
}

// Resolve maps the observed speaker labels to known identities. It never
// returns an error: a failed call, an unparseable response, or a response
// without a mapping object all yield an empty Mapping, with the reason
// logged. Context cancellation takes the same path once the call returns.
//
// An empty roster does not short-circuit the call; the model can still use
// self-identification and role cues present in the transcript head.
func (r *Resolver) Resolve(ctx context.Context, known []roster.Record, observed *transcript.Summary, headLines []string) Mapping {
	prompt, err := BuildMappingPrompt(known, observed, strings.Join(headLines, "\n"))
	if err != nil {
		r.logger.Warn("prompt construction failed, returning empty mapping", "error", err)
		return Mapping{}
	}

	req := llm.CompletionRequest{
		SystemPrompt:    systemPrompt,
		Temperature:     r.temperature,
		ReasoningEffort: r.effort,
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	}

	r.warnOnOversizedPrompt(req)

	resp, err := r.llm.Complete(ctx, req)
	if err != nil {
		r.logger.Warn("inference call failed, returning empty mapping", "error", err)
		return Mapping{}
	}
	var content string
	if resp != nil {
		content = resp.Content
	}

	mapping, err := ParseMapping(content)
	if err != nil {
		r.logger.Warn("inference response rejected, returning empty mapping", "error", err)
		return Mapping{}
	}
	return mapping
}

// warnOnOversizedPrompt flags prompts that approach the model's context
// window. The call still proceeds: the provider is the authority on what
// actually fits, and a refused call falls back to the empty mapping anyway.
func (r *Resolver) warnOnOversizedPrompt(req llm.CompletionRequest) {
	caps := r.llm.Capabilities()
	if caps.ContextWindow <= 0 {
		return
	}
	msgs := append([]llm.Message{{Role: "system", Content: req.SystemPrompt}}, req.Messages...)
	tokens, err := r.llm.CountTokens(msgs)
	if err != nil {
		return
	}
	if tokens > caps.ContextWindow {
		r.logger.Warn("prompt exceeds model context window",
			"prompt_tokens", tokens,
			"context_window", caps.ContextWindow)
	}
}
