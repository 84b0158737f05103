// Package pipeline wires the resolution stages end to end: transcript head
// reading and parsing, per-label summarization, parallel roster loading and
// merging, and the inference call that produces the final label mapping.
//
// The orchestrator owns every file path and limit for a run but performs no
// transformation of its own; each stage lives in its own package and the
// pipeline only sequences them. Roster sources degrade: a missing or
// unreadable source becomes an empty list with a warning, never an error.
// Only a missing transcript aborts a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openhearings/dais/internal/observe"
	"github.com/openhearings/dais/internal/resolve"
	"github.com/openhearings/dais/internal/roster"
	"github.com/openhearings/dais/internal/transcript"
)

// Witness roster file formats accepted by [Request.WitnessesFormat].
const (
	// FormatJSONL is the line-delimited typed-record form, one JSON object
	// per line. The default.
	FormatJSONL = "jsonl"

	// FormatJSON is the flat form, a single JSON array of objects.
	FormatJSON = "json"
)

// Request describes one resolution run: where the inputs live and how much
// of them to use. Defaults are the caller's concern (config and flags fill
// them in); the pipeline validates rather than guesses.
type Request struct {
	// TranscriptPath is the diarized transcript to resolve. Required.
	TranscriptPath string

	// MaxLines bounds the transcript head window. Must be positive.
	MaxLines int

	// MaxExamples caps retained examples per label. Zero keeps counts only.
	MaxExamples int

	// SnippetLength bounds example text in runes. Values below 1 fall back
	// to the summarizer's default.
	SnippetLength int

	// WitnessesPath is the witness roster file. Empty skips the source.
	WitnessesPath string

	// WitnessesFormat selects the witness file form, FormatJSONL (default
	// when empty) or FormatJSON.
	WitnessesFormat string

	// CommitteePath is the committee roster file keyed by committee code.
	// Empty skips the source.
	CommitteePath string

	// CommitteeID selects the committee within CommitteePath, e.g. "HSAG".
	CommitteeID string
}

// Result carries everything a run produced, for callers that write
// artifacts, rewrite transcripts, or report beyond the mapping itself.
type Result struct {
	// Mapping is the resolved label mapping. Never nil; empty when the
	// inference step failed or resolved nothing.
	Mapping resolve.Mapping

	// Summary is the per-label evidence handed to the resolver.
	Summary *transcript.Summary

	// Utterances is the parsed head window.
	Utterances []transcript.Utterance

	// Skipped lists head-window lines that produced no utterance.
	Skipped []transcript.SkippedLine

	// Roster is the merged known-identity list handed to the resolver.
	Roster []roster.Record

	// HeadLines is the raw head window as read from disk.
	HeadLines []string

	// Duration is the end-to-end run time.
	Duration time.Duration
}

// Pipeline sequences one resolution run at a time. Safe for concurrent use:
// all per-run state lives in [Request] and [Result].
type Pipeline struct {
	resolver *resolve.Resolver
	logger   *slog.Logger
	metrics  *observe.Metrics
}

// Option is a functional option for [New].
type Option func(*Pipeline)

// WithLogger sets the logger for stage and degradation messages. Defaults
// to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a Pipeline around the given resolver.
func New(resolver *resolve.Resolver, opts ...Option) (*Pipeline, error) {
	if resolver == nil {
		return nil, errors.New("pipeline: resolver must not be nil")
	}
	p := &Pipeline{
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p, nil
}

// Run executes one resolution run. The transcript is required and a fatal
// error when unreadable; roster sources degrade to empty lists with warning
// logs. The returned Result always carries a non-nil mapping.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.TranscriptPath == "" {
		return nil, errors.New("pipeline: transcript path must not be empty")
	}
	format := req.WitnessesFormat
	if format == "" {
		format = FormatJSONL
	}
	if format != FormatJSONL && format != FormatJSON {
		return nil, fmt.Errorf("pipeline: unknown witness roster format %q", req.WitnessesFormat)
	}

	// --- Stage 1: transcript head ---
	head, err := transcript.ReadHead(req.TranscriptPath, req.MaxLines)
	if err != nil {
		return nil, err
	}
	utterances, skipped := transcript.ParseUtterances(head)

	p.metrics.Utterances.Add(ctx, int64(len(utterances)))
	skipsByReason := make(map[transcript.SkipReason]int)
	for _, s := range skipped {
		skipsByReason[s.Reason]++
	}
	for reason, n := range skipsByReason {
		p.metrics.RecordSkippedLines(ctx, string(reason), n)
	}
	p.logger.Info("parsed transcript head",
		"path", req.TranscriptPath,
		"lines", len(head),
		"utterances", len(utterances),
		"skipped", len(skipped))

	// --- Stages 2+3: summarize while the roster sources load ---
	var (
		witnesses []roster.Record
		members   []roster.Record
	)
	var g errgroup.Group
	if req.WitnessesPath != "" {
		g.Go(func() error {
			witnesses = p.loadWitnesses(ctx, req.WitnessesPath, format)
			return nil
		})
	}
	if req.CommitteePath != "" {
		g.Go(func() error {
			members = p.loadCommittee(ctx, req.CommitteePath, req.CommitteeID)
			return nil
		})
	}

	summary := transcript.Summarize(utterances, req.MaxExamples, req.SnippetLength)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := roster.Merge(witnesses, members)
	p.logger.Info("merged roster",
		"witnesses", len(witnesses),
		"committee", len(members),
		"merged", len(merged))
	if len(merged) == 0 {
		p.logger.Warn("no roster evidence available, resolving from transcript cues only")
	}

	// --- Stage 4: inference ---
	resolveStart := time.Now()
	mapping := p.resolver.Resolve(ctx, merged, summary, head)
	resolveDuration := time.Since(resolveStart)

	status := "ok"
	if len(mapping) == 0 {
		status = "empty"
	}
	p.metrics.RecordResolverRequest(ctx, status, resolveDuration)

	resolved := mapping.Resolved()
	p.metrics.RecordResolverLabels(ctx, true, resolved)
	if unresolved := summary.Len() - resolved; unresolved > 0 {
		p.metrics.RecordResolverLabels(ctx, false, unresolved)
	}

	duration := time.Since(start)
	p.metrics.PipelineDuration.Record(ctx, duration.Seconds())
	p.logger.Info("resolution run complete",
		"labels", summary.Len(),
		"resolved", resolved,
		"duration", duration)

	return &Result{
		Mapping:    mapping,
		Summary:    summary,
		Utterances: utterances,
		Skipped:    skipped,
		Roster:     merged,
		HeadLines:  head,
		Duration:   duration,
	}, nil
}

// loadWitnesses reads the witness roster in the requested format, degrading
// any file error to an empty source.
func (p *Pipeline) loadWitnesses(ctx context.Context, path, format string) []roster.Record {
	var (
		records []roster.Record
		stats   roster.LoadStats
		err     error
	)
	switch format {
	case FormatJSON:
		records, stats, err = roster.LoadFlat(path)
	default:
		records, stats, err = roster.LoadLines(path)
	}
	if err != nil {
		p.logger.Warn("witness roster unavailable", "path", path, "error", err)
		return nil
	}
	p.recordLoad(ctx, "witnesses", path, stats)
	return records
}

// loadCommittee reads one committee's membership, degrading any file error
// to an empty source.
func (p *Pipeline) loadCommittee(ctx context.Context, path, committeeID string) []roster.Record {
	if committeeID == "" {
		p.logger.Warn("committee roster path set without a committee code, skipping", "path", path)
		return nil
	}
	records, stats, err := roster.LoadCommittee(path, committeeID)
	if err != nil {
		p.logger.Warn("committee roster unavailable",
			"path", path,
			"committee", committeeID,
			"error", err)
		return nil
	}
	if stats.Entries == 0 {
		p.logger.Warn("no members found for committee",
			"path", path,
			"committee", committeeID)
	}
	p.recordLoad(ctx, "committee", path, stats)
	return records
}

// recordLoad logs and meters one completed source load.
func (p *Pipeline) recordLoad(ctx context.Context, source, path string, stats roster.LoadStats) {
	p.metrics.RecordRosterRecords(ctx, source, stats.Loaded)
	for reason, n := range stats.Skipped {
		p.metrics.RecordRosterSkips(ctx, source, string(reason), n)
	}
	p.logger.Info("loaded roster source",
		"source", source,
		"path", path,
		"records", stats.Loaded,
		"skipped", stats.TotalSkipped())
}
