// Command dais-rewrite applies a mapping artifact to a transcript, replacing
// resolved speaker labels with real names and optional role annotations.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/openhearings/dais/internal/resolve"
	"github.com/openhearings/dais/internal/roster"
	"github.com/openhearings/dais/internal/transcript"
)

func main() {
	os.Exit(run())
}

func run() int {
	transcriptPath := flag.String("transcript", "", "transcript file to rewrite (required)")
	mappingPath := flag.String("mapping", "speaker_mapping.json", "mapping artifact from a resolution run")
	witnessesPath := flag.String("witnesses", "", "witness roster file, for (Witness) annotations")
	witnessesFormat := flag.String("witnesses-format", "jsonl", "witness roster form, jsonl or json")
	committeePath := flag.String("committee", "", "committee membership file, for (Committee) annotations")
	outPath := flag.String("out", "", "output path (default: <transcript>_labeled<ext>)")
	noRole := flag.Bool("no-role", false, "do not annotate names with (Witness)/(Committee)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *transcriptPath == "" {
		fmt.Fprintln(os.Stderr, "dais-rewrite: -transcript is required")
		flag.Usage()
		return 2
	}
	out := *outPath
	if out == "" {
		out = defaultOutPath(*transcriptPath)
	}

	text, err := os.ReadFile(*transcriptPath)
	if err != nil {
		slog.Error("failed to read transcript", "path", *transcriptPath, "err", err)
		return 1
	}

	mapping, err := resolve.ReadMapping(*mappingPath)
	if err != nil {
		slog.Error("failed to read mapping artifact", "path", *mappingPath, "err", err)
		return 1
	}

	var roleFor func(name string) roster.Role
	if !*noRole {
		witnesses := loadWitnesses(*witnessesPath, *witnessesFormat)
		members := loadMembers(*committeePath)
		roleFor = roster.NewClassifier(witnesses, members).Classify
	}

	rewritten := transcript.RewriteLabels(string(text), mapping.Replacements(roleFor))
	if err := os.WriteFile(out, []byte(rewritten), 0o644); err != nil {
		slog.Error("failed to write rewritten transcript", "path", out, "err", err)
		return 1
	}

	fmt.Printf("rewrote %d labels — transcript written to %s\n", mapping.Resolved(), out)
	return 0
}

// defaultOutPath derives the output name from the input, e.g.
// transcript.txt becomes transcript_labeled.txt.
func defaultOutPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_labeled" + ext
}

// loadWitnesses reads the witness roster, degrading a missing or unreadable
// file to no annotations of that kind.
func loadWitnesses(path, format string) []roster.Record {
	if path == "" {
		return nil
	}
	var (
		records []roster.Record
		err     error
	)
	if format == "json" {
		records, _, err = roster.LoadFlat(path)
	} else {
		records, _, err = roster.LoadLines(path)
	}
	if err != nil {
		slog.Warn("witness roster unavailable", "path", path, "err", err)
		return nil
	}
	return records
}

// loadMembers reads the full membership dump across all committees: any
// member of congress may speak at a hearing, not only the host committee's.
func loadMembers(path string) []roster.Record {
	if path == "" {
		return nil
	}
	records, _, err := roster.LoadCommittees(path)
	if err != nil {
		slog.Warn("committee roster unavailable", "path", path, "err", err)
		return nil
	}
	return records
}
