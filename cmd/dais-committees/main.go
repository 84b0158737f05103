// Command dais-committees fetches the member roster of a congressional
// committee and writes it as line-delimited JSON, ready for offline
// resolution runs via the jsonl roster loader.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/openhearings/dais/internal/roster"
)

func main() {
	os.Exit(run())
}

func run() int {
	committeeID := flag.String("committee-id", "", "committee code, e.g. HSAG (required)")
	chamber := flag.String("chamber", "", "committee chamber: house, senate, or joint (default: derived from the code)")
	congress := flag.Int("congress", roster.DefaultCongress, "congress number stamped on fetched records")
	apiKey := flag.String("api-key", "", "Congress.gov API key for the fallback source (default: $CONGRESS_API_KEY)")
	outPath := flag.String("out", "", "output path (default: committee_members_<code>_<congress>.jsonl)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *committeeID == "" {
		fmt.Fprintln(os.Stderr, "dais-committees: -committee-id is required")
		flag.Usage()
		return 2
	}
	key := *apiKey
	if key == "" {
		key = os.Getenv("CONGRESS_API_KEY")
	}
	out := *outPath
	if out == "" {
		out = fmt.Sprintf("committee_members_%s_%d.jsonl", strings.ToUpper(*committeeID), *congress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := roster.NewFetcher(key)
	records, err := fetcher.CommitteeMembers(ctx, *committeeID, *chamber, *congress)
	if err != nil {
		slog.Error("fetch failed", "committee", *committeeID, "err", err)
		return 1
	}
	if len(records) == 0 {
		slog.Warn("no members found", "committee", *committeeID)
	}

	if err := writeJSONL(out, records); err != nil {
		slog.Error("failed to write roster", "path", out, "err", err)
		return 1
	}

	fmt.Printf("wrote %d members to %s\n", len(records), out)
	return 0
}

// writeJSONL writes one record per line, the form LoadLines reads back.
func writeJSONL(path string, records []roster.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
