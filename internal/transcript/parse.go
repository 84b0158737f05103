// Package transcript handles diarized hearing transcripts: reading the
// bounded head window, parsing speaker-labeled lines into structured
// utterances, summarizing per-label evidence for identity inference,
// rendering diarization output into the line grammar, and rewriting label
// tokens once a mapping is known.
//
// The line grammar is fixed:
//
//	[<start> - <end>] <label>: <text>
//
// where <start> and <end> are HH:MM:SS timestamps and <label> is "SPEAKER_"
// followed by one or more uppercase ASCII letters. Lines that do not match
// the grammar exactly (headers, blank separators, malformed rows) are
// skipped with a classified reason and never abort a parse.
package transcript

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// lineRE matches one transcript line. Anchored at both ends; the label
// requires at least one uppercase letter so diarizers that emit SPEAKER_AA
// and beyond are covered.
var lineRE = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\s*-\s*(\d{2}:\d{2}:\d{2})\]\s+(SPEAKER_[A-Z]+):\s*(.*)$`)

// Utterance is one parsed transcript line. Utterances are created during a
// single parse pass and never mutated afterwards.
type Utterance struct {
	// Index is the ordinal position in parse order, 0-based and contiguous.
	// Skipped lines do not consume an index.
	Index int `json:"index"`

	// StartTime and EndTime are the bracketed HH:MM:SS timestamps.
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	// SpeakerLabel is the diarization placeholder, e.g. "SPEAKER_A".
	SpeakerLabel string `json:"speaker_label"`

	// Text is the utterance text with surrounding whitespace trimmed.
	Text string `json:"text"`

	// PrevSpeakerLabel is the label of the immediately preceding parsed
	// utterance. Empty (and absent from JSON) only for the very first
	// utterance; adjacency is a strong identity cue in hearings, where the
	// chair alternates with witnesses and members.
	PrevSpeakerLabel string `json:"previous_speaker_label,omitempty"`
}

// SkipReason classifies why a line in the head window produced no utterance.
type SkipReason string

const (
	// SkipBlank marks lines that are empty or whitespace-only.
	SkipBlank SkipReason = "blank"

	// SkipNoMatch marks non-blank lines that do not match the line grammar
	// (section headers, page numbers, malformed rows).
	SkipNoMatch SkipReason = "no_match"
)

// SkippedLine records one line of the head window that produced no
// utterance.
type SkippedLine struct {
	// Line is the 1-based position within the head window.
	Line int

	// Reason classifies the skip.
	Reason SkipReason
}

// ReadHead reads the first n lines of the transcript file at path. The file
// is not held open beyond the read. It returns fewer than n lines when the
// file is shorter; that is not an error.
//
// n must be positive. A file that cannot be opened is a fatal input error
// and is returned as such.
func ReadHead(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("transcript: head window must be positive, got %d", n)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	// Lines carrying long uninterrupted statements can exceed the scanner's
	// 64 KiB default.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make([]string, 0, n)
	for len(lines) < n && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("transcript: read %s: %w", path, err)
	}
	return lines, nil
}

// ParseUtterances converts raw transcript lines into the ordered utterance
// sequence. Non-matching lines are skipped and reported with a classified
// reason; they never consume an index and never produce an error. The
// function is pure: identical input yields identical output.
func ParseUtterances(lines []string) ([]Utterance, []SkippedLine) {
	var (
		utterances []Utterance
		skipped    []SkippedLine
		prevLabel  string
	)

	for i, line := range lines {
		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			reason := SkipNoMatch
			if strings.TrimSpace(line) == "" {
				reason = SkipBlank
			}
			skipped = append(skipped, SkippedLine{Line: i + 1, Reason: reason})
			continue
		}

		label := m[3]
		utterances = append(utterances, Utterance{
			Index:            len(utterances),
			StartTime:        m[1],
			EndTime:          m[2],
			SpeakerLabel:     label,
			Text:             strings.TrimSpace(m[4]),
			PrevSpeakerLabel: prevLabel,
		})
		prevLabel = label
	}

	return utterances, skipped
}
