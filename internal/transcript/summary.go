package transcript

import (
	"bytes"
	"encoding/json"
)

// DefaultSnippetLength is the character bound applied to example snippets
// when the caller does not specify one.
const DefaultSnippetLength = 400

// Example is one utterance retained as per-label evidence. Examples carry
// the adjacency link so the inference step can reason about turn-taking.
type Example struct {
	Index       int    `json:"index"`
	Start       string `json:"start"`
	End         string `json:"end"`
	PrevLabel   string `json:"prev_label,omitempty"`
	TextSnippet string `json:"text_snippet"`
}

// LabelSummary is the bounded evidentiary summary for one speaker label.
type LabelSummary struct {
	// FirstSeen is the start time of the label's earliest utterance.
	FirstSeen string `json:"first_seen"`

	// NumObserved is the true total utterance count for the label within the
	// head window, independent of how many examples were retained.
	NumObserved int `json:"num_observed"`

	// Examples holds at most the first K utterances of the label, in
	// original transcript order, with text truncated to the snippet bound.
	Examples []Example `json:"examples"`
}

// Summary groups utterances by speaker label. Label order is the order of
// first appearance in the transcript, and serialization preserves it, so
// identical inputs produce identical prompt payloads.
type Summary struct {
	order   []string
	byLabel map[string]*LabelSummary
}

// Summarize builds the per-label summary from the ordered utterance
// sequence. maxExamples is the cap K on retained examples per label (a
// negative value counts as 0: labels are still observed and counted, with no
// examples). maxSnippet bounds each example's text in runes; values < 1 fall
// back to DefaultSnippetLength.
//
// Retention is strictly a prefix of each label's appearances: early-hearing
// utterances (openings, self-introductions) carry the strongest identity
// cues, and a prefix bounds the prompt size regardless of hearing length.
func Summarize(utterances []Utterance, maxExamples, maxSnippet int) *Summary {
	if maxExamples < 0 {
		maxExamples = 0
	}
	if maxSnippet < 1 {
		maxSnippet = DefaultSnippetLength
	}

	s := &Summary{byLabel: make(map[string]*LabelSummary)}

	for _, u := range utterances {
		ls, ok := s.byLabel[u.SpeakerLabel]
		if !ok {
			ls = &LabelSummary{
				FirstSeen: u.StartTime,
				Examples:  make([]Example, 0, maxExamples),
			}
			s.byLabel[u.SpeakerLabel] = ls
			s.order = append(s.order, u.SpeakerLabel)
		}

		ls.NumObserved++
		if len(ls.Examples) < maxExamples {
			ls.Examples = append(ls.Examples, Example{
				Index:       u.Index,
				Start:       u.StartTime,
				End:         u.EndTime,
				PrevLabel:   u.PrevSpeakerLabel,
				TextSnippet: truncate(u.Text, maxSnippet),
			})
		}
	}

	return s
}

// Labels returns the speaker labels in order of first appearance. The
// returned slice is a copy.
func (s *Summary) Labels() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the summary for label, or ok=false when the label was never
// observed.
func (s *Summary) Get(label string) (*LabelSummary, bool) {
	ls, ok := s.byLabel[label]
	return ls, ok
}

// Len returns the number of distinct labels observed.
func (s *Summary) Len() int {
	return len(s.order)
}

// MarshalJSON serializes the summary as a JSON object whose keys appear in
// first-appearance order.
func (s *Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.byLabel[label])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// truncate bounds text to max runes. Counting runes keeps multi-byte names
// and quoted remarks intact at the cut.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
