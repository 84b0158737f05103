package resolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openhearings/dais/internal/roster"
	"github.com/openhearings/dais/internal/transcript"
)

// promptGuidance is the fixed instruction block. The sentinel name and the
// schema line are load-bearing: the response parser and the downstream
// rewriter both rely on them.
const promptGuidance = "You will map generic transcript labels (e.g., SPEAKER_A) to real people from the provided list.\n" +
	"Use cues in early utterances: who opens the hearing (Chair), ranking member, witness intros, salutations, and self-identification.\n" +
	"Consider adjacency (who speaks before/after) and role clues in text.\n" +
	"If uncertain, set the name to 'Unknown' and include 'confidence': 0.\n" +
	"Return ONLY JSON with the schema: {\"mapping\": {label: {\"name\": str, \"confidence\": number, \"reason\": str}}}."

// BuildMappingPrompt composes the inference request: the instruction block
// followed by a JSON payload embedding the merged roster, the per-label
// summary, and the transcript head verbatim. Pure composition; nothing is
// truncated or redacted here.
func BuildMappingPrompt(known []roster.Record, observed *transcript.Summary, transcriptHead string) (string, error) {
	if known == nil {
		known = []roster.Record{}
	}
	if observed == nil {
		observed = &transcript.Summary{}
	}

	payload := struct {
		KnownSpeakers    []roster.Record     `json:"known_speakers"`
		ObservedSpeakers *transcript.Summary `json:"observed_speakers"`
		TranscriptHead   string              `json:"transcript_head"`
	}{
		KnownSpeakers:    known,
		ObservedSpeakers: observed,
		TranscriptHead:   transcriptHead,
	}

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("resolve: encode prompt payload: %w", err)
	}

	return promptGuidance + "\n\n" + strings.TrimRight(buf.String(), "\n"), nil
}
