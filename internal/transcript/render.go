package transcript

import (
	"fmt"
	"strings"
)

// SpeakerTurn is one time-stamped, speaker-labeled turn as produced by a
// transcription+diarization collaborator.
type SpeakerTurn struct {
	// SpeakerLabel is the diarization placeholder, e.g. "SPEAKER_A".
	SpeakerLabel string

	// StartMS and EndMS bound the turn in milliseconds from audio start.
	StartMS int
	EndMS   int

	// Text is the transcribed turn text.
	Text string
}

// FormatTurns renders diarized turns into the transcript line grammar, one
// line per turn with a trailing newline. The output parses back through
// ParseUtterances, which makes it the canonical bridge between diarization
// output and a resolution run.
func FormatTurns(turns []SpeakerTurn) string {
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(fmt.Sprintf("[%s - %s] %s: %s\n",
			formatTimestamp(turn.StartMS),
			formatTimestamp(turn.EndMS),
			turn.SpeakerLabel,
			strings.TrimSpace(turn.Text),
		))
	}
	return b.String()
}

// formatTimestamp converts milliseconds to HH:MM:SS. Hours are not wrapped
// at 24; hearings never run that long but the grammar does not require it
// either. Negative inputs clamp to zero.
func formatTimestamp(ms int) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
