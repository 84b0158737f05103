// Package resolve maps anonymous diarization labels to real identities.
//
// The [Resolver] composes the merged roster, the per-label utterance
// summary, and the raw transcript head into a single inference request with
// a strict JSON output contract, issues exactly one completion call, and
// validates the response. Every failure mode of that call — transport
// errors, unparseable output, a missing mapping object — degrades to an
// explicit empty [Mapping] rather than an error: unresolved labels are an
// expected outcome, not an exceptional one.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/openhearings/dais/internal/roster"
	"github.com/openhearings/dais/internal/transcript"
)

// UnknownName is the sentinel the model is instructed to emit when it
// cannot identify a label. Entries carrying it are treated as unresolved.
const UnknownName = "Unknown"

// Entry is the resolution of a single speaker label.
type Entry struct {
	// Name is the resolved identity, or [UnknownName] when the model was
	// uncertain.
	Name string `json:"name"`

	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Reason is the model's short justification for the assignment.
	Reason string `json:"reason"`
}

// UnmarshalJSON tolerates a confidence emitted as a JSON string, which
// some models produce despite the schema instruction.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string          `json:"name"`
		Confidence json.RawMessage `json:"confidence"`
		Reason     string          `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Name = raw.Name
	e.Reason = raw.Reason
	e.Confidence = parseConfidence(raw.Confidence)
	return nil
}

func parseConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// Mapping relates speaker labels (SPEAKER_A) to resolved entries. An empty
// mapping is the universal fallback: it means nothing could be resolved.
type Mapping map[string]Entry

// Resolved returns the labels that carry a usable name, i.e. neither empty
// nor the [UnknownName] sentinel.
func (m Mapping) Resolved() int {
	n := 0
	for _, entry := range m {
		if isResolved(entry) {
			n++
		}
	}
	return n
}

func isResolved(entry Entry) bool {
	name := strings.TrimSpace(entry.Name)
	return name != "" && !strings.EqualFold(name, UnknownName)
}

// Replacements converts the mapping into transcript label replacements.
// Unresolved entries are omitted so their labels stay untouched. When
// roleFor is non-nil it supplies the role annotation; only witness and
// committee roles are annotated.
func (m Mapping) Replacements(roleFor func(name string) roster.Role) map[string]transcript.Replacement {
	repl := make(map[string]transcript.Replacement, len(m))
	for label, entry := range m {
		if !isResolved(entry) {
			continue
		}
		name := strings.TrimSpace(entry.Name)
		r := transcript.Replacement{Name: name}
		if roleFor != nil {
			if role := roleFor(name); role == roster.RoleWitness || role == roster.RoleCommittee {
				r.Role = string(role)
			}
		}
		repl[label] = r
	}
	return repl
}

// ParseMapping extracts a Mapping from raw model output. Markdown code
// fences are stripped first. A response that is not a JSON object or has
// no mapping key is an error; a present-but-null mapping is empty; entries
// that cannot be decoded are dropped.
func ParseMapping(content string) (Mapping, error) {
	cleaned := stripFences(content)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return nil, fmt.Errorf("resolve: parse response: %w", err)
	}
	rawMapping, ok := top["mapping"]
	if !ok {
		return nil, fmt.Errorf("resolve: response has no mapping object")
	}

	var entries map[string]json.RawMessage
	if len(rawMapping) > 0 && string(rawMapping) != "null" {
		if err := json.Unmarshal(rawMapping, &entries); err != nil {
			return nil, fmt.Errorf("resolve: mapping is not an object: %w", err)
		}
	}

	mapping := make(Mapping, len(entries))
	for label, raw := range entries {
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		mapping[label] = entry
	}
	return mapping, nil
}

// stripFences removes optional markdown code fences (```json ... ```) that
// some models wrap around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}

// WriteMapping writes the wrapped mapping artifact ({"mapping": {...}})
// with two-space indentation. Labels serialize in sorted order, which for
// SPEAKER_* labels is also their natural order.
func WriteMapping(path string, mapping Mapping) error {
	data, err := marshalEnvelope(mapping)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("resolve: write mapping %s: %w", path, err)
	}
	return nil
}

// EncodeMapping renders the wrapped mapping artifact as a string, for
// callers that print instead of persisting.
func EncodeMapping(mapping Mapping) (string, error) {
	data, err := marshalEnvelope(mapping)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshalEnvelope(mapping Mapping) ([]byte, error) {
	if mapping == nil {
		mapping = Mapping{}
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]Mapping{"mapping": mapping}); err != nil {
		return nil, fmt.Errorf("resolve: encode mapping: %w", err)
	}
	return []byte(buf.String()), nil
}

// ReadMapping loads a previously written mapping artifact. Entries without
// a decodable shape are dropped, mirroring ParseMapping.
func ReadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolve: read mapping %s: %w", path, err)
	}
	mapping, err := ParseMapping(string(data))
	if err != nil {
		return nil, fmt.Errorf("resolve: mapping file %s: %w", path, err)
	}
	return mapping, nil
}
