package transcript

import "regexp"

// labelTokenRE matches speaker label tokens anywhere in running text, on
// word boundaries only, so "SPEAKER_AB" is never half-replaced via
// "SPEAKER_A".
var labelTokenRE = regexp.MustCompile(`\bSPEAKER_[A-Z]+\b`)

// Replacement is the substitution applied to one speaker label during a
// rewrite.
type Replacement struct {
	// Name is the resolved display name. Replacements with an empty Name are
	// ignored and the label is left in place.
	Name string

	// Role is an optional annotation appended as " (Role)", e.g. "Witness"
	// or "Committee". Empty means the bare name is substituted.
	Role string
}

// RewriteLabels replaces every label token that has a replacement with the
// resolved name (and role annotation when present). Label tokens without a
// replacement, and all non-label content, pass through byte-for-byte, so an
// unresolved hearing rewrites to itself.
func RewriteLabels(text string, replacements map[string]Replacement) string {
	if len(replacements) == 0 {
		return text
	}

	return labelTokenRE.ReplaceAllStringFunc(text, func(label string) string {
		r, ok := replacements[label]
		if !ok || r.Name == "" {
			return label
		}
		if r.Role != "" {
			return r.Name + " (" + r.Role + ")"
		}
		return r.Name
	})
}
