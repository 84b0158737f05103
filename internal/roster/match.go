package roster

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// Role is the annotation attached to a resolved name when rewriting a
// transcript.
type Role string

const (
	RoleWitness   Role = "Witness"
	RoleCommittee Role = "Committee"
	RoleOther     Role = "Other"
)

const defaultMatchThreshold = 0.85

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithMatchThreshold sets the minimum Jaro-Winkler similarity required for
// a fuzzy name match. Default: 0.85.
func WithMatchThreshold(threshold float64) ClassifierOption {
	return func(c *Classifier) {
		c.threshold = threshold
	}
}

// Classifier decides whether a resolved name belongs to a known witness or
// committee member. Resolved names rarely match roster names byte for byte:
// the model may emit "Rep. Glenn Thompson" where the roster has
// "Glenn Thompson", or "Thompson, Glenn" where it has the natural order.
// Classification therefore normalizes honorifics and name order, then falls
// back to fuzzy matching when the normalized forms still differ.
//
// A fuzzy match requires both a phonetically compatible surname and a
// Jaro-Winkler similarity over the full normalized names at or above the
// threshold. The surname gate keeps "Glenn Thompson" from matching an
// unrelated "Glenn Ivey" on first-name similarity alone.
//
// Classifier is read-only after construction and safe for concurrent use.
type Classifier struct {
	threshold float64
	witnesses *nameIndex
	members   *nameIndex
}

// NewClassifier indexes the witness and committee rosters for name lookup.
func NewClassifier(witnesses, members []Record, opts ...ClassifierOption) *Classifier {
	c := &Classifier{threshold: defaultMatchThreshold}
	for _, o := range opts {
		o(c)
	}
	c.witnesses = newNameIndex(witnesses)
	c.members = newNameIndex(members)
	return c
}

// Classify returns the role for a resolved name. Witnesses take precedence
// over committee members; a name matching neither roster is RoleOther.
func (c *Classifier) Classify(name string) Role {
	norm := normalizeName(name)
	if norm == "" {
		return RoleOther
	}
	if c.witnesses.contains(norm, c.threshold) {
		return RoleWitness
	}
	if c.members.contains(norm, c.threshold) {
		return RoleCommittee
	}
	return RoleOther
}

type nameEntry struct {
	normalized   string
	surnameCodes map[string]struct{}
}

type nameIndex struct {
	exact   map[string]struct{}
	entries []nameEntry
}

func newNameIndex(records []Record) *nameIndex {
	idx := &nameIndex{exact: make(map[string]struct{}, len(records))}
	for _, rec := range records {
		norm := normalizeName(rec.Name)
		if norm == "" {
			continue
		}
		if _, ok := idx.exact[norm]; ok {
			continue
		}
		idx.exact[norm] = struct{}{}
		idx.entries = append(idx.entries, nameEntry{
			normalized:   norm,
			surnameCodes: surnameCodes(norm),
		})
	}
	return idx
}

func (idx *nameIndex) contains(norm string, threshold float64) bool {
	if _, ok := idx.exact[norm]; ok {
		return true
	}

	codes := surnameCodes(norm)
	for _, entry := range idx.entries {
		if !codesOverlap(codes, entry.surnameCodes) {
			continue
		}
		if matchr.JaroWinkler(norm, entry.normalized, false) >= threshold {
			return true
		}
	}
	return false
}

// surnameCodes returns the Double Metaphone codes of the last token of a
// normalized name. Empty codes, produced for very short tokens, are omitted.
func surnameCodes(norm string) map[string]struct{} {
	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return nil
	}
	codes := make(map[string]struct{}, 2)
	p, s := matchr.DoubleMetaphone(tokens[len(tokens)-1])
	if p != "" {
		codes[p] = struct{}{}
	}
	if s != "" {
		codes[s] = struct{}{}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// honorifics are leading tokens stripped during name normalization. The
// trailing period, if any, is removed before comparison.
var honorifics = map[string]struct{}{
	"rep":            {},
	"sen":            {},
	"representative": {},
	"senator":        {},
	"hon":            {},
	"dr":             {},
	"mr":             {},
	"ms":             {},
	"mrs":            {},
	"chairman":       {},
	"chairwoman":     {},
	"chair":          {},
	"ranking":        {},
	"member":         {},
}

// normalizeName lower-cases a name, restores "Last, First" ordering, drops
// parenthetical qualifiers such as state or district, strips leading
// honorifics, and removes punctuation apart from hyphens and apostrophes.
func normalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}

	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}

	// "thompson, glenn" reads surname first; put it back in natural order.
	if before, after, ok := strings.Cut(s, ","); ok {
		s = strings.TrimSpace(after) + " " + strings.TrimSpace(before)
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'':
			b.WriteRune(r)
		case r == '.' || r == ',':
			// Dropped entirely so "rep." and "rep" normalize alike.
		default:
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for len(tokens) > 1 {
		if _, ok := honorifics[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}
	for len(tokens) > 1 {
		if _, ok := nameSuffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// nameSuffixes are trailing generation markers dropped so that the last
// remaining token is the actual surname.
var nameSuffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
}
