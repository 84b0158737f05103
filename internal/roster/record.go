// Package roster loads, merges, and classifies known-identity candidates for
// hearing speaker resolution.
//
// Identity candidates arrive from heterogeneous sources: scraped witness
// lists (line-delimited JSON), flat JSON arrays, and the unitedstates.io
// committee-membership dump keyed by committee code. Each loader tolerates
// malformed entries by skipping them with a classified reason; only I/O or
// whole-document failures surface as errors, and callers are expected to
// treat even those as a degraded-but-usable empty source.
//
// Merging deduplicates across sources by identity key: records carrying a
// bioguide id key as "bioguide:<id>", all others as "name:<normalized name>".
// Earlier sources win field conflicts; later sources only fill gaps.
package roster

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Record is a single identity candidate. The named fields cover everything
// the resolution prompt and the merge key depend on; any other field found
// in a source entry is preserved verbatim in Extra.
type Record struct {
	// Name is the candidate's display name. Required: loaders skip entries
	// without one, and Merge ignores records with an empty name.
	Name string

	// Type classifies the record: "witness", "member", or "person".
	Type string

	// Bioguide is the stable congressional identifier. When present it takes
	// precedence over the name as the deduplication key.
	Bioguide string

	Party        string
	Rank         int
	Title        string
	Organization string
	CommitteeID  string
	Chamber      string
	Source       string

	// Extra holds source fields that have no typed counterpart, such as a
	// witness "position" or a fetch provenance "congress" number.
	Extra map[string]any
}

// IdentityKey returns the deduplication key for the record:
// "bioguide:<id>" when a bioguide is present, else "name:<name>" with the
// name lower-cased and trimmed.
func (r Record) IdentityKey() string {
	if r.Bioguide != "" {
		return "bioguide:" + r.Bioguide
	}
	return "name:" + nameKey(r.Name)
}

// nameKey normalizes a name for keying purposes only.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Clone returns a deep copy of the record. Merge operates on copies so that
// no source slice is mutated in place.
func (r Record) Clone() Record {
	cp := r
	cp.Extra = maps.Clone(r.Extra)
	return cp
}

// fillFrom copies fields from other into r, but only where r has no value
// yet. Existing fields are never overwritten.
func (r *Record) fillFrom(other Record) {
	if r.Name == "" {
		r.Name = other.Name
	}
	if r.Type == "" {
		r.Type = other.Type
	}
	if r.Bioguide == "" {
		r.Bioguide = other.Bioguide
	}
	if r.Party == "" {
		r.Party = other.Party
	}
	if r.Rank == 0 {
		r.Rank = other.Rank
	}
	if r.Title == "" {
		r.Title = other.Title
	}
	if r.Organization == "" {
		r.Organization = other.Organization
	}
	if r.CommitteeID == "" {
		r.CommitteeID = other.CommitteeID
	}
	if r.Chamber == "" {
		r.Chamber = other.Chamber
	}
	if r.Source == "" {
		r.Source = other.Source
	}
	for key, val := range other.Extra {
		if val == nil {
			continue
		}
		if _, ok := r.Extra[key]; ok {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[key] = val
	}
}

// UnmarshalJSON decodes a record from an arbitrary JSON object. Known keys
// populate the typed fields; unknown keys land in Extra. Values of the wrong
// type for a known key are treated as absent. Null values are dropped.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{}
	for key, val := range raw {
		switch key {
		case "name":
			r.Name = asString(val)
		case "type":
			r.Type = asString(val)
		case "bioguide":
			r.Bioguide = asString(val)
		case "party":
			r.Party = asString(val)
		case "rank":
			if f, ok := val.(float64); ok {
				r.Rank = int(f)
			}
		case "title":
			r.Title = asString(val)
		case "organization":
			r.Organization = asString(val)
		case "committee_id":
			r.CommitteeID = asString(val)
		case "chamber":
			r.Chamber = asString(val)
		case "source":
			r.Source = asString(val)
		default:
			if val == nil {
				continue
			}
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[key] = val
		}
	}
	return nil
}

// MarshalJSON encodes the record with a fixed field order (typed fields
// first, then Extra keys sorted) so that serialized rosters, and therefore
// resolution prompts, are deterministic.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, val any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := appendJSON(&buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		return appendJSON(&buf, val)
	}

	if r.Type != "" {
		if err := write("type", r.Type); err != nil {
			return nil, err
		}
	}
	if err := write("name", r.Name); err != nil {
		return nil, err
	}
	if r.Party != "" {
		if err := write("party", r.Party); err != nil {
			return nil, err
		}
	}
	if r.Rank != 0 {
		if err := write("rank", r.Rank); err != nil {
			return nil, err
		}
	}
	if r.Title != "" {
		if err := write("title", r.Title); err != nil {
			return nil, err
		}
	}
	if r.Organization != "" {
		if err := write("organization", r.Organization); err != nil {
			return nil, err
		}
	}
	if r.Bioguide != "" {
		if err := write("bioguide", r.Bioguide); err != nil {
			return nil, err
		}
	}
	if r.CommitteeID != "" {
		if err := write("committee_id", r.CommitteeID); err != nil {
			return nil, err
		}
	}
	if r.Chamber != "" {
		if err := write("chamber", r.Chamber); err != nil {
			return nil, err
		}
	}
	if r.Source != "" {
		if err := write("source", r.Source); err != nil {
			return nil, err
		}
	}
	for _, key := range slices.Sorted(maps.Keys(r.Extra)) {
		if err := write(key, r.Extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// appendJSON writes v to buf without HTML escaping. Witness organizations
// routinely contain ampersands; escaping them would make prompts and roster
// files needlessly hard to read.
func appendJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates with a newline; strip it.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
