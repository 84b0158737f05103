package roster

import (
	"bufio"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// SkipReason classifies why a loader ignored a source entry.
type SkipReason string

const (
	// SkipInvalidJSON marks an entry or line that could not be decoded.
	SkipInvalidJSON SkipReason = "invalid_json"

	// SkipMissingName marks an entry without a usable name field.
	SkipMissingName SkipReason = "missing_name"

	// SkipWrongType marks a line-delimited entry whose type is not one of
	// witness, member, or person. Metadata header lines fall under this rule.
	SkipWrongType SkipReason = "wrong_type"
)

// LoadStats reports what a loader saw. Skipped entries are counted by
// reason rather than logged, so callers decide how loudly to surface them.
type LoadStats struct {
	// Entries is the number of non-blank entries examined.
	Entries int

	// Loaded is the number of records returned.
	Loaded int

	// Skipped counts ignored entries by reason. Nil when nothing was skipped.
	Skipped map[SkipReason]int
}

func (s *LoadStats) skip(reason SkipReason) {
	if s.Skipped == nil {
		s.Skipped = make(map[SkipReason]int)
	}
	s.Skipped[reason]++
}

// TotalSkipped returns the number of entries ignored across all reasons.
func (s LoadStats) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// LoadFlat reads a flat JSON array of identity objects. Entries that are not
// objects or lack a name are skipped; there is no type filter. A missing or
// unparsable file is reported as an error so the caller can degrade to an
// empty source.
func LoadFlat(path string) ([]Record, LoadStats, error) {
	var stats LoadStats

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stats, fmt.Errorf("roster: read %s: %w", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, stats, fmt.Errorf("roster: parse %s: %w", path, err)
	}

	var records []Record
	for _, entry := range entries {
		stats.Entries++
		var rec Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			stats.skip(SkipInvalidJSON)
			continue
		}
		if strings.TrimSpace(rec.Name) == "" {
			stats.skip(SkipMissingName)
			continue
		}
		records = append(records, rec)
	}
	stats.Loaded = len(records)
	return records, stats, nil
}

// allowedLineTypes are the record types accepted by LoadLines.
var allowedLineTypes = map[string]struct{}{
	"witness": {},
	"member":  {},
	"person":  {},
}

// LoadLines reads a line-delimited roster: one JSON object per line, each
// requiring a type of witness, member, or person and a non-empty name.
// Blank lines are ignored; anything else that fails the rule is skipped
// with a classified reason.
func LoadLines(path string) ([]Record, LoadStats, error) {
	var stats LoadStats

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, fmt.Errorf("roster: open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stats.Entries++

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			stats.skip(SkipInvalidJSON)
			continue
		}
		if _, ok := allowedLineTypes[rec.Type]; !ok {
			stats.skip(SkipWrongType)
			continue
		}
		if strings.TrimSpace(rec.Name) == "" {
			stats.skip(SkipMissingName)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("roster: scan %s: %w", path, err)
	}
	stats.Loaded = len(records)
	return records, stats, nil
}

// LoadCommittee reads the membership roster for one committee from a
// unitedstates.io style dump: a single JSON object keyed by upper-cased
// committee code. The committee value may be an array of member objects or
// a mapping from member id to a role object; both shapes are accepted.
//
// Loaded records default their type to "member", their committee_id to the
// requested code, and their chamber to the one implied by the code prefix.
// An unknown committee code yields an empty result, not an error.
func LoadCommittee(path, committeeID string) ([]Record, LoadStats, error) {
	var stats LoadStats

	byCode, err := readCommitteeFile(path)
	if err != nil {
		return nil, stats, err
	}

	code := strings.ToUpper(strings.TrimSpace(committeeID))
	raw, ok := byCode[code]
	if !ok {
		return nil, stats, nil
	}

	records := decodeCommitteeValue(raw, code, &stats)
	stats.Loaded = len(records)
	return records, stats, nil
}

// LoadCommittees reads every committee in the dump, in sorted code order.
// Useful when the caller needs the full member population rather than a
// single committee, such as role annotation during transcript rewriting.
func LoadCommittees(path string) ([]Record, LoadStats, error) {
	var stats LoadStats

	byCode, err := readCommitteeFile(path)
	if err != nil {
		return nil, stats, err
	}

	var records []Record
	for _, code := range slices.Sorted(maps.Keys(byCode)) {
		records = append(records, decodeCommitteeValue(byCode[code], code, &stats)...)
	}
	stats.Loaded = len(records)
	return records, stats, nil
}

func readCommitteeFile(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	var byCode map[string]json.RawMessage
	if err := json.Unmarshal(data, &byCode); err != nil {
		return nil, fmt.Errorf("roster: parse %s: %w", path, err)
	}
	return byCode, nil
}

// decodeCommitteeValue handles both committee value shapes. In the mapping
// shape the key is the member's id, which doubles as the bioguide when the
// role object itself carries none.
func decodeCommitteeValue(raw json.RawMessage, code string, stats *LoadStats) []Record {
	var records []Record

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, entry := range list {
			stats.Entries++
			rec, ok := decodeCommitteeMember(entry, stats)
			if !ok {
				continue
			}
			applyCommitteeDefaults(&rec, code)
			records = append(records, rec)
		}
		return records
	}

	var byID map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byID); err == nil {
		for _, id := range slices.Sorted(maps.Keys(byID)) {
			stats.Entries++
			rec, ok := decodeCommitteeMember(byID[id], stats)
			if !ok {
				continue
			}
			if rec.Bioguide == "" {
				rec.Bioguide = id
			}
			applyCommitteeDefaults(&rec, code)
			records = append(records, rec)
		}
		return records
	}

	stats.skip(SkipInvalidJSON)
	return nil
}

func decodeCommitteeMember(raw json.RawMessage, stats *LoadStats) (Record, bool) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		stats.skip(SkipInvalidJSON)
		return Record{}, false
	}
	if strings.TrimSpace(rec.Name) == "" {
		stats.skip(SkipMissingName)
		return Record{}, false
	}
	return rec, true
}

func applyCommitteeDefaults(rec *Record, code string) {
	if rec.Type == "" {
		rec.Type = "member"
	}
	if rec.CommitteeID == "" {
		rec.CommitteeID = code
	}
	if rec.Chamber == "" {
		rec.Chamber = chamberForCode(code)
	}
}

// chamberForCode derives the chamber from the committee code prefix used by
// the unitedstates.io dataset: H for House, S for Senate, J for joint.
func chamberForCode(code string) string {
	switch {
	case strings.HasPrefix(code, "H"):
		return "house"
	case strings.HasPrefix(code, "S"):
		return "senate"
	case strings.HasPrefix(code, "J"):
		return "joint"
	default:
		return "house"
	}
}
