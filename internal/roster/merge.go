package roster

import "strings"

// Merge deduplicates records across ordered sources. Earlier sources take
// precedence: the first record seen for an identity key owns the merged
// entry, and later records only fill fields the entry does not have yet.
// Records without a name are ignored. Input slices are never mutated and
// the result preserves first-seen order.
//
// A later record without a bioguide also merges into an earlier entry that
// shares its normalized name even when that entry is keyed by bioguide, so
// a supplementary roster carrying plain names enriches the authoritative
// one instead of duplicating it. A later record that carries a bioguide is
// always keyed by it: two distinct bioguides stay two records, whatever
// their names.
func Merge(sources ...[]Record) []Record {
	byKey := make(map[string]*Record)
	byName := make(map[string]*Record)
	var order []*Record

	for _, src := range sources {
		for _, rec := range src {
			if strings.TrimSpace(rec.Name) == "" {
				continue
			}

			existing := byKey[rec.IdentityKey()]
			if existing == nil && rec.Bioguide == "" {
				existing = byName[nameKey(rec.Name)]
			}
			if existing != nil {
				existing.fillFrom(rec)
				continue
			}

			cp := rec.Clone()
			byKey[cp.IdentityKey()] = &cp
			if _, ok := byName[nameKey(cp.Name)]; !ok {
				byName[nameKey(cp.Name)] = &cp
			}
			order = append(order, &cp)
		}
	}

	merged := make([]Record, len(order))
	for i, rec := range order {
		merged[i] = *rec
	}
	return merged
}
