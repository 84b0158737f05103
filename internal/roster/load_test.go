package roster_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openhearings/dais/internal/roster"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFlat(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "witnesses.json", `[
		{"name": "Jane Doe", "role": "Witness", "organization": "Farm Bureau"},
		{"role": "Witness"},
		"not an object",
		{"name": "Rep. X", "role": "Member"}
	]`)

	records, stats, err := roster.LoadFlat(path)
	if err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want 2", len(records))
	}
	if records[0].Name != "Jane Doe" || records[1].Name != "Rep. X" {
		t.Errorf("unexpected records: %+v", records)
	}
	if stats.Entries != 4 || stats.Loaded != 2 {
		t.Errorf("stats = %+v, want 4 entries, 2 loaded", stats)
	}
	if stats.Skipped[roster.SkipMissingName] != 1 {
		t.Errorf("missing-name skips = %d, want 1", stats.Skipped[roster.SkipMissingName])
	}
	if stats.Skipped[roster.SkipInvalidJSON] != 1 {
		t.Errorf("invalid-json skips = %d, want 1", stats.Skipped[roster.SkipInvalidJSON])
	}
}

func TestLoadFlat_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := roster.LoadFlat(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFlat_MalformedDocument(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "witnesses.json", `{"not": "an array"}`)
	records, _, err := roster.LoadFlat(path)
	if err == nil {
		t.Fatal("expected error for non-array document")
	}
	if len(records) != 0 {
		t.Errorf("got %d records from malformed document", len(records))
	}
}

func TestLoadLines(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "witnesses.jsonl", `{"type": "metadata", "hearing": "HSAG Farm Bill"}
{"type": "witness", "name": "Jane Doe", "position": "CEO", "organization": "Farm Bureau"}

{"type": "witness", "position": "CTO"}
not json at all
{"type": "member", "name": "Glenn Thompson", "bioguide": "T000467"}
{"type": "person", "name": "John Roe"}
{"type": "staff", "name": "Backroom Bob"}`)

	records, stats, err := roster.LoadLines(path)
	if err != nil {
		t.Fatalf("LoadLines: %v", err)
	}

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}
	want := []string{"Jane Doe", "Glenn Thompson", "John Roe"}
	if len(names) != len(want) {
		t.Fatalf("loaded %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, names[i], want[i])
		}
	}

	// Blank lines are not entries; everything else is classified.
	if stats.Entries != 7 {
		t.Errorf("entries = %d, want 7", stats.Entries)
	}
	if stats.Skipped[roster.SkipWrongType] != 2 {
		t.Errorf("wrong-type skips = %d, want 2 (metadata header and staff)", stats.Skipped[roster.SkipWrongType])
	}
	if stats.Skipped[roster.SkipInvalidJSON] != 1 {
		t.Errorf("invalid-json skips = %d, want 1", stats.Skipped[roster.SkipInvalidJSON])
	}
	if stats.Skipped[roster.SkipMissingName] != 1 {
		t.Errorf("missing-name skips = %d, want 1", stats.Skipped[roster.SkipMissingName])
	}
}

func TestLoadLines_PreservesExtraFields(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "witnesses.jsonl",
		`{"type": "witness", "name": "Jane Doe", "position": "CEO"}`)

	records, _, err := roster.LoadLines(path)
	if err != nil {
		t.Fatalf("LoadLines: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("loaded %d records, want 1", len(records))
	}
	if got := records[0].Extra["position"]; got != "CEO" {
		t.Errorf(`Extra["position"] = %v, want CEO`, got)
	}
}

func TestLoadLines_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := roster.LoadLines(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

const committeeFixture = `{
	"HSAG": [
		{"name": "Glenn Thompson", "party": "majority", "rank": 1, "title": "Chairman", "bioguide": "T000467"},
		{"name": "Angie Craig", "party": "minority", "rank": 1, "title": "Ranking Member", "bioguide": "C001119"},
		{"party": "majority", "rank": 2}
	],
	"SSAF": [
		{"name": "Amy Klobuchar", "party": "majority", "rank": 1, "bioguide": "K000367"}
	],
	"HSIF": {
		"G000599": {"name": "Greg Landsman", "party": "minority", "rank": 9},
		"B001302": {"name": "Andy Biggs", "party": "majority", "rank": 3, "bioguide": "B001302"}
	}
}`

func TestLoadCommittee_ListShape(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "committee-membership-current.json", committeeFixture)

	records, stats, err := roster.LoadCommittee(path, "hsag")
	if err != nil {
		t.Fatalf("LoadCommittee: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want 2", len(records))
	}
	if stats.Skipped[roster.SkipMissingName] != 1 {
		t.Errorf("missing-name skips = %d, want 1", stats.Skipped[roster.SkipMissingName])
	}

	chair := records[0]
	if chair.Name != "Glenn Thompson" || chair.Bioguide != "T000467" {
		t.Errorf("unexpected first record: %+v", chair)
	}
	if chair.Type != "member" {
		t.Errorf("type = %q, want member default", chair.Type)
	}
	if chair.CommitteeID != "HSAG" {
		t.Errorf("committee_id = %q, want HSAG", chair.CommitteeID)
	}
	if chair.Chamber != "house" {
		t.Errorf("chamber = %q, want house from code prefix", chair.Chamber)
	}
}

func TestLoadCommittee_SenateChamber(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "committee-membership-current.json", committeeFixture)

	records, _, err := roster.LoadCommittee(path, "SSAF")
	if err != nil {
		t.Fatalf("LoadCommittee: %v", err)
	}
	if len(records) != 1 || records[0].Chamber != "senate" {
		t.Errorf("records = %+v, want one senate record", records)
	}
}

func TestLoadCommittee_MapShape(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "committee-membership-current.json", committeeFixture)

	records, _, err := roster.LoadCommittee(path, "HSIF")
	if err != nil {
		t.Fatalf("LoadCommittee: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want 2", len(records))
	}

	// Map keys are walked in sorted order, and the key supplies the bioguide
	// when the role object lacks one.
	if records[0].Bioguide != "B001302" || records[0].Name != "Andy Biggs" {
		t.Errorf("first record = %+v, want Andy Biggs B001302", records[0])
	}
	if records[1].Bioguide != "G000599" || records[1].Name != "Greg Landsman" {
		t.Errorf("second record = %+v, want Greg Landsman keyed bioguide", records[1])
	}
}

func TestLoadCommittee_UnknownCode(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "committee-membership-current.json", committeeFixture)

	records, stats, err := roster.LoadCommittee(path, "HSXX")
	if err != nil {
		t.Fatalf("LoadCommittee: %v", err)
	}
	if len(records) != 0 || stats.Loaded != 0 {
		t.Errorf("unknown code yielded %+v", records)
	}
}

func TestLoadCommittee_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := roster.LoadCommittee(filepath.Join(t.TempDir(), "absent.json"), "HSAG")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadCommittees_AllCodesSorted(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "committee-membership-current.json", committeeFixture)

	records, stats, err := roster.LoadCommittees(path)
	if err != nil {
		t.Fatalf("LoadCommittees: %v", err)
	}
	if stats.Loaded != 5 {
		t.Fatalf("loaded %d records, want 5", stats.Loaded)
	}

	wantOrder := []string{"HSAG", "HSAG", "HSIF", "HSIF", "SSAF"}
	for i, rec := range records {
		if rec.CommitteeID != wantOrder[i] {
			t.Errorf("record %d committee = %q, want %q", i, rec.CommitteeID, wantOrder[i])
		}
	}
}
