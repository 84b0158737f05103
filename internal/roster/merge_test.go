package roster_test

import (
	"reflect"
	"testing"

	"github.com/openhearings/dais/internal/roster"
)

func TestMerge_CrossKeyByName(t *testing.T) {
	t.Parallel()

	authoritative := []roster.Record{{Name: "Jane Doe", Bioguide: "D001"}}
	supplementary := []roster.Record{{Name: "Jane Doe", Party: "majority"}}

	got := roster.Merge(authoritative, supplementary)

	want := []roster.Record{{Name: "Jane Doe", Bioguide: "D001", Party: "majority"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
}

func TestMerge_EarlierSourceWins(t *testing.T) {
	t.Parallel()

	first := []roster.Record{{Name: "Glenn Thompson", Bioguide: "T000467", Title: "Chairman", Rank: 1}}
	second := []roster.Record{{Name: "G. Thompson", Bioguide: "T000467", Title: "Ranking Member", Rank: 9, Party: "majority"}}

	got := roster.Merge(first, second)
	if len(got) != 1 {
		t.Fatalf("merged %d records, want 1", len(got))
	}

	rec := got[0]
	if rec.Name != "Glenn Thompson" {
		t.Errorf("name = %q, want first source's name", rec.Name)
	}
	if rec.Title != "Chairman" || rec.Rank != 1 {
		t.Errorf("title/rank = %q/%d, want Chairman/1 from first source", rec.Title, rec.Rank)
	}
	if rec.Party != "majority" {
		t.Errorf("party = %q, want gap filled from second source", rec.Party)
	}
}

func TestMerge_DistinctBioguidesStayDistinct(t *testing.T) {
	t.Parallel()

	got := roster.Merge(
		[]roster.Record{{Name: "Mike Johnson", Bioguide: "J000299"}},
		[]roster.Record{{Name: "Mike Johnson", Bioguide: "J000302"}},
	)
	if len(got) != 2 {
		t.Errorf("merged %d records, want 2 distinct bioguides", len(got))
	}
}

func TestMerge_LaterBioguideDoesNotFoldIntoNameRecord(t *testing.T) {
	t.Parallel()

	got := roster.Merge(
		[]roster.Record{{Name: "Jane Doe", Party: "majority"}},
		[]roster.Record{{Name: "Jane Doe", Bioguide: "D001"}},
	)
	// The name-keyed record came first; the bioguide record keys separately.
	if len(got) != 2 {
		t.Fatalf("merged %d records, want 2", len(got))
	}
	if got[0].Bioguide != "" || got[1].Bioguide != "D001" {
		t.Errorf("unexpected bioguides: %+v", got)
	}
}

func TestMerge_Associative(t *testing.T) {
	t.Parallel()

	a := []roster.Record{
		{Name: "Jane Doe", Bioguide: "D001"},
		{Name: "Glenn Thompson", Bioguide: "T000467", Title: "Chairman"},
	}
	b := []roster.Record{
		{Name: "Jane Doe", Party: "majority"},
		{Name: "Angie Craig", Bioguide: "C001119"},
	}
	c := []roster.Record{
		{Name: "Glenn Thompson", Party: "majority"},
		{Name: "Angie Craig", Rank: 1},
	}

	allAtOnce := roster.Merge(a, b, c)
	stepped := roster.Merge(roster.Merge(a, b), c)

	if !reflect.DeepEqual(allAtOnce, stepped) {
		t.Errorf("Merge(a,b,c) = %+v, want same as Merge(Merge(a,b),c) = %+v", allAtOnce, stepped)
	}
}

func TestMerge_PreservesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	got := roster.Merge(
		[]roster.Record{{Name: "Jane Doe"}, {Name: "John Roe"}},
		[]roster.Record{{Name: "Amy Poe"}, {Name: "Jane Doe", Party: "majority"}},
	)

	names := make([]string, len(got))
	for i, rec := range got {
		names[i] = rec.Name
	}
	want := []string{"Jane Doe", "John Roe", "Amy Poe"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestMerge_SkipsNamelessRecords(t *testing.T) {
	t.Parallel()

	got := roster.Merge([]roster.Record{
		{Name: "   "},
		{Bioguide: "X000001"},
		{Name: "Jane Doe"},
	})
	if len(got) != 1 || got[0].Name != "Jane Doe" {
		t.Errorf("Merge = %+v, want only Jane Doe", got)
	}
}

func TestMerge_DoesNotMutateSources(t *testing.T) {
	t.Parallel()

	src := []roster.Record{{Name: "Jane Doe", Extra: map[string]any{"position": "CEO"}}}
	later := []roster.Record{{Name: "Jane Doe", Extra: map[string]any{"organization_note": "farm bureau"}}}

	merged := roster.Merge(src, later)
	merged[0].Extra["position"] = "changed"

	if src[0].Extra["position"] != "CEO" {
		t.Errorf("merge mutated the source record")
	}
	if _, leaked := src[0].Extra["organization_note"]; leaked {
		t.Errorf("merge wrote later-source fields into the input slice")
	}
}

func TestMerge_ExtraGapFill(t *testing.T) {
	t.Parallel()

	got := roster.Merge(
		[]roster.Record{{Name: "Jane Doe", Extra: map[string]any{"position": "CEO"}}},
		[]roster.Record{{Name: "Jane Doe", Extra: map[string]any{"position": "CTO", "congress": 119}}},
	)
	if len(got) != 1 {
		t.Fatalf("merged %d records, want 1", len(got))
	}
	if got[0].Extra["position"] != "CEO" {
		t.Errorf("position = %v, want earlier source's CEO", got[0].Extra["position"])
	}
	if got[0].Extra["congress"] != 119 {
		t.Errorf("congress = %v, want gap filled with 119", got[0].Extra["congress"])
	}
}

func TestMerge_Empty(t *testing.T) {
	t.Parallel()

	if got := roster.Merge(); len(got) != 0 {
		t.Errorf("Merge() = %+v, want empty", got)
	}
	if got := roster.Merge(nil, []roster.Record{}); len(got) != 0 {
		t.Errorf("Merge(nil, empty) = %+v, want empty", got)
	}
}
