package roster

import "testing"

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Glenn Thompson", "glenn thompson"},
		{"honorific rep", "Rep. Glenn Thompson", "glenn thompson"},
		{"honorific without period", "Sen Amy Klobuchar", "amy klobuchar"},
		{"stacked honorifics", "Ranking Member Angie Craig", "angie craig"},
		{"doctor", "Dr. Jane Doe", "jane doe"},
		{"surname first", "Thompson, Glenn", "glenn thompson"},
		{"parenthetical district", "Glenn Thompson (PA-15)", "glenn thompson"},
		{"generation suffix", "Sanford D. Bishop Jr.", "sanford d bishop"},
		{"hyphen kept", "Chellie Pingree-Smith", "chellie pingree-smith"},
		{"apostrophe kept", "Tom O'Halleran", "tom o'halleran"},
		{"whitespace collapsed", "  Jane   Doe ", "jane doe"},
		{"empty", "   ", ""},
		{"honorific alone survives", "Chairman", "chairman"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeName(tt.in); got != tt.want {
				t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifier_ExactAndNormalizedMatches(t *testing.T) {
	t.Parallel()

	witnesses := []Record{
		{Name: "Jane Doe", Type: "witness"},
		{Name: "Dr. Emily Stone", Type: "witness"},
	}
	members := []Record{
		{Name: "Glenn Thompson", Bioguide: "T000467"},
		{Name: "Angie Craig", Bioguide: "C001119"},
	}
	c := NewClassifier(witnesses, members)

	tests := []struct {
		name string
		in   string
		want Role
	}{
		{"witness exact", "Jane Doe", RoleWitness},
		{"witness honorific dropped both sides", "Emily Stone", RoleWitness},
		{"member exact", "Glenn Thompson", RoleCommittee},
		{"member with honorific", "Rep. Glenn Thompson", RoleCommittee},
		{"member surname first", "Thompson, Glenn", RoleCommittee},
		{"unknown", "Marcus Aurelius", RoleOther},
		{"empty", "", RoleOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifier_WitnessPrecedence(t *testing.T) {
	t.Parallel()

	shared := []Record{{Name: "Jordan Lake"}}
	c := NewClassifier(shared, shared)

	if got := c.Classify("Jordan Lake"); got != RoleWitness {
		t.Errorf("Classify = %q, want witness precedence", got)
	}
}

func TestClassifier_FuzzyMatch(t *testing.T) {
	t.Parallel()

	members := []Record{{Name: "Glenn Thompson", Bioguide: "T000467"}}
	c := NewClassifier(nil, members)

	// Minor spelling drift with a phonetically identical surname.
	if got := c.Classify("Glen Thompson"); got != RoleCommittee {
		t.Errorf("Classify(Glen Thompson) = %q, want RoleCommittee", got)
	}
}

func TestClassifier_SurnameGateBlocksFirstNameSimilarity(t *testing.T) {
	t.Parallel()

	members := []Record{{Name: "Glenn Thompson"}}
	c := NewClassifier(nil, members)

	// Same first name, unrelated surname: must not match however similar
	// the leading tokens are.
	if got := c.Classify("Glenn Ivey"); got != RoleOther {
		t.Errorf("Classify(Glenn Ivey) = %q, want RoleOther", got)
	}
}

func TestClassifier_ThresholdOption(t *testing.T) {
	t.Parallel()

	members := []Record{{Name: "Glenn Thompson"}}
	strict := NewClassifier(nil, members, WithMatchThreshold(0.999))

	if got := strict.Classify("Glen Thompson"); got != RoleOther {
		t.Errorf("Classify with strict threshold = %q, want RoleOther", got)
	}
	if got := strict.Classify("Glenn Thompson"); got != RoleCommittee {
		t.Errorf("exact match must survive any threshold, got %q", got)
	}
}
