package resolve

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"Marketing", "Markting", 1},
		{"Dev", "Devs", 1},
	}
	for _, tt := range tests {
		got := levenshteinDistance(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"abc", "abc", 1.0, 1.0},
		{"", "", 1.0, 1.0},
		{"Sprint Backlog", "sprint backlog", 1.0, 1.0},
		{"  Done  ", "done", 1.0, 1.0},
		// One substitution against length 9: 1 - 1/9.
		{"Markting", "Marketing", 0.88, 0.90},
		{"completely", "different", 0.0, 0.4},
	}
	for _, tt := range tests {
		got := similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("similarity(%q, %q) = %.3f, want [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "Backlog", "Q3 Marketing Plan", "  spaced  "} {
		if got := similarity(s, s); got != 1.0 {
			t.Errorf("similarity(%q, %q) = %.3f, want 1.0", s, s, got)
		}
	}
}

func TestRankCandidates(t *testing.T) {
	ranked := rankCandidates("Marketing", []string{"Engineering", "Markting", "Marketing Ops"})
	if len(ranked) != 3 {
		t.Fatalf("got %d matches, want 3", len(ranked))
	}
	if ranked[0].Name != "Markting" {
		t.Errorf("top match = %q, want %q", ranked[0].Name, "Markting")
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("ranking not descending at %d: %.3f > %.3f", i, ranked[i].Score, ranked[i-1].Score)
		}
	}
}

func TestBestFuzzyMatchAmbiguity(t *testing.T) {
	tests := []struct {
		name   string
		ranked []Match
		wantOK bool
	}{
		{"empty", nil, false},
		{"single", []Match{{"Backlog", 0.9}}, true},
		{"clear winner", []Match{{"Backlog", 0.9}, {"Blocked", 0.6}}, true},
		{"too close", []Match{{"Dev", 0.92}, {"Devs", 0.90}}, false},
		// Gap rule applies regardless of absolute score.
		{"too close and low", []Match{{"a", 0.31}, {"b", 0.30}}, false},
		{"exactly at gap", []Match{{"a", 0.90}, {"b", 0.85}}, true},
	}
	for _, tt := range tests {
		m, ok := bestFuzzyMatch(tt.ranked, 0.05)
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
		}
		if ok && m.Name != tt.ranked[0].Name {
			t.Errorf("%s: match = %q, want top candidate %q", tt.name, m.Name, tt.ranked[0].Name)
		}
	}
}
