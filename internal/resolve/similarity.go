package resolve

import (
	"sort"
	"strings"
)

// Match pairs a candidate name with its similarity to a requested name.
type Match struct {
	Name  string
	Score float64
}

// normalizeName lowercases and trims a user-supplied resource name.
// Used for every comparison and every cache key.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// similarity returns 1.0 - (distance / maxLen) over normalized inputs,
// so 1.0 = identical ignoring case and surrounding whitespace.
func similarity(a, b string) float64 {
	a = normalizeName(a)
	b = normalizeName(b)
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshteinDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// rankCandidates scores every candidate against name and returns them
// sorted by descending similarity. Candidate names are returned as-is;
// only the comparison is normalized.
func rankCandidates(name string, candidates []string) []Match {
	ranked := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, Match{Name: c, Score: similarity(name, c)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// bestFuzzyMatch applies the ambiguity rule to a ranked candidate slice:
// if the top two scores are within gap of each other the match is
// unresolvable and no match is returned. A false negative is preferred
// over silently acting on the wrong resource.
func bestFuzzyMatch(ranked []Match, gap float64) (Match, bool) {
	if len(ranked) == 0 {
		return Match{}, false
	}
	if len(ranked) > 1 && ranked[0].Score-ranked[1].Score < gap {
		return Match{}, false
	}
	return ranked[0], true
}

// topNames returns up to n candidate names from a ranked slice,
// used to build remediation hints on resolution failures.
func topNames(ranked []Match, n int) []string {
	if len(ranked) < n {
		n = len(ranked)
	}
	names := make([]string, 0, n)
	for _, m := range ranked[:n] {
		names = append(names, m.Name)
	}
	return names
}
