package alias

import (
	"sort"
	"strings"
)

// Scorer rates how well a query matches a candidate, in [0, 1].
// It is the only thing the index knows about fuzzy matching, so the
// algorithm and threshold can change without touching resolution logic.
type Scorer interface {
	Score(query, candidate string) float64
}

// TokenSetScorer scores with a token-set Levenshtein ratio: both strings are
// tokenized, and the ratio is taken over the best of (shared tokens vs each
// full token set). A query that is a token subset of a candidate scores 1.0,
// which is what makes "sopa china" line up with both "sopa china pequenas"
// and "sopa china grandes" instead of matching neither.
type TokenSetScorer struct{}

func (TokenSetScorer) Score(query, candidate string) float64 {
	if query == candidate {
		return 1.0
	}
	if query == "" || candidate == "" {
		return 0
	}

	qTokens := strings.Fields(query)
	cTokens := strings.Fields(candidate)

	shared, qOnly := splitTokens(qTokens, cTokens)
	_, cOnly := splitTokens(cTokens, qTokens)

	base := strings.Join(shared, " ")
	full1 := joinNonEmpty(base, strings.Join(qOnly, " "))
	full2 := joinNonEmpty(base, strings.Join(cOnly, " "))

	best := ratio(full1, full2)
	if base != "" {
		if r := ratio(base, full1); r > best {
			best = r
		}
		if r := ratio(base, full2); r > best {
			best = r
		}
	}
	return best
}

// splitTokens partitions a into (tokens also in b, tokens only in a),
// both sorted for determinism.
func splitTokens(a, b []string) (shared, only []string) {
	inB := make(map[string]int, len(b))
	for _, t := range b {
		inB[t]++
	}
	for _, t := range a {
		if inB[t] > 0 {
			inB[t]--
			shared = append(shared, t)
		} else {
			only = append(only, t)
		}
	}
	sort.Strings(shared)
	sort.Strings(only)
	return shared, only
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// ratio is the normalized Levenshtein similarity:
// (len(a)+len(b)-distance) / (len(a)+len(b)).
func ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la+lb == 0 {
		return 1.0
	}
	d := levenshtein(a, b)
	return float64(la+lb-d) / float64(la+lb)
}

// levenshtein computes edit distance over runes with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
