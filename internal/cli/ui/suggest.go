package ui

import (
	"sort"
	"strings"
)

// MaxSuggestions bounds the names returned by Suggest
const MaxSuggestions = 3

// Suggest returns up to MaxSuggestions candidates within a third of the
// target's length in edit distance, closest first. Matching ignores case.
func Suggest(target string, candidates []string) []string {
	limit := len([]rune(target))/3 + 1

	type match struct {
		name     string
		distance int
	}
	var matches []match
	for _, c := range candidates {
		d := Distance(strings.ToLower(target), strings.ToLower(c))
		if d <= limit {
			matches = append(matches, match{c, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, MaxSuggestions)
	for i := 0; i < len(matches) && i < MaxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// Distance is the Levenshtein distance between a and b in runes
func Distance(a, b string) int {
	s, t := []rune(a), []rune(b)
	prev := make([]int, len(t)+1)
	cur := make([]int, len(t)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s); i++ {
		cur[0] = i
		for j := 1; j <= len(t); j++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(t)]
}
