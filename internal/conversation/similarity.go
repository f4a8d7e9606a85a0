package conversation

import (
	"strings"
	"unicode/utf8"
)

// DuplicateThreshold is the similarity at which two replies count as the same.
const DuplicateThreshold = 0.8

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
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
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity compares two strings after trimming and lowercasing, returning
// (maxLen - distance) / maxLen. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return float64(longest-Levenshtein(a, b)) / float64(longest)
}

// Dedupe keeps the first entry and then every entry whose similarity to all kept
// entries stays below threshold. Order is preserved.
func Dedupe(candidates []string, threshold float64) []string {
	kept := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if len(kept) > 0 && nearDuplicate(candidate, kept, threshold) {
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

func nearDuplicate(candidate string, kept []string, threshold float64) bool {
	for _, existing := range kept {
		if Similarity(candidate, existing) >= threshold {
			return true
		}
	}
	return false
}
