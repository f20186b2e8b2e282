// Package scoring provides the string similarity measures used to grade
// free-text answers.
package scoring

import "strings"

// Normalize lowercases s and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Distance returns the Levenshtein edit distance between a and b, counted in
// runes with a uniform cost of one per insertion, deletion or substitution.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	cols := len(ra) + 1

	// Two rows of the (|b|+1) x (|a|+1) table are enough.
	prev := make([]int, cols)
	curr := make([]int, cols)

	for j := 0; j < cols; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		curr[0] = i

		for j := 1; j < cols; j++ {
			cost := 1
			if rb[i-1] == ra[j-1] {
				cost = 0
			}

			curr[j] = min(
				curr[j-1]+1,    // insertion
				prev[j]+1,      // deletion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[cols-1]
}

// Similarity returns (maxLen - Distance(a, b)) / maxLen, where maxLen is the
// longer rune length. Two empty strings are fully similar.
func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	return float64(maxLen-Distance(a, b)) / float64(maxLen)
}

// MaxSimilarity returns the highest Similarity between s and any candidate,
// or 0 when there are no candidates.
func MaxSimilarity(s string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		if sim := Similarity(s, c); sim > best {
			best = sim
		}
	}
	return best
}
