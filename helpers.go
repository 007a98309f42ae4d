package oursh

import (
	"strings"
)

// calculateFuzzyScore calculates a fuzzy matching score between input and candidate.
// Returns 0 if no match, higher scores for better matches.
// Supports case-insensitive matching when ignoreCase is true.
func calculateFuzzyScore(input, candidate string, ignoreCase bool) int {
	if input == "" {
		return 1
	}
	if candidate == "" {
		return 0
	}

	// Normalize case if requested
	searchInput := input
	searchCandidate := candidate
	if ignoreCase {
		searchInput = strings.ToLower(input)
		searchCandidate = strings.ToLower(candidate)
	}

	// Exact match gets highest score
	if searchInput == searchCandidate {
		return 1000
	}

	// Prefix match gets high score
	if strings.HasPrefix(searchCandidate, searchInput) {
		return 800 + len(searchInput)*10
	}

	// Contains match gets medium score
	if strings.Contains(searchCandidate, searchInput) {
		return 500 + len(searchInput)*5
	}

	// Character-by-character fuzzy matching; every input rune must be found
	// in order for the candidate to count.
	candidateRunes := []rune(searchCandidate)
	score := 0
	candidateIdx := 0
	for _, inputChar := range searchInput {
		found := false
		for candidateIdx < len(candidateRunes) {
			if candidateRunes[candidateIdx] == inputChar {
				score += 10
				candidateIdx++
				found = true
				break
			}
			candidateIdx++
		}
		if !found {
			return 0
		}
	}

	return score
}

// splitSearchPath splits a PATH-style list, dropping empty elements.
func splitSearchPath(list string, sep rune) []string {
	parts := strings.FieldsFunc(list, func(r rune) bool { return r == sep })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
