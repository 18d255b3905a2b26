// Package relevance computes relevance scores for candidate files and search
// matches. Scoring is pure and deterministic; the weights are heuristic
// tuning knobs, not load-bearing invariants.
package relevance

import "strings"

// Weights holds the tunable scoring constants
type Weights struct {
	// Candidate-pool weights for related-file selection
	OpenTab        float64
	Import         float64
	Sibling        float64
	NameSimilarity float64

	// Search match scoring
	Base               float64
	ExactMatch         float64
	FilenameMatch      float64
	DeclarationKeyword float64
	// LengthPenalty is subtracted per matched character beyond the query
	// length, so shorter, more specific matches rank higher
	LengthPenalty float64
}

// DefaultWeights returns the default scoring weights
func DefaultWeights() Weights {
	return Weights{
		OpenTab:        0.8,
		Import:         0.7,
		Sibling:        0.6,
		NameSimilarity: 0.4,

		Base:               0.3,
		ExactMatch:         0.3,
		FilenameMatch:      0.2,
		DeclarationKeyword: 0.15,
		LengthPenalty:      0.005,
	}
}

// declarationKeywords are keywords whose presence on a matched line signals a
// definition rather than a use
var declarationKeywords = []string{
	"func ", "function ", "def ", "class ", "interface ", "struct ",
	"type ", "const ", "var ", "let ", "enum ",
}

// ScoreMatch scores one search match. The score grows for an exact
// case-insensitive match of the whole query, for a filename containing the
// query, and for declaration keywords on the line; it shrinks as the matched
// text grows past the query length. The result is clamped to [0, 1].
func ScoreMatch(w Weights, query, fileName, lineText, matchText string) float64 {
	score := w.Base

	if strings.EqualFold(strings.TrimSpace(matchText), strings.TrimSpace(query)) {
		score += w.ExactMatch
	}

	if query != "" && strings.Contains(strings.ToLower(fileName), strings.ToLower(query)) {
		score += w.FilenameMatch
	}

	if HasDeclarationKeyword(lineText) {
		score += w.DeclarationKeyword
	}

	if excess := len(matchText) - len(query); excess > 0 {
		score -= w.LengthPenalty * float64(excess)
	}

	return clamp(score)
}

// HasDeclarationKeyword reports whether the line contains a declaration-like
// keyword
func HasDeclarationKeyword(lineText string) bool {
	lower := strings.ToLower(lineText)
	for _, kw := range declarationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
