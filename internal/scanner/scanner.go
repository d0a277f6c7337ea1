// Package scanner implements the lexical first pass of the detection
// pipeline: a case-insensitive substring check of the input against
// every known term. Substring matching is deliberate low-precision,
// high-recall; the AI pass supplies the context awareness.
package scanner

import (
	"strings"

	"github.com/textsafe/textsafe/internal/models"
)

// Scanner matches text against a lexicon snapshot.
type Scanner struct{}

func New() *Scanner {
	return &Scanner{}
}

// Scan returns every lexicon term contained in the text, in lexicon
// order. It is pure and never fails; an empty lexicon yields an empty
// result.
func (s *Scanner) Scan(text string, lexicon []models.FlaggedWord) []models.FlaggedWord {
	if strings.TrimSpace(text) == "" || len(lexicon) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var matches []models.FlaggedWord
	for _, entry := range lexicon {
		word := strings.ToLower(entry.Word)
		if word == "" {
			continue
		}
		if strings.Contains(lower, word) {
			matches = append(matches, models.FlaggedWord{
				Word:             entry.Word,
				Severity:         entry.Severity,
				ContextDependent: entry.ContextDependent,
				AIDetectable:     entry.AIDetectable,
			})
		}
	}
	return matches
}
