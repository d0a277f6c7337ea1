package moderation

import (
	"strings"

	"github.com/textsafe/textsafe/internal/classifier"
	"github.com/textsafe/textsafe/internal/models"
)

// MergeResults unions lexical matches with AI findings. Lexical matches
// keep their lexicon order and come first; newly discovered AI matches
// follow in response order. Words are deduplicated case-insensitively;
// on overlap the AI explanation is attached and severity only ever
// increases. The merge is idempotent.
func MergeResults(lexical []models.FlaggedWord, ai classifier.Result) []models.FlaggedWord {
	merged := make([]models.FlaggedWord, len(lexical))
	copy(merged, lexical)

	for _, finding := range ai.Findings {
		idx := indexOfWord(merged, finding.Word)
		if idx < 0 {
			merged = append(merged, models.FlaggedWord{
				Word:             finding.Word,
				Severity:         finding.Severity,
				ContextDependent: true,
				AIDetectable:     true,
				Explanation:      finding.Explanation,
			})
			continue
		}

		existing := &merged[idx]
		existing.Explanation = finding.Explanation
		if finding.Severity > existing.Severity {
			existing.Severity = finding.Severity
		}
	}

	return merged
}

func indexOfWord(words []models.FlaggedWord, word string) int {
	for i := range words {
		if strings.EqualFold(words[i].Word, word) {
			return i
		}
	}
	return -1
}
