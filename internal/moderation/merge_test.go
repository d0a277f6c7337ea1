package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/textsafe/textsafe/internal/classifier"
	"github.com/textsafe/textsafe/internal/models"
)

func TestMergeAppendsNewAIFindings(t *testing.T) {
	lexical := []models.FlaggedWord{
		{Word: "foo", Severity: 2},
	}
	ai := classifier.Result{
		ContainsProfanity: true,
		Findings: []classifier.Finding{
			{Word: "bar", Explanation: "insult", Severity: 3},
		},
		Status: classifier.StatusParsed,
	}

	merged := MergeResults(lexical, ai)
	assert.Len(t, merged, 2)
	assert.Equal(t, "foo", merged[0].Word)
	assert.Equal(t, "bar", merged[1].Word)
	assert.True(t, merged[1].ContextDependent)
	assert.True(t, merged[1].AIDetectable)
	assert.Equal(t, "insult", merged[1].Explanation)
}

func TestMergeSeverityOnlyIncreases(t *testing.T) {
	lexical := []models.FlaggedWord{
		{Word: "foo", Severity: 2},
		{Word: "bar", Severity: 4},
	}
	ai := classifier.Result{
		Findings: []classifier.Finding{
			{Word: "FOO", Severity: 4, Explanation: "worse in context"},
			{Word: "Bar", Severity: 1, Explanation: "milder here"},
		},
		Status: classifier.StatusParsed,
	}

	merged := MergeResults(lexical, ai)
	assert.Len(t, merged, 2)
	assert.Equal(t, 4, merged[0].Severity, "severity upgrades to the AI rating")
	assert.Equal(t, 4, merged[1].Severity, "severity never decreases")
	assert.Equal(t, "worse in context", merged[0].Explanation)
}

func TestMergeIsIdempotent(t *testing.T) {
	lexical := []models.FlaggedWord{
		{Word: "foo", Severity: 2},
	}
	ai := classifier.Result{
		Findings: []classifier.Finding{
			{Word: "foo", Severity: 4, Explanation: "x"},
			{Word: "baz", Severity: 3, Explanation: "y"},
		},
		Status: classifier.StatusParsed,
	}

	once := MergeResults(lexical, ai)
	twice := MergeResults(once, ai)
	assert.Equal(t, once, twice)
}

func TestMergeOrderingLexicalFirst(t *testing.T) {
	lexical := []models.FlaggedWord{
		{Word: "a", Severity: 1},
		{Word: "b", Severity: 1},
	}
	ai := classifier.Result{
		Findings: []classifier.Finding{
			{Word: "c", Severity: 2},
			{Word: "d", Severity: 2},
		},
		Status: classifier.StatusParsed,
	}

	merged := MergeResults(lexical, ai)
	words := make([]string, 0, len(merged))
	for _, w := range merged {
		words = append(words, w.Word)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, words)
}

func TestMergeWithEmptyAIResult(t *testing.T) {
	lexical := []models.FlaggedWord{{Word: "foo", Severity: 2}}
	merged := MergeResults(lexical, classifier.Result{Status: classifier.StatusUnavailable})
	assert.Equal(t, lexical, merged)
}
