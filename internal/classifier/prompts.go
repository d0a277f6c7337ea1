package classifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/textsafe/textsafe/internal/models"
)

func profanityPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following text for any profane, offensive, or inappropriate words or phrases:
"%s"

Respond with JSON in the following format:
{
  "containsProfanity": boolean,
  "flaggedWords": [
    {
      "word": "word or phrase that was flagged",
      "explanation": "brief explanation of why this is considered profane",
      "severity": number (1-5, where 1 is mild and 5 is most severe)
    }
  ]
}

For severity ratings:
- 1: Mild words that may be inappropriate in formal settings
- 2: Moderately inappropriate language
- 3: Offensive but common language
- 4: Highly offensive terms
- 5: Extremely offensive, slurs, hate speech

If no profanity is detected, return an empty array for flaggedWords.`, text)
}

func categoryPrompt(word, context string) string {
	contextLine := ""
	if context != "" {
		contextLine = fmt.Sprintf("Context: %q\n", context)
	}
	return fmt.Sprintf(`Categorize the following potentially offensive word or phrase: %q

If context is provided, use it to better understand the usage.
%s
Choose from these categories:
1. racial - Content that discriminates based on race or ethnicity
2. sexual - Sexually explicit or inappropriate content
3. abusive - Content that is abusive, threatening or harassing
4. mild - Mildly inappropriate language
5. none - Not offensive at all

Respond with JSON in the following format:
{
  "category": "category_name",
  "confidence": number (0-100, where 100 is complete confidence),
  "explanation": "brief explanation of why this category was chosen"
}`, word, contextLine)
}

func synonymPrompt(word, context string) string {
	contextLine := ""
	if context != "" {
		contextLine = fmt.Sprintf("Context: %q\n", context)
	}
	return fmt.Sprintf(`Suggest 5 appropriate non-offensive alternatives for the potentially offensive word or phrase: %q

If context is provided, make sure the suggestions fit within that context.
%s
Respond with JSON in the following format:
{
  "suggestions": ["alternative1", "alternative2", "alternative3", "alternative4", "alternative5"],
  "appropriatenessScore": number (0-100, where 0 is least appropriate and 100 is most appropriate)
}

The appropriatenessScore should reflect how appropriate the original word is:
- Score 0-20: Highly inappropriate/offensive terms
- Score 21-40: Moderately inappropriate terms
- Score 41-60: Slightly inappropriate or context-dependent terms
- Score 61-80: Generally appropriate terms with rare exceptions
- Score 81-100: Completely appropriate terms`, word, contextLine)
}

const sentimentMaxChars = 500

func sentimentPrompt(text string) string {
	// Bound prompt size; long inputs burn tokens without improving scores.
	if len(text) > sentimentMaxChars {
		text = text[:sentimentMaxChars-3] + "..."
	}
	return fmt.Sprintf(`Analyze the following text and provide a JSON response with these properties:
- sentiment: "positive", "negative", or "neutral"
- appropriatenessScore: a number between 0 and 100 where 100 is most appropriate
- toxicityScore: a number between 0 and 100 where 100 is most toxic
- professionalismScore: a number between 0 and 100 where 100 is most professional
- review: a brief analysis explaining these scores

Evaluate the text for appropriateness, toxicity, and professionalism. Consider factors like:
- Offensive language or hate speech (reduces appropriateness, increases toxicity)
- Formal vs. informal language (affects professionalism)
- Tone and emotion expressed (affects sentiment)
- Context suitability

TEXT TO ANALYZE: %q

RESPONSE JSON:`, text)
}

func reportPrompt(entries []models.ReportEntry, start, end time.Time) string {
	breakdown := make(map[string]int)
	for _, e := range entries {
		if e.Category != "" {
			breakdown[e.Category]++
		}
	}
	var breakdownLines []string
	for category, count := range breakdown {
		breakdownLines = append(breakdownLines, fmt.Sprintf("%s: %d occurrences", category, count))
	}

	top := entries
	if len(top) > 10 {
		top = top[:10]
	}
	topWords := make([]string, 0, len(top))
	for _, e := range top {
		category := e.Category
		if category == "" {
			category = "uncategorized"
		}
		topWords = append(topWords, fmt.Sprintf("%q (%s)", e.Word, category))
	}

	return fmt.Sprintf(`Generate a professional summary and insights for a profanity detection report with the following data:

Time period: %s to %s
Total flagged words: %d

Category breakdown:
%s

Top flagged words:
%s

Respond with JSON in the following format:
{
  "summary": "A concise 2-3 sentence summary of the report findings",
  "insights": [
    "Key insight 1 about trends or patterns",
    "Key insight 2 about trends or patterns",
    "Key insight 3 about recommendations"
  ],
  "riskAssessment": "Low/Medium/High risk assessment based on the data"
}`,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		len(entries),
		strings.Join(breakdownLines, "\n"),
		strings.Join(topWords, ", "))
}
