package models

import (
	"strings"
	"time"
)

// FlaggedWord is a term identified as offensive, either by a direct
// lexicon match or by the AI classifier.
type FlaggedWord struct {
	Word             string  `json:"word"`
	Severity         int     `json:"severity"`
	ContextDependent bool    `json:"context_dependent"`
	AIDetectable     bool    `json:"ai_detectable"`
	Explanation      string  `json:"explanation,omitempty"`
	Category         string  `json:"category,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
}

// Category groups flagged words by the kind of offense.
// Names are unique and stored lowercase.
type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	SeverityLevel int       `json:"severity_level"`
	CreatedAt     time.Time `json:"created_at"`
}

// WordCategory associates a normalized word with a category.
// At most one live association exists per word.
type WordCategory struct {
	ID          int64     `json:"id"`
	Word        string    `json:"word"`
	CategoryID  int64     `json:"category_id"`
	Confidence  float64   `json:"confidence"`
	AIGenerated bool      `json:"ai_generated"`
	LastUpdated time.Time `json:"last_updated"`
}

// WordCategoryResult is the resolved categorization for a single word.
type WordCategoryResult struct {
	Word          string  `json:"word"`
	Category      string  `json:"category"`
	Description   string  `json:"description,omitempty"`
	SeverityLevel int     `json:"severity_level"`
	Confidence    float64 `json:"confidence"`
	Explanation   string  `json:"explanation,omitempty"`
	AIGenerated   bool    `json:"ai_generated"`
}

// Synonym holds stored alternative suggestions for a word.
type Synonym struct {
	ID                   int64     `json:"id"`
	Word                 string    `json:"word"`
	Suggestions          []string  `json:"suggestions"`
	AppropriatenessScore int       `json:"appropriateness_score"`
	LastUpdated          time.Time `json:"last_updated"`
}

// Sentiment is the overall tone of a text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SentimentAnalysis is a cached AI evaluation of one exact text.
type SentimentAnalysis struct {
	ID                   int64     `json:"id"`
	Text                 string    `json:"text"`
	Sentiment            Sentiment `json:"sentiment"`
	AppropriatenessScore float64   `json:"appropriateness_score"`
	ToxicityScore        float64   `json:"toxicity_score"`
	ProfessionalismScore float64   `json:"professionalism_score"`
	Review               string    `json:"review,omitempty"`
	AIGenerated          bool      `json:"ai_generated"`
	AnalysisDate         time.Time `json:"analysis_date"`
}

// RiskLevel is the coarse risk verdict attached to a report.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

// ReportEntry records one flagged occurrence for later aggregation.
type ReportEntry struct {
	ID        int64     `json:"id"`
	Word      string    `json:"word"`
	Category  string    `json:"category,omitempty"`
	Context   string    `json:"context,omitempty"`
	Severity  int       `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	ReportID  int64     `json:"report_id,omitempty"`
}

// Report is an immutable aggregation over report entries in a date range.
type Report struct {
	ID                int64          `json:"id"`
	Title             string         `json:"title"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	Summary           string         `json:"summary"`
	Insights          []string       `json:"insights"`
	RiskAssessment    RiskLevel      `json:"risk_assessment"`
	TotalFlagged      int            `json:"total_flagged"`
	CategoryBreakdown map[string]int `json:"category_breakdown"`
	Entries           []ReportEntry  `json:"entries,omitempty"`
	AIGenerated       bool           `json:"ai_generated"`
	CreatedAt         time.Time      `json:"created_at"`
}

// NormalizeWord lowercases and trims a word for unique-key storage.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// ClampSeverity forces a severity onto the 1..5 ordinal scale. Values
// outside the range are clamped rather than rejected.
func ClampSeverity(severity int) int {
	if severity < 1 {
		return 1
	}
	if severity > 5 {
		return 5
	}
	return severity
}

// ClampScore forces a score or confidence onto the 0..100 scale.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ParseRiskLevel maps free-form AI output onto a known risk level.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow
	case "medium":
		return RiskMedium
	case "high":
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// ParseSentiment maps free-form AI output onto a known sentiment,
// defaulting to neutral.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
