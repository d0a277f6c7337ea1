// Package classifier wraps the generative backend behind typed,
// failure-tolerant classification calls. Transport errors, throttling
// and malformed responses never propagate as errors: every result
// carries a parse status and diagnostic instead.
package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/textsafe/textsafe/internal/models"
	"github.com/textsafe/textsafe/internal/proxy"
	"go.uber.org/zap"
)

// Status tags how a backend response was obtained and parsed, so
// downstream code switches on it instead of null-checking.
type Status int

const (
	// StatusParsed means a structured payload was extracted and decoded.
	StatusParsed Status = iota
	// StatusMalformed means the backend answered but no valid payload
	// could be extracted from the text.
	StatusMalformed
	// StatusUnavailable means the backend call itself failed.
	StatusUnavailable
	// StatusThrottled means the proxy rejected the call before it was
	// issued. Retryable; distinct from backend failure.
	StatusThrottled
)

func (s Status) String() string {
	switch s {
	case StatusParsed:
		return "parsed"
	case StatusMalformed:
		return "malformed"
	case StatusUnavailable:
		return "unavailable"
	case StatusThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// Finding is one AI-flagged word.
type Finding struct {
	Word        string `json:"word"`
	Explanation string `json:"explanation"`
	Severity    int    `json:"severity"`
}

// Result is the outcome of a profanity analysis.
type Result struct {
	ContainsProfanity bool
	Findings          []Finding
	Status            Status
	Diagnostic        string
	Raw               string
}

// CategoryResult is the outcome of a single-word categorization.
type CategoryResult struct {
	Category    string
	Confidence  float64
	Explanation string
	Status      Status
	Diagnostic  string
}

// SynonymResult is the outcome of an alternative-term suggestion call.
type SynonymResult struct {
	Suggestions          []string
	AppropriatenessScore float64
	Status               Status
	Diagnostic           string
}

// SentimentResult is the outcome of a sentiment analysis call.
type SentimentResult struct {
	Sentiment            string
	AppropriatenessScore float64
	ToxicityScore        float64
	ProfessionalismScore float64
	Review               string
	Status               Status
	Diagnostic           string
}

// ReportSummary is the outcome of a report summarization call.
type ReportSummary struct {
	Summary        string
	Insights       []string
	RiskAssessment string
	Status         Status
	Diagnostic     string
}

// Client issues classification calls through the caching proxy.
type Client struct {
	backend Backend
	proxy   *proxy.Proxy
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(backend Backend, p *proxy.Proxy, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		backend: backend,
		proxy:   p,
		timeout: timeout,
		logger:  logger,
	}
}

// cacheKey derives a stable proxy key from the call mode and input.
func cacheKey(mode, input string) string {
	sum := sha256.Sum256([]byte(mode + ":" + input))
	return mode + ":" + hex.EncodeToString(sum[:])
}

// generate runs one prompt through the proxy and backend. The returned
// status is StatusParsed only as a provisional "got text" marker; the
// caller downgrades it to StatusMalformed when extraction fails.
func (c *Client) generate(ctx context.Context, key, prompt string) (string, Status, string) {
	if c.backend == nil {
		return "", StatusUnavailable, "classification backend is not configured"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := func(ctx context.Context) (string, error) {
		return c.backend.Generate(ctx, prompt)
	}

	var (
		text string
		err  error
	)
	if c.proxy != nil {
		var resp proxy.Response
		resp, err = c.proxy.Invoke(ctx, key, call)
		text = resp.Text
	} else {
		text, err = call(ctx)
	}

	if errors.Is(err, proxy.ErrRateLimited) {
		return "", StatusThrottled, err.Error()
	}
	if err != nil {
		c.logger.Warn("classification backend call failed", zap.Error(err))
		return "", StatusUnavailable, err.Error()
	}
	return text, StatusParsed, ""
}

// decode extracts and unmarshals the first balanced JSON object in raw.
func decode(raw string, out any) bool {
	payload, ok := extractJSONObject(raw)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(payload), out) == nil
}

// normalizeSeverity applies the AI severity default: anything missing or
// outside [1,5] becomes 2.
func normalizeSeverity(severity int) int {
	if severity < 1 || severity > 5 {
		return 2
	}
	return severity
}

// AnalyzeText asks the backend to flag offensive terms in the text.
func (c *Client) AnalyzeText(ctx context.Context, text string) Result {
	raw, status, diag := c.generate(ctx, cacheKey("check", text), profanityPrompt(text))
	if status != StatusParsed {
		return Result{Status: status, Diagnostic: diag}
	}

	var payload struct {
		ContainsProfanity bool      `json:"containsProfanity"`
		FlaggedWords      []Finding `json:"flaggedWords"`
	}
	if !decode(raw, &payload) {
		c.logger.Warn("malformed profanity response", zap.String("raw", raw))
		return Result{
			Status:     StatusMalformed,
			Diagnostic: "failed to parse AI response",
			Raw:        raw,
		}
	}

	for i := range payload.FlaggedWords {
		payload.FlaggedWords[i].Severity = normalizeSeverity(payload.FlaggedWords[i].Severity)
	}
	return Result{
		ContainsProfanity: payload.ContainsProfanity,
		Findings:          payload.FlaggedWords,
		Status:            StatusParsed,
		Raw:               raw,
	}
}

// CategorizeWord asks the backend for a category assignment. The word
// and optional usage context feed the prompt; the cache key covers both.
func (c *Client) CategorizeWord(ctx context.Context, word, contextText string) CategoryResult {
	raw, status, diag := c.generate(ctx, cacheKey("category", word+"|"+contextText), categoryPrompt(word, contextText))
	if status != StatusParsed {
		return CategoryResult{Status: status, Diagnostic: diag}
	}

	var payload struct {
		Category    string  `json:"category"`
		Confidence  float64 `json:"confidence"`
		Explanation string  `json:"explanation"`
	}
	if !decode(raw, &payload) {
		c.logger.Warn("malformed category response", zap.String("word", word), zap.String("raw", raw))
		return CategoryResult{Status: StatusMalformed, Diagnostic: "failed to parse AI response"}
	}

	return CategoryResult{
		Category:    models.NormalizeWord(payload.Category),
		Confidence:  models.ClampScore(payload.Confidence),
		Explanation: payload.Explanation,
		Status:      StatusParsed,
	}
}

// SuggestAlternatives asks the backend for non-offensive replacements.
func (c *Client) SuggestAlternatives(ctx context.Context, word, contextText string) SynonymResult {
	raw, status, diag := c.generate(ctx, cacheKey("synonym", word+"|"+contextText), synonymPrompt(word, contextText))
	if status != StatusParsed {
		return SynonymResult{Status: status, Diagnostic: diag, AppropriatenessScore: 50}
	}

	var payload struct {
		Suggestions          []string `json:"suggestions"`
		AppropriatenessScore *float64 `json:"appropriatenessScore"`
	}
	if !decode(raw, &payload) {
		c.logger.Warn("malformed synonym response", zap.String("word", word), zap.String("raw", raw))
		return SynonymResult{
			Status:               StatusMalformed,
			Diagnostic:           "failed to parse AI response",
			AppropriatenessScore: 50,
		}
	}

	score := 50.0
	if payload.AppropriatenessScore != nil {
		score = models.ClampScore(*payload.AppropriatenessScore)
	}
	return SynonymResult{
		Suggestions:          payload.Suggestions,
		AppropriatenessScore: score,
		Status:               StatusParsed,
	}
}

// AnalyzeSentiment asks the backend to score tone, toxicity and
// professionalism for the text.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) SentimentResult {
	neutral := SentimentResult{
		Sentiment:            string(models.SentimentNeutral),
		AppropriatenessScore: 50,
		ToxicityScore:        0,
		ProfessionalismScore: 50,
	}

	raw, status, diag := c.generate(ctx, cacheKey("sentiment", text), sentimentPrompt(text))
	if status != StatusParsed {
		neutral.Status = status
		neutral.Diagnostic = diag
		neutral.Review = "An error occurred during analysis."
		return neutral
	}

	var payload struct {
		Sentiment            string  `json:"sentiment"`
		AppropriatenessScore float64 `json:"appropriatenessScore"`
		ToxicityScore        float64 `json:"toxicityScore"`
		ProfessionalismScore float64 `json:"professionalismScore"`
		Review               string  `json:"review"`
	}
	if !decode(raw, &payload) {
		c.logger.Warn("malformed sentiment response", zap.String("raw", raw))
		neutral.Status = StatusMalformed
		neutral.Diagnostic = "failed to parse AI response"
		neutral.Review = "Unable to analyze the text content."
		return neutral
	}

	return SentimentResult{
		Sentiment:            string(models.ParseSentiment(payload.Sentiment)),
		AppropriatenessScore: models.ClampScore(payload.AppropriatenessScore),
		ToxicityScore:        models.ClampScore(payload.ToxicityScore),
		ProfessionalismScore: models.ClampScore(payload.ProfessionalismScore),
		Review:               payload.Review,
		Status:               StatusParsed,
	}
}

// SummarizeReport asks the backend for a narrative summary of flagged
// occurrences in a date range. Report prompts are not cached: the same
// range can legitimately produce different entry sets over time.
func (c *Client) SummarizeReport(ctx context.Context, entries []models.ReportEntry, start, end time.Time) ReportSummary {
	if len(entries) == 0 {
		return ReportSummary{
			Summary: "No profanity detected during this period.",
			Status:  StatusParsed,
		}
	}

	raw, status, diag := c.generate(ctx, "", reportPrompt(entries, start, end))
	if status != StatusParsed {
		return ReportSummary{Status: status, Diagnostic: diag, RiskAssessment: string(models.RiskUnknown)}
	}

	var payload struct {
		Summary        string   `json:"summary"`
		Insights       []string `json:"insights"`
		RiskAssessment string   `json:"riskAssessment"`
	}
	if !decode(raw, &payload) {
		c.logger.Warn("malformed report summary response", zap.String("raw", raw))
		return ReportSummary{
			Status:         StatusMalformed,
			Diagnostic:     "failed to parse AI response",
			RiskAssessment: string(models.RiskUnknown),
		}
	}

	return ReportSummary{
		Summary:        payload.Summary,
		Insights:       payload.Insights,
		RiskAssessment: payload.RiskAssessment,
		Status:         StatusParsed,
	}
}
