// Package sentiment scores texts for tone, toxicity and
// professionalism, caching results by exact text match.
package sentiment

import (
	"context"
	"errors"
	"strings"

	"github.com/textsafe/textsafe/internal/classifier"
	"github.com/textsafe/textsafe/internal/models"
	"github.com/textsafe/textsafe/internal/storage"
	"go.uber.org/zap"
)

type Service struct {
	store  storage.Storage
	ai     *classifier.Client
	logger *zap.Logger
}

func New(store storage.Storage, ai *classifier.Client, logger *zap.Logger) *Service {
	return &Service{store: store, ai: ai, logger: logger}
}

// AnalyzeSentiment returns the stored analysis for an exact text match,
// or asks the AI backend and persists the result. The AI result is
// returned even when persistence fails.
func (s *Service) AnalyzeSentiment(ctx context.Context, text string) (*models.SentimentAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return &models.SentimentAnalysis{
			Text:                 text,
			Sentiment:            models.SentimentNeutral,
			AppropriatenessScore: 50,
			ToxicityScore:        0,
			ProfessionalismScore: 50,
			Review:               "Text is empty or contains only whitespace.",
		}, nil
	}

	existing, err := s.store.GetSentimentByText(ctx, text)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		// Lookup failure is not fatal; fall through to fresh analysis.
		s.logger.Warn("sentiment lookup failed", zap.Error(err))
	}
	if existing != nil {
		return existing, nil
	}

	aiResult := s.ai.AnalyzeSentiment(ctx, text)
	analysis := &models.SentimentAnalysis{
		Text:                 text,
		Sentiment:            models.ParseSentiment(aiResult.Sentiment),
		AppropriatenessScore: aiResult.AppropriatenessScore,
		ToxicityScore:        aiResult.ToxicityScore,
		ProfessionalismScore: aiResult.ProfessionalismScore,
		Review:               aiResult.Review,
		AIGenerated:          aiResult.Status == classifier.StatusParsed,
	}

	if aiResult.Status == classifier.StatusParsed {
		if err := s.store.CreateSentiment(ctx, analysis); err != nil {
			s.logger.Error("failed to persist sentiment analysis", zap.Error(err))
		}
	} else {
		s.logger.Warn("sentiment analysis degraded",
			zap.String("status", aiResult.Status.String()),
			zap.String("diagnostic", aiResult.Diagnostic))
	}

	return analysis, nil
}

// GetRecentAnalyses returns the most recent stored analyses.
func (s *Service) GetRecentAnalyses(ctx context.Context, limit int) ([]models.SentimentAnalysis, error) {
	return s.store.ListRecentSentiments(ctx, limit)
}
