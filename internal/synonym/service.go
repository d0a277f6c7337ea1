// Package synonym suggests non-offensive alternatives for flagged
// words, caching AI suggestions in the store keyed by normalized word.
package synonym

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

// GetSuggestions returns stored alternatives for the word, asking the
// AI backend and persisting its answer on a miss. Backend failure
// yields an empty list, never an error.
func (s *Service) GetSuggestions(ctx context.Context, word, contextText string) ([]string, error) {
	if strings.TrimSpace(word) == "" {
		return nil, nil
	}

	existing, err := s.store.GetSynonym(ctx, word)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if existing != nil && len(existing.Suggestions) > 0 {
		return existing.Suggestions, nil
	}

	aiResult := s.ai.SuggestAlternatives(ctx, word, contextText)
	if aiResult.Status != classifier.StatusParsed || len(aiResult.Suggestions) == 0 {
		s.logger.Warn("synonym suggestion degraded",
			zap.String("word", word),
			zap.String("status", aiResult.Status.String()),
			zap.String("diagnostic", aiResult.Diagnostic))
		return nil, nil
	}

	if err := s.store.UpsertSynonym(ctx, &models.Synonym{
		Word:                 word,
		Suggestions:          aiResult.Suggestions,
		AppropriatenessScore: int(aiResult.AppropriatenessScore),
	}); err != nil {
		// Suggestions are still valid without the cache write.
		s.logger.Error("failed to persist synonyms", zap.String("word", word), zap.Error(err))
	}

	return aiResult.Suggestions, nil
}

// GetSynonym returns the stored record for a word, or a minimal record
// when none exists.
func (s *Service) GetSynonym(ctx context.Context, word string) (*models.Synonym, error) {
	syn, err := s.store.GetSynonym(ctx, word)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.Synonym{Word: models.NormalizeWord(word), AppropriatenessScore: 50}, nil
	}
	return syn, err
}

// ListSynonyms returns every stored synonym record.
func (s *Service) ListSynonyms(ctx context.Context) ([]models.Synonym, error) {
	return s.store.ListSynonyms(ctx)
}
