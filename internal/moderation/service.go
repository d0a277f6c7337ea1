// Package moderation runs the end-to-end detection pipeline: lexical
// scan and AI classification in parallel, merge, category resolution,
// and idempotent persistence of everything learned along the way.
package moderation

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/textsafe/textsafe/internal/classifier"
	"github.com/textsafe/textsafe/internal/models"
	"github.com/textsafe/textsafe/internal/report"
	"github.com/textsafe/textsafe/internal/scanner"
	"github.com/textsafe/textsafe/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CategoryResolver is the slice of the category service the pipeline
// needs.
type CategoryResolver interface {
	Resolve(ctx context.Context, flagged models.FlaggedWord, contextText string) (*models.WordCategoryResult, error)
}

// Service is the text-check pipeline.
type Service struct {
	store    storage.Storage
	scanner  *scanner.Scanner
	ai       *classifier.Client
	resolver CategoryResolver
	reporter *report.Service
	logger   *zap.Logger
}

func New(store storage.Storage, sc *scanner.Scanner, ai *classifier.Client, resolver CategoryResolver, reporter *report.Service, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		scanner:  sc,
		ai:       ai,
		resolver: resolver,
		reporter: reporter,
		logger:   logger,
	}
}

// CheckText scans the text against the lexicon and the AI classifier
// concurrently, merges the results, and resolves a category for every
// flagged word. Backend and per-word persistence failures degrade and
// never abort the check.
func (s *Service) CheckText(ctx context.Context, text string) ([]models.FlaggedWord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	scanID := uuid.New().String()

	lexicon, err := s.store.ListFlaggedWords(ctx)
	if err != nil {
		return nil, err
	}

	var (
		lexical  []models.FlaggedWord
		aiResult classifier.Result
	)
	// The lexical scan is local and cheap; the classification call
	// suspends on the network. Run both legs and wait for both.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexical = s.scanner.Scan(text, lexicon)
		return nil
	})
	g.Go(func() error {
		aiResult = s.ai.AnalyzeText(gctx, text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if aiResult.Status != classifier.StatusParsed {
		s.logger.Warn("AI classification degraded",
			zap.String("scan_id", scanID),
			zap.String("status", aiResult.Status.String()),
			zap.String("diagnostic", aiResult.Diagnostic))
	}

	merged := MergeResults(lexical, aiResult)
	s.logger.Info("text checked",
		zap.String("scan_id", scanID),
		zap.Int("lexical_matches", len(lexical)),
		zap.Int("ai_findings", len(aiResult.Findings)),
		zap.Int("total_flagged", len(merged)))

	s.enrich(ctx, scanID, merged, text)
	return merged, nil
}

// enrich resolves categories and records report entries for each
// flagged word. Failures are logged per word and skipped; the detection
// data itself is already final.
func (s *Service) enrich(ctx context.Context, scanID string, flagged []models.FlaggedWord, text string) {
	for i := range flagged {
		word := &flagged[i]

		result, err := s.resolver.Resolve(ctx, *word, text)
		if err != nil {
			s.logger.Error("failed to resolve category",
				zap.String("scan_id", scanID),
				zap.String("word", word.Word),
				zap.Error(err))
		} else {
			word.Category = result.Category
			word.Confidence = result.Confidence
		}

		if s.reporter != nil {
			if err := s.reporter.LogEntry(ctx, &models.ReportEntry{
				Word:     word.Word,
				Category: word.Category,
				Context:  text,
				Severity: word.Severity,
			}); err != nil {
				s.logger.Error("failed to log report entry",
					zap.String("scan_id", scanID),
					zap.String("word", word.Word),
					zap.Error(err))
			}
		}
	}
}

// AddWord registers a known offensive term in the lexicon.
func (s *Service) AddWord(ctx context.Context, word string, severity int, contextDependent bool) (*models.FlaggedWord, error) {
	if severity == 0 {
		severity = 1
	}
	entry := models.FlaggedWord{
		Word:             word,
		Severity:         severity,
		ContextDependent: contextDependent,
		AIDetectable:     true,
	}
	if err := s.store.AddFlaggedWord(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListWords returns the full lexicon.
func (s *Service) ListWords(ctx context.Context) ([]models.FlaggedWord, error) {
	return s.store.ListFlaggedWords(ctx)
}

// GetWord returns lexicon metadata for a word. Unknown words yield a
// minimal record rather than an error.
func (s *Service) GetWord(ctx context.Context, word string) (*models.FlaggedWord, error) {
	w, err := s.store.GetFlaggedWord(ctx, word)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.FlaggedWord{Word: word}, nil
	}
	return w, err
}
