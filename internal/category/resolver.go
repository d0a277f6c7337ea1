// Package category resolves flagged words to categories: stored
// associations first, then AI categorization, then a deterministic
// severity-derived fallback that creates the category on demand.
package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/textsafe/textsafe/internal/classifier"
	"github.com/textsafe/textsafe/internal/models"
	"github.com/textsafe/textsafe/internal/storage"
	"go.uber.org/zap"
)

// Confidence defaults differ by resolution path.
const (
	// aiDefaultConfidence is used when the classifier assigns a category
	// without reporting its own confidence.
	aiDefaultConfidence = 70
	// systemConfidence marks severity-derived assignments.
	systemConfidence = 80
	// explicitDefaultConfidence is used by SaveWordCategory when the
	// caller supplies none.
	explicitDefaultConfidence = 90
)

// derivedDescriptions are the fixed descriptions for severity-derived
// categories.
var derivedDescriptions = map[string]string{
	"racial":  "Content that discriminates based on race or ethnicity",
	"sexual":  "Sexually explicit or inappropriate content",
	"abusive": "Content that is abusive, threatening or harassing",
	"mild":    "Mildly inappropriate language",
}

// Resolver maps flagged words to categories and persists the results.
type Resolver struct {
	store  storage.Storage
	ai     *classifier.Client
	logger *zap.Logger
}

func NewResolver(store storage.Storage, ai *classifier.Client, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, ai: ai, logger: logger}
}

// DeriveCategoryName maps a severity onto a category name. The chain is
// ordered highest severity first; ties resolve to the first match.
func DeriveCategoryName(severity int) string {
	switch {
	case severity >= 5:
		return "racial"
	case severity >= 4:
		return "abusive"
	case severity >= 3:
		return "sexual"
	default:
		return "mild"
	}
}

// Resolve determines the category for one flagged word. A stored
// association is authoritative; otherwise AI categorization is tried,
// and failing that the category is derived from severity. Both fallback
// paths persist the association for reuse, and unknown words are added
// to the lexicon so future lexical scans catch them directly.
func (r *Resolver) Resolve(ctx context.Context, flagged models.FlaggedWord, contextText string) (*models.WordCategoryResult, error) {
	word := models.NormalizeWord(flagged.Word)
	if word == "" {
		return nil, errors.New("category: empty word")
	}

	if err := r.ensureLexicon(ctx, flagged); err != nil {
		// Lexicon learning is best effort; resolution continues.
		r.logger.Warn("failed to add word to lexicon", zap.String("word", word), zap.Error(err))
	}

	// 1. Stored association wins.
	if result, err := r.lookupStored(ctx, word); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	// 2. Context-aware AI categorization.
	if result, err := r.resolveViaAI(ctx, word, contextText); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	// 3. Deterministic severity-derived fallback.
	return r.resolveFromSeverity(ctx, word, flagged.Severity)
}

func (r *Resolver) lookupStored(ctx context.Context, word string) (*models.WordCategoryResult, error) {
	wc, err := r.store.GetWordCategory(ctx, word)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up word category: %w", err)
	}
	if wc.CategoryID == 0 {
		return nil, nil
	}

	cat, err := r.store.GetCategoryByID(ctx, wc.CategoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up category %d: %w", wc.CategoryID, err)
	}

	return &models.WordCategoryResult{
		Word:          word,
		Category:      cat.Name,
		Description:   cat.Description,
		SeverityLevel: cat.SeverityLevel,
		Confidence:    wc.Confidence,
		AIGenerated:   wc.AIGenerated,
	}, nil
}

func (r *Resolver) resolveViaAI(ctx context.Context, word, contextText string) (*models.WordCategoryResult, error) {
	if r.ai == nil {
		return nil, nil
	}

	aiResult := r.ai.CategorizeWord(ctx, word, contextText)
	if aiResult.Status != classifier.StatusParsed || aiResult.Category == "" || aiResult.Category == "none" {
		return nil, nil
	}

	cat, err := r.store.GetCategoryByName(ctx, aiResult.Category)
	if errors.Is(err, storage.ErrNotFound) {
		// The classifier invented a category outside the taxonomy; fall
		// through to the severity-derived path.
		r.logger.Info("AI returned unknown category",
			zap.String("word", word),
			zap.String("category", aiResult.Category))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up AI category: %w", err)
	}

	confidence := aiResult.Confidence
	if confidence == 0 {
		confidence = aiDefaultConfidence
	}
	if err := r.store.UpsertWordCategory(ctx, &models.WordCategory{
		Word:        word,
		CategoryID:  cat.ID,
		Confidence:  confidence,
		AIGenerated: true,
	}); err != nil {
		return nil, fmt.Errorf("saving AI word category: %w", err)
	}

	return &models.WordCategoryResult{
		Word:          word,
		Category:      cat.Name,
		Description:   cat.Description,
		SeverityLevel: cat.SeverityLevel,
		Confidence:    confidence,
		Explanation:   aiResult.Explanation,
		AIGenerated:   true,
	}, nil
}

func (r *Resolver) resolveFromSeverity(ctx context.Context, word string, severity int) (*models.WordCategoryResult, error) {
	name := DeriveCategoryName(severity)
	cat, err := r.store.CreateCategory(ctx, &models.Category{
		Name:          name,
		Description:   derivedDescriptions[name],
		SeverityLevel: models.ClampSeverity(severity),
	})
	if err != nil {
		return nil, fmt.Errorf("creating derived category %q: %w", name, err)
	}

	if err := r.store.UpsertWordCategory(ctx, &models.WordCategory{
		Word:        word,
		CategoryID:  cat.ID,
		Confidence:  systemConfidence,
		AIGenerated: false,
	}); err != nil {
		return nil, fmt.Errorf("saving derived word category: %w", err)
	}

	r.logger.Info("categorized word by severity",
		zap.String("word", word),
		zap.String("category", cat.Name),
		zap.Int("severity", severity))

	return &models.WordCategoryResult{
		Word:          word,
		Category:      cat.Name,
		Description:   cat.Description,
		SeverityLevel: cat.SeverityLevel,
		Confidence:    systemConfidence,
		AIGenerated:   false,
	}, nil
}

func (r *Resolver) ensureLexicon(ctx context.Context, flagged models.FlaggedWord) error {
	_, err := r.store.GetFlaggedWord(ctx, flagged.Word)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	severity := flagged.Severity
	if severity == 0 {
		severity = 2
	}
	entry := models.FlaggedWord{
		Word:             flagged.Word,
		Severity:         severity,
		ContextDependent: flagged.ContextDependent,
		AIDetectable:     flagged.AIDetectable,
	}
	if err := r.store.AddFlaggedWord(ctx, &entry); err != nil {
		return err
	}
	r.logger.Info("added new flagged word to lexicon", zap.String("word", models.NormalizeWord(flagged.Word)))
	return nil
}

// CreateCategory creates (or fetches) a category by unique name.
func (r *Resolver) CreateCategory(ctx context.Context, name, description string, severityLevel int) (*models.Category, error) {
	if models.NormalizeWord(name) == "" {
		return nil, errors.New("category: empty name")
	}
	if severityLevel == 0 {
		severityLevel = 1
	}
	return r.store.CreateCategory(ctx, &models.Category{
		Name:          name,
		Description:   description,
		SeverityLevel: severityLevel,
	})
}

// ListCategories returns every category.
func (r *Resolver) ListCategories(ctx context.Context) ([]models.Category, error) {
	return r.store.ListCategories(ctx)
}

// SaveWordCategory explicitly associates a word with a category.
func (r *Resolver) SaveWordCategory(ctx context.Context, word string, categoryID int64, confidence float64) (*models.WordCategoryResult, error) {
	cat, err := r.store.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("looking up category %d: %w", categoryID, err)
	}

	if confidence == 0 {
		confidence = explicitDefaultConfidence
	}
	wc := &models.WordCategory{
		Word:        word,
		CategoryID:  categoryID,
		Confidence:  confidence,
		AIGenerated: false,
	}
	if err := r.store.UpsertWordCategory(ctx, wc); err != nil {
		return nil, err
	}

	return &models.WordCategoryResult{
		Word:          models.NormalizeWord(word),
		Category:      cat.Name,
		Description:   cat.Description,
		SeverityLevel: cat.SeverityLevel,
		Confidence:    wc.Confidence,
		AIGenerated:   false,
	}, nil
}
