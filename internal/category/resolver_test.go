package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textsafe/textsafe/internal/classifier"
	"github.com/textsafe/textsafe/internal/models"
	"github.com/textsafe/textsafe/internal/storage"
	"go.uber.org/zap"
)

type stubBackend struct {
	response string
	err      error
}

func (s *stubBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func aiClient(b classifier.Backend) *classifier.Client {
	return classifier.NewClient(b, nil, time.Second, zap.NewNop())
}

func TestDeriveCategoryName(t *testing.T) {
	assert.Equal(t, "racial", DeriveCategoryName(5))
	assert.Equal(t, "racial", DeriveCategoryName(7))
	assert.Equal(t, "abusive", DeriveCategoryName(4))
	assert.Equal(t, "sexual", DeriveCategoryName(3))
	assert.Equal(t, "mild", DeriveCategoryName(2))
	assert.Equal(t, "mild", DeriveCategoryName(1))
	assert.Equal(t, "mild", DeriveCategoryName(0))
}

func TestResolveStoredAssociationWins(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	cat, err := store.CreateCategory(ctx, &models.Category{Name: "abusive", Description: "stored", SeverityLevel: 4})
	require.NoError(t, err)
	require.NoError(t, store.UpsertWordCategory(ctx, &models.WordCategory{
		Word:       "foo",
		CategoryID: cat.ID,
		Confidence: 95,
	}))

	// A working AI backend must not be consulted for stored words.
	r := NewResolver(store, aiClient(&stubBackend{response: `{"category":"sexual","confidence":99}`}), zap.NewNop())

	result, err := r.Resolve(ctx, models.FlaggedWord{Word: "foo", Severity: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, "abusive", result.Category)
	assert.Equal(t, 95.0, result.Confidence)
}

func TestResolveViaAI(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	_, err := store.CreateCategory(ctx, &models.Category{Name: "sexual", Description: "explicit", SeverityLevel: 4})
	require.NoError(t, err)

	r := NewResolver(store, aiClient(&stubBackend{response: `{"category":"sexual","confidence":85,"explanation":"explicit term"}`}), zap.NewNop())

	result, err := r.Resolve(ctx, models.FlaggedWord{Word: "foo", Severity: 2}, "some context")
	require.NoError(t, err)
	assert.Equal(t, "sexual", result.Category)
	assert.Equal(t, 85.0, result.Confidence)
	assert.True(t, result.AIGenerated)

	// The association is persisted for reuse.
	wc, err := store.GetWordCategory(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, 85.0, wc.Confidence)
	assert.True(t, wc.AIGenerated)
}

func TestResolveAIConfidenceDefault(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	_, err := store.CreateCategory(ctx, &models.Category{Name: "mild", SeverityLevel: 1})
	require.NoError(t, err)

	r := NewResolver(store, aiClient(&stubBackend{response: `{"category":"mild"}`}), zap.NewNop())

	result, err := r.Resolve(ctx, models.FlaggedWord{Word: "foo", Severity: 1}, "")
	require.NoError(t, err)
	assert.Equal(t, 70.0, result.Confidence)
}

func TestResolveUnknownAICategoryFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	r := NewResolver(store, aiClient(&stubBackend{response: `{"category":"blasphemy","confidence":90}`}), zap.NewNop())

	result, err := r.Resolve(ctx, models.FlaggedWord{Word: "foo", Severity: 4}, "")
	require.NoError(t, err)
	assert.Equal(t, "abusive", result.Category, "unknown taxonomy entries fall back to severity derivation")
	assert.Equal(t, 80.0, result.Confidence)
	assert.False(t, result.AIGenerated)
}

func TestResolveSeverityFallbackWithoutBackend(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	r := NewResolver(store, aiClient(&stubBackend{err: errors.New("unreachable")}), zap.NewNop())

	result, err := r.Resolve(ctx, models.FlaggedWord{Word: "bar", Severity: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, "mild", result.Category)
	assert.Equal(t, "Mildly inappropriate language", result.Description)
	assert.Equal(t, 80.0, result.Confidence)
	assert.False(t, result.AIGenerated)

	// Resolving again reuses the category instead of creating another.
	again, err := r.Resolve(ctx, models.FlaggedWord{Word: "baz", Severity: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, result.Category, again.Category)

	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestResolveAddsUnknownWordToLexicon(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	r := NewResolver(store, nil, zap.NewNop())

	_, err := r.Resolve(ctx, models.FlaggedWord{Word: "Bar", Severity: 3, ContextDependent: true, AIDetectable: true}, "")
	require.NoError(t, err)

	word, err := store.GetFlaggedWord(ctx, "bar")
	require.NoError(t, err)
	assert.Equal(t, 3, word.Severity)
	assert.True(t, word.ContextDependent)
}

func TestResolveLexiconDefaultSeverity(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	r := NewResolver(store, nil, zap.NewNop())

	_, err := r.Resolve(ctx, models.FlaggedWord{Word: "bar"}, "")
	require.NoError(t, err)

	word, err := store.GetFlaggedWord(ctx, "bar")
	require.NoError(t, err)
	assert.Equal(t, 2, word.Severity)
}

func TestResolveEmptyWord(t *testing.T) {
	r := NewResolver(storage.NewMemoryStorage(), nil, zap.NewNop())
	_, err := r.Resolve(context.Background(), models.FlaggedWord{Word: "   "}, "")
	assert.Error(t, err)
}

func TestCreateCategoryIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(storage.NewMemoryStorage(), nil, zap.NewNop())

	first, err := r.CreateCategory(ctx, "Mild", "first description", 1)
	require.NoError(t, err)

	second, err := r.CreateCategory(ctx, "mild", "second description", 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "first description", second.Description)
}

func TestSaveWordCategoryExplicitConfidenceDefault(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	cat, err := store.CreateCategory(ctx, &models.Category{Name: "mild", SeverityLevel: 1})
	require.NoError(t, err)

	r := NewResolver(store, nil, zap.NewNop())
	result, err := r.SaveWordCategory(ctx, "foo", cat.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 90.0, result.Confidence)
	assert.False(t, result.AIGenerated)
}
