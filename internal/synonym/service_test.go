package synonym

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
	calls    int
}

func (s *stubBackend) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newService(store storage.Storage, b classifier.Backend) *Service {
	return New(store, classifier.NewClient(b, nil, time.Second, zap.NewNop()), zap.NewNop())
}

func TestGetSuggestionsAsksBackendAndPersists(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	b := &stubBackend{response: `{"suggestions": ["gosh", "darn"], "appropriatenessScore": 90}`}
	svc := newService(store, b)

	suggestions, err := svc.GetSuggestions(ctx, "Foo", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"gosh", "darn"}, suggestions)

	stored, err := store.GetSynonym(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"gosh", "darn"}, stored.Suggestions)
	assert.Equal(t, 90, stored.AppropriatenessScore)
}

func TestGetSuggestionsStoredRecordSkipsBackend(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.UpsertSynonym(ctx, &models.Synonym{
		Word:        "foo",
		Suggestions: []string{"fiddlesticks"},
	}))

	b := &stubBackend{response: `{"suggestions": ["other"]}`}
	svc := newService(store, b)

	suggestions, err := svc.GetSuggestions(ctx, "foo", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"fiddlesticks"}, suggestions)
	assert.Equal(t, 0, b.calls)
}

func TestGetSuggestionsBackendFailureYieldsEmpty(t *testing.T) {
	svc := newService(storage.NewMemoryStorage(), &stubBackend{err: errors.New("unreachable")})

	suggestions, err := svc.GetSuggestions(context.Background(), "foo", "")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestGetSuggestionsEmptyWord(t *testing.T) {
	b := &stubBackend{}
	svc := newService(storage.NewMemoryStorage(), b)

	suggestions, err := svc.GetSuggestions(context.Background(), "  ", "")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Equal(t, 0, b.calls)
}

func TestGetSynonymUnknownReturnsMinimalRecord(t *testing.T) {
	svc := newService(storage.NewMemoryStorage(), &stubBackend{})

	syn, err := svc.GetSynonym(context.Background(), "Ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", syn.Word)
	assert.Equal(t, 50, syn.AppropriatenessScore)
	assert.Empty(t, syn.Suggestions)
}
