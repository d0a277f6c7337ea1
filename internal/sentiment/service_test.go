package sentiment

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

func TestAnalyzeSentimentPersistsParsedResult(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	b := &stubBackend{response: `{"sentiment":"negative","appropriatenessScore":30,"toxicityScore":70,"professionalismScore":20,"review":"hostile tone"}`}
	svc := newService(store, b)

	analysis, err := svc.AnalyzeSentiment(ctx, "you are terrible")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, analysis.Sentiment)
	assert.Equal(t, 70.0, analysis.ToxicityScore)
	assert.True(t, analysis.AIGenerated)

	recent, err := store.ListRecentSentiments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "you are terrible", recent[0].Text)
}

func TestAnalyzeSentimentExactTextCacheHit(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	b := &stubBackend{response: `{"sentiment":"positive","appropriatenessScore":95,"toxicityScore":0,"professionalismScore":90,"review":"friendly"}`}
	svc := newService(store, b)

	first, err := svc.AnalyzeSentiment(ctx, "what a lovely day")
	require.NoError(t, err)

	second, err := svc.AnalyzeSentiment(ctx, "what a lovely day")
	require.NoError(t, err)
	assert.Equal(t, first.Sentiment, second.Sentiment)
	assert.Equal(t, 1, b.calls, "repeat texts are served from the store")
}

func TestAnalyzeSentimentDegradedNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	svc := newService(store, &stubBackend{err: errors.New("unreachable")})

	analysis, err := svc.AnalyzeSentiment(ctx, "anything at all")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, analysis.Sentiment)
	assert.Equal(t, 50.0, analysis.AppropriatenessScore)
	assert.False(t, analysis.AIGenerated)

	recent, err := store.ListRecentSentiments(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent, "degraded analyses stay out of the store")
}

func TestAnalyzeSentimentEmptyText(t *testing.T) {
	b := &stubBackend{}
	svc := newService(storage.NewMemoryStorage(), b)

	analysis, err := svc.AnalyzeSentiment(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, analysis.Sentiment)
	assert.Equal(t, 0, b.calls)
}
