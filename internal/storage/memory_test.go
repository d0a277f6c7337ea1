package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textsafe/textsafe/internal/models"
)

func TestFlaggedWordsNormalizeAndPreserveOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.AddFlaggedWord(ctx, &models.FlaggedWord{Word: "  Foo ", Severity: 2}))
	require.NoError(t, s.AddFlaggedWord(ctx, &models.FlaggedWord{Word: "bar", Severity: 9}))
	require.NoError(t, s.AddFlaggedWord(ctx, &models.FlaggedWord{Word: "FOO", Severity: 5}))

	words, err := s.ListFlaggedWords(ctx)
	require.NoError(t, err)
	require.Len(t, words, 2, "duplicate words are ignored")
	assert.Equal(t, "foo", words[0].Word)
	assert.Equal(t, 2, words[0].Severity, "first insert wins")
	assert.Equal(t, "bar", words[1].Word)
	assert.Equal(t, 5, words[1].Severity, "severity clamps to 5")

	found, err := s.GetFlaggedWord(ctx, "FOO")
	require.NoError(t, err)
	assert.Equal(t, "foo", found.Word)

	_, err = s.GetFlaggedWord(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCategoryInsertOrFetch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	first, err := s.CreateCategory(ctx, &models.Category{Name: "Mild", Description: "original", SeverityLevel: 1})
	require.NoError(t, err)
	assert.Equal(t, "mild", first.Name)

	second, err := s.CreateCategory(ctx, &models.Category{Name: "mild", Description: "replacement", SeverityLevel: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "original", second.Description, "existing row is returned untouched")

	byID, err := s.GetCategoryByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "mild", byID.Name)

	byName, err := s.GetCategoryByName(ctx, "MILD")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byName.ID)
}

func TestUpsertWordCategoryReplacesAssociation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	mild, err := s.CreateCategory(ctx, &models.Category{Name: "mild", SeverityLevel: 1})
	require.NoError(t, err)
	abusive, err := s.CreateCategory(ctx, &models.Category{Name: "abusive", SeverityLevel: 4})
	require.NoError(t, err)

	require.NoError(t, s.UpsertWordCategory(ctx, &models.WordCategory{Word: "foo", CategoryID: mild.ID, Confidence: 80}))
	first, err := s.GetWordCategory(ctx, "foo")
	require.NoError(t, err)

	require.NoError(t, s.UpsertWordCategory(ctx, &models.WordCategory{Word: "Foo", CategoryID: abusive.ID, Confidence: 150, AIGenerated: true}))
	second, err := s.GetWordCategory(ctx, "foo")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "upsert keeps one row per word")
	assert.Equal(t, abusive.ID, second.CategoryID)
	assert.Equal(t, 100.0, second.Confidence, "confidence clamps to 100")
	assert.True(t, second.AIGenerated)
}

func TestUpsertSynonymReplacesSuggestions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.UpsertSynonym(ctx, &models.Synonym{Word: "foo", Suggestions: []string{"a"}, AppropriatenessScore: 40}))
	require.NoError(t, s.UpsertSynonym(ctx, &models.Synonym{Word: "FOO", Suggestions: []string{"b", "c"}, AppropriatenessScore: 60}))

	syn, err := s.GetSynonym(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, syn.Suggestions)
	assert.Equal(t, 60, syn.AppropriatenessScore)

	all, err := s.ListSynonyms(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSentimentLookupMatchesExactText(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.CreateSentiment(ctx, &models.SentimentAnalysis{
		Text:          "hello there",
		Sentiment:     models.SentimentPositive,
		ToxicityScore: 120,
	}))

	found, err := s.GetSentimentByText(ctx, "hello there")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, found.Sentiment)
	assert.Equal(t, 100.0, found.ToxicityScore)

	_, err = s.GetSentimentByText(ctx, "Hello there")
	assert.ErrorIs(t, err, ErrNotFound, "sentiment cache is exact-match")
}

func TestReportEntryRangeAndAttachment(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	inside := models.ReportEntry{Word: "foo", Severity: 2, Timestamp: base}
	outside := models.ReportEntry{Word: "bar", Severity: 2, Timestamp: base.AddDate(0, 1, 0)}
	require.NoError(t, s.CreateReportEntry(ctx, &inside))
	require.NoError(t, s.CreateReportEntry(ctx, &outside))

	start, end := base.Add(-time.Hour), base.Add(time.Hour)
	entries, err := s.ListReportEntries(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "foo", entries[0].Word)

	report := models.Report{Title: "May"}
	require.NoError(t, s.CreateReport(ctx, &report))
	require.NoError(t, s.AttachEntriesToReport(ctx, report.ID, start, end))

	entries, err = s.ListReportEntries(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, report.ID, entries[0].ReportID)

	later, err := s.ListReportEntries(ctx, base.AddDate(0, 1, -1), base.AddDate(0, 1, 1))
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Zero(t, later[0].ReportID, "out-of-range entries stay unattached")
}

func TestListRecentSentimentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, s.CreateSentiment(ctx, &models.SentimentAnalysis{Text: text}))
	}

	recent, err := s.ListRecentSentiments(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "three", recent[0].Text)
	assert.Equal(t, "two", recent[1].Text)
}
