package storage

import (
	"context"
	"errors"
	"time"

	"github.com/textsafe/textsafe/internal/models"
)

// ErrNotFound is returned for lookups that match no row.
var ErrNotFound = errors.New("storage: not found")

// Storage is the persistence collaborator for every entity. Unique-name
// and unique-word writes are atomic upserts so concurrent first-time
// lookups cannot produce duplicate rows.
type Storage interface {
	LexiconStorage
	CategoryStorage
	SynonymStorage
	SentimentStorage
	ReportStorage
	Close() error
}

// LexiconStorage holds the known offensive terms.
type LexiconStorage interface {
	ListFlaggedWords(ctx context.Context) ([]models.FlaggedWord, error)
	GetFlaggedWord(ctx context.Context, word string) (*models.FlaggedWord, error)
	// AddFlaggedWord inserts a word, ignoring the write if it already exists.
	AddFlaggedWord(ctx context.Context, word *models.FlaggedWord) error
}

type CategoryStorage interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	// CreateCategory inserts a category by unique lowercase name, or
	// fetches the existing one when the name is already taken.
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)

	GetWordCategory(ctx context.Context, word string) (*models.WordCategory, error)
	// UpsertWordCategory creates or replaces the single live association
	// for the normalized word.
	UpsertWordCategory(ctx context.Context, wc *models.WordCategory) error
}

type SynonymStorage interface {
	GetSynonym(ctx context.Context, word string) (*models.Synonym, error)
	ListSynonyms(ctx context.Context) ([]models.Synonym, error)
	UpsertSynonym(ctx context.Context, s *models.Synonym) error
}

type SentimentStorage interface {
	GetSentimentByText(ctx context.Context, text string) (*models.SentimentAnalysis, error)
	CreateSentiment(ctx context.Context, a *models.SentimentAnalysis) error
	ListRecentSentiments(ctx context.Context, limit int) ([]models.SentimentAnalysis, error)
}

type ReportStorage interface {
	CreateReportEntry(ctx context.Context, entry *models.ReportEntry) error
	ListReportEntries(ctx context.Context, start, end time.Time) ([]models.ReportEntry, error)
	CreateReport(ctx context.Context, report *models.Report) error
	AttachEntriesToReport(ctx context.Context, reportID int64, start, end time.Time) error
	ListReports(ctx context.Context, limit int) ([]models.Report, error)
}
