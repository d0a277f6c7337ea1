package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/textsafe/textsafe/internal/models"
)

// MemoryStorage is an in-memory Storage used for tests and for running
// without a database. It mirrors the upsert semantics of the Postgres
// implementation, including insert-or-fetch on unique names.
type MemoryStorage struct {
	mu sync.RWMutex

	words      map[string]models.FlaggedWord
	wordOrder  []string
	categories map[string]*models.Category
	wordCats   map[string]*models.WordCategory
	synonyms   map[string]*models.Synonym
	sentiments []models.SentimentAnalysis
	entries    []models.ReportEntry
	reports    []models.Report

	nextID int64
}

func NewMemoryStorage() *MemoryStorage {
	s := &MemoryStorage{
		words:      make(map[string]models.FlaggedWord),
		categories: make(map[string]*models.Category),
		wordCats:   make(map[string]*models.WordCategory),
		synonyms:   make(map[string]*models.Synonym),
	}
	return s
}

func (s *MemoryStorage) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStorage) ListFlaggedWords(ctx context.Context) ([]models.FlaggedWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FlaggedWord, 0, len(s.wordOrder))
	for _, w := range s.wordOrder {
		out = append(out, s.words[w])
	}
	return out, nil
}

func (s *MemoryStorage) GetFlaggedWord(ctx context.Context, word string) (*models.FlaggedWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, exists := s.words[models.NormalizeWord(word)]; exists {
		return &w, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) AddFlaggedWord(ctx context.Context, word *models.FlaggedWord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.NormalizeWord(word.Word)
	if _, exists := s.words[key]; exists {
		return nil
	}
	stored := *word
	stored.Word = key
	stored.Severity = models.ClampSeverity(stored.Severity)
	s.words[key] = stored
	s.wordOrder = append(s.wordOrder, key)
	return nil
}

func (s *MemoryStorage) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStorage) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, exists := s.categories[models.NormalizeWord(name)]; exists {
		cp := *c
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := models.NormalizeWord(category.Name)
	if existing, exists := s.categories[name]; exists {
		cp := *existing
		return &cp, nil
	}
	c := &models.Category{
		ID:            s.nextIDLocked(),
		Name:          name,
		Description:   category.Description,
		SeverityLevel: models.ClampSeverity(category.SeverityLevel),
		CreatedAt:     time.Now(),
	}
	s.categories[name] = c
	cp := *c
	return &cp, nil
}

func (s *MemoryStorage) GetWordCategory(ctx context.Context, word string) (*models.WordCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if wc, exists := s.wordCats[models.NormalizeWord(word)]; exists {
		cp := *wc
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) UpsertWordCategory(ctx context.Context, wc *models.WordCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.NormalizeWord(wc.Word)
	existing, exists := s.wordCats[key]
	if !exists {
		existing = &models.WordCategory{ID: s.nextIDLocked(), Word: key}
		s.wordCats[key] = existing
	}
	existing.CategoryID = wc.CategoryID
	existing.Confidence = models.ClampScore(wc.Confidence)
	existing.AIGenerated = wc.AIGenerated
	existing.LastUpdated = time.Now()
	wc.ID = existing.ID
	wc.LastUpdated = existing.LastUpdated
	return nil
}

func (s *MemoryStorage) GetSynonym(ctx context.Context, word string) (*models.Synonym, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if syn, exists := s.synonyms[models.NormalizeWord(word)]; exists {
		cp := *syn
		cp.Suggestions = append([]string(nil), syn.Suggestions...)
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) ListSynonyms(ctx context.Context) ([]models.Synonym, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Synonym, 0, len(s.synonyms))
	for _, syn := range s.synonyms {
		cp := *syn
		cp.Suggestions = append([]string(nil), syn.Suggestions...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

func (s *MemoryStorage) UpsertSynonym(ctx context.Context, syn *models.Synonym) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.NormalizeWord(syn.Word)
	existing, exists := s.synonyms[key]
	if !exists {
		existing = &models.Synonym{ID: s.nextIDLocked(), Word: key}
		s.synonyms[key] = existing
	}
	existing.Suggestions = append([]string(nil), syn.Suggestions...)
	existing.AppropriatenessScore = int(models.ClampScore(float64(syn.AppropriatenessScore)))
	existing.LastUpdated = time.Now()
	syn.ID = existing.ID
	syn.LastUpdated = existing.LastUpdated
	return nil
}

func (s *MemoryStorage) GetSentimentByText(ctx context.Context, text string) (*models.SentimentAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.sentiments) - 1; i >= 0; i-- {
		if s.sentiments[i].Text == text {
			cp := s.sentiments[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) CreateSentiment(ctx context.Context, a *models.SentimentAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextIDLocked()
	if a.AnalysisDate.IsZero() {
		a.AnalysisDate = time.Now()
	}
	a.AppropriatenessScore = models.ClampScore(a.AppropriatenessScore)
	a.ToxicityScore = models.ClampScore(a.ToxicityScore)
	a.ProfessionalismScore = models.ClampScore(a.ProfessionalismScore)
	s.sentiments = append(s.sentiments, *a)
	return nil
}

func (s *MemoryStorage) ListRecentSentiments(ctx context.Context, limit int) ([]models.SentimentAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	out := make([]models.SentimentAnalysis, 0, limit)
	for i := len(s.sentiments) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.sentiments[i])
	}
	return out, nil
}

func (s *MemoryStorage) CreateReportEntry(ctx context.Context, entry *models.ReportEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextIDLocked()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Severity = models.ClampSeverity(entry.Severity)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MemoryStorage) ListReportEntries(ctx context.Context, start, end time.Time) ([]models.ReportEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ReportEntry
	for _, e := range s.entries {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStorage) CreateReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report.ID = s.nextIDLocked()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	s.reports = append(s.reports, *report)
	return nil
}

func (s *MemoryStorage) AttachEntriesToReport(ctx context.Context, reportID int64, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		e := &s.entries[i]
		if e.ReportID == 0 && !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			e.ReportID = reportID
		}
	}
	return nil
}

func (s *MemoryStorage) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	out := make([]models.Report, 0, limit)
	for i := len(s.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.reports[i])
	}
	return out, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
