package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/textsafe/textsafe/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) ListFlaggedWords(ctx context.Context) ([]models.FlaggedWord, error) {
	query := `
		SELECT word, severity, context_dependent, ai_detectable
		FROM flagged_words
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying flagged words: %v", err)
	}
	defer rows.Close()

	var words []models.FlaggedWord
	for rows.Next() {
		var w models.FlaggedWord
		if err := rows.Scan(&w.Word, &w.Severity, &w.ContextDependent, &w.AIDetectable); err != nil {
			return nil, fmt.Errorf("error scanning flagged word: %v", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *PostgresStorage) GetFlaggedWord(ctx context.Context, word string) (*models.FlaggedWord, error) {
	query := `
		SELECT word, severity, context_dependent, ai_detectable
		FROM flagged_words
		WHERE word = $1`

	var w models.FlaggedWord
	err := s.db.QueryRowContext(ctx, query, models.NormalizeWord(word)).
		Scan(&w.Word, &w.Severity, &w.ContextDependent, &w.AIDetectable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying flagged word: %v", err)
	}
	return &w, nil
}

func (s *PostgresStorage) AddFlaggedWord(ctx context.Context, word *models.FlaggedWord) error {
	query := `
		INSERT INTO flagged_words (word, severity, context_dependent, ai_detectable)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (word) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		models.NormalizeWord(word.Word),
		models.ClampSeverity(word.Severity),
		word.ContextDependent,
		word.AIDetectable,
	)
	if err != nil {
		return fmt.Errorf("error adding flagged word: %v", err)
	}
	return nil
}

func (s *PostgresStorage) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), severity_level, created_at
		FROM categories
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %v", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SeverityLevel, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning category: %v", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStorage) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), severity_level, created_at
		FROM categories
		WHERE name = $1`

	var c models.Category
	err := s.db.QueryRowContext(ctx, query, models.NormalizeWord(name)).
		Scan(&c.ID, &c.Name, &c.Description, &c.SeverityLevel, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying category: %v", err)
	}
	return &c, nil
}

func (s *PostgresStorage) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), severity_level, created_at
		FROM categories
		WHERE id = $1`

	var c models.Category
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.SeverityLevel, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying category: %v", err)
	}
	return &c, nil
}

// CreateCategory inserts by unique name and returns the live row either
// way, so concurrent first-time creations converge on one category.
func (s *PostgresStorage) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, description, severity_level)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, COALESCE(description, ''), severity_level, created_at`

	var c models.Category
	err := s.db.QueryRowContext(ctx, query,
		models.NormalizeWord(category.Name),
		category.Description,
		models.ClampSeverity(category.SeverityLevel),
	).Scan(&c.ID, &c.Name, &c.Description, &c.SeverityLevel, &c.CreatedAt)
	if err != nil {
		// Unique-violation fallback: another writer won the insert race.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return s.GetCategoryByName(ctx, category.Name)
		}
		return nil, fmt.Errorf("error creating category: %v", err)
	}
	return &c, nil
}

func (s *PostgresStorage) GetWordCategory(ctx context.Context, word string) (*models.WordCategory, error) {
	query := `
		SELECT id, word, COALESCE(category_id, 0), confidence, ai_generated, last_updated
		FROM word_categories
		WHERE word = $1`

	var wc models.WordCategory
	err := s.db.QueryRowContext(ctx, query, models.NormalizeWord(word)).
		Scan(&wc.ID, &wc.Word, &wc.CategoryID, &wc.Confidence, &wc.AIGenerated, &wc.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying word category: %v", err)
	}
	return &wc, nil
}

func (s *PostgresStorage) UpsertWordCategory(ctx context.Context, wc *models.WordCategory) error {
	query := `
		INSERT INTO word_categories (word, category_id, confidence, ai_generated, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (word) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			confidence = EXCLUDED.confidence,
			ai_generated = EXCLUDED.ai_generated,
			last_updated = EXCLUDED.last_updated
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		models.NormalizeWord(wc.Word),
		wc.CategoryID,
		models.ClampScore(wc.Confidence),
		wc.AIGenerated,
		time.Now(),
	).Scan(&wc.ID)
	if err != nil {
		return fmt.Errorf("error upserting word category: %v", err)
	}
	return nil
}

func (s *PostgresStorage) GetSynonym(ctx context.Context, word string) (*models.Synonym, error) {
	query := `
		SELECT id, word, suggestions, appropriateness_score, last_updated
		FROM synonyms
		WHERE word = $1`

	var syn models.Synonym
	err := s.db.QueryRowContext(ctx, query, models.NormalizeWord(word)).
		Scan(&syn.ID, &syn.Word, pq.Array(&syn.Suggestions), &syn.AppropriatenessScore, &syn.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying synonym: %v", err)
	}
	return &syn, nil
}

func (s *PostgresStorage) ListSynonyms(ctx context.Context) ([]models.Synonym, error) {
	query := `
		SELECT id, word, suggestions, appropriateness_score, last_updated
		FROM synonyms
		ORDER BY word`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying synonyms: %v", err)
	}
	defer rows.Close()

	var synonyms []models.Synonym
	for rows.Next() {
		var syn models.Synonym
		if err := rows.Scan(&syn.ID, &syn.Word, pq.Array(&syn.Suggestions), &syn.AppropriatenessScore, &syn.LastUpdated); err != nil {
			return nil, fmt.Errorf("error scanning synonym: %v", err)
		}
		synonyms = append(synonyms, syn)
	}
	return synonyms, rows.Err()
}

func (s *PostgresStorage) UpsertSynonym(ctx context.Context, syn *models.Synonym) error {
	query := `
		INSERT INTO synonyms (word, suggestions, appropriateness_score, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (word) DO UPDATE SET
			suggestions = EXCLUDED.suggestions,
			appropriateness_score = EXCLUDED.appropriateness_score,
			last_updated = EXCLUDED.last_updated
		RETURNING id`

	score := int(models.ClampScore(float64(syn.AppropriatenessScore)))
	err := s.db.QueryRowContext(ctx, query,
		models.NormalizeWord(syn.Word),
		pq.Array(syn.Suggestions),
		score,
		time.Now(),
	).Scan(&syn.ID)
	if err != nil {
		return fmt.Errorf("error upserting synonym: %v", err)
	}
	return nil
}

func (s *PostgresStorage) GetSentimentByText(ctx context.Context, text string) (*models.SentimentAnalysis, error) {
	query := `
		SELECT id, text, COALESCE(sentiment, 'neutral'), appropriateness_score,
		       toxicity_score, professionalism_score, COALESCE(review, ''),
		       ai_generated, analysis_date
		FROM sentiment_analyses
		WHERE text = $1
		ORDER BY analysis_date DESC
		LIMIT 1`

	var a models.SentimentAnalysis
	err := s.db.QueryRowContext(ctx, query, text).Scan(
		&a.ID, &a.Text, &a.Sentiment, &a.AppropriatenessScore,
		&a.ToxicityScore, &a.ProfessionalismScore, &a.Review,
		&a.AIGenerated, &a.AnalysisDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying sentiment analysis: %v", err)
	}
	return &a, nil
}

func (s *PostgresStorage) CreateSentiment(ctx context.Context, a *models.SentimentAnalysis) error {
	query := `
		INSERT INTO sentiment_analyses
			(text, sentiment, appropriateness_score, toxicity_score, professionalism_score, review, ai_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, analysis_date`

	err := s.db.QueryRowContext(ctx, query,
		a.Text,
		string(a.Sentiment),
		models.ClampScore(a.AppropriatenessScore),
		models.ClampScore(a.ToxicityScore),
		models.ClampScore(a.ProfessionalismScore),
		a.Review,
		a.AIGenerated,
	).Scan(&a.ID, &a.AnalysisDate)
	if err != nil {
		return fmt.Errorf("error creating sentiment analysis: %v", err)
	}
	return nil
}

func (s *PostgresStorage) ListRecentSentiments(ctx context.Context, limit int) ([]models.SentimentAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, text, COALESCE(sentiment, 'neutral'), appropriateness_score,
		       toxicity_score, professionalism_score, COALESCE(review, ''),
		       ai_generated, analysis_date
		FROM sentiment_analyses
		ORDER BY analysis_date DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying sentiment analyses: %v", err)
	}
	defer rows.Close()

	var analyses []models.SentimentAnalysis
	for rows.Next() {
		var a models.SentimentAnalysis
		if err := rows.Scan(&a.ID, &a.Text, &a.Sentiment, &a.AppropriatenessScore,
			&a.ToxicityScore, &a.ProfessionalismScore, &a.Review,
			&a.AIGenerated, &a.AnalysisDate); err != nil {
			return nil, fmt.Errorf("error scanning sentiment analysis: %v", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func (s *PostgresStorage) CreateReportEntry(ctx context.Context, entry *models.ReportEntry) error {
	query := `
		INSERT INTO report_entries (word, category, context, severity, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	err := s.db.QueryRowContext(ctx, query,
		entry.Word,
		entry.Category,
		entry.Context,
		models.ClampSeverity(entry.Severity),
		ts,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("error creating report entry: %v", err)
	}
	entry.Timestamp = ts
	return nil
}

func (s *PostgresStorage) ListReportEntries(ctx context.Context, start, end time.Time) ([]models.ReportEntry, error) {
	query := `
		SELECT id, word, COALESCE(category, ''), COALESCE(context, ''), severity, timestamp, COALESCE(report_id, 0)
		FROM report_entries
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp ASC`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("error querying report entries: %v", err)
	}
	defer rows.Close()

	var entries []models.ReportEntry
	for rows.Next() {
		var e models.ReportEntry
		if err := rows.Scan(&e.ID, &e.Word, &e.Category, &e.Context, &e.Severity, &e.Timestamp, &e.ReportID); err != nil {
			return nil, fmt.Errorf("error scanning report entry: %v", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStorage) CreateReport(ctx context.Context, report *models.Report) error {
	insights, err := json.Marshal(report.Insights)
	if err != nil {
		return fmt.Errorf("error encoding report insights: %v", err)
	}
	breakdown, err := json.Marshal(report.CategoryBreakdown)
	if err != nil {
		return fmt.Errorf("error encoding category breakdown: %v", err)
	}

	query := `
		INSERT INTO reports
			(title, start_date, end_date, summary, insights, risk_assessment, total_flagged, category_breakdown, ai_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err = s.db.QueryRowContext(ctx, query,
		report.Title,
		report.StartDate,
		report.EndDate,
		report.Summary,
		insights,
		string(report.RiskAssessment),
		report.TotalFlagged,
		breakdown,
		report.AIGenerated,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating report: %v", err)
	}
	return nil
}

func (s *PostgresStorage) AttachEntriesToReport(ctx context.Context, reportID int64, start, end time.Time) error {
	query := `
		UPDATE report_entries
		SET report_id = $1
		WHERE timestamp BETWEEN $2 AND $3 AND report_id IS NULL`

	if _, err := s.db.ExecContext(ctx, query, reportID, start, end); err != nil {
		return fmt.Errorf("error attaching report entries: %v", err)
	}
	return nil
}

func (s *PostgresStorage) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, title, start_date, end_date, COALESCE(summary, ''), insights,
		       risk_assessment, total_flagged, category_breakdown, ai_generated, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %v", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var (
			r         models.Report
			risk      string
			insights  []byte
			breakdown []byte
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.StartDate, &r.EndDate, &r.Summary, &insights,
			&risk, &r.TotalFlagged, &breakdown, &r.AIGenerated, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning report: %v", err)
		}
		r.RiskAssessment = models.ParseRiskLevel(risk)
		if err := json.Unmarshal(insights, &r.Insights); err != nil {
			r.Insights = nil
		}
		if err := json.Unmarshal(breakdown, &r.CategoryBreakdown); err != nil {
			r.CategoryBreakdown = map[string]int{}
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
