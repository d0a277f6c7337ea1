// Package report records flagged occurrences and aggregates them into
// dated reports with an AI-generated narrative.
package report

import (
	"context"
	"fmt"
	"time"

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

// LogEntry records one flagged occurrence for later aggregation.
func (s *Service) LogEntry(ctx context.Context, entry *models.ReportEntry) error {
	return s.store.CreateReportEntry(ctx, entry)
}

// GenerateReport aggregates all entries in the date range into an
// immutable report. The summary, insights and risk assessment come from
// the AI backend and degrade to placeholders when it is unavailable.
func (s *Service) GenerateReport(ctx context.Context, start, end time.Time, title string) (*models.Report, error) {
	if title == "" {
		title = fmt.Sprintf("Profanity Report %s to %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	entries, err := s.store.ListReportEntries(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing report entries: %w", err)
	}

	breakdown := make(map[string]int)
	for _, e := range entries {
		category := e.Category
		if category == "" {
			category = "uncategorized"
		}
		breakdown[category]++
	}

	summary := s.ai.SummarizeReport(ctx, entries, start, end)
	if summary.Status != classifier.StatusParsed {
		s.logger.Warn("report summary degraded",
			zap.String("status", summary.Status.String()),
			zap.String("diagnostic", summary.Diagnostic))
		summary.Summary = "No summary available"
	}

	rpt := &models.Report{
		Title:             title,
		StartDate:         start,
		EndDate:           end,
		Summary:           summary.Summary,
		Insights:          summary.Insights,
		RiskAssessment:    models.ParseRiskLevel(summary.RiskAssessment),
		TotalFlagged:      len(entries),
		CategoryBreakdown: breakdown,
		AIGenerated:       summary.Status == classifier.StatusParsed,
	}
	if err := s.store.CreateReport(ctx, rpt); err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}

	if err := s.store.AttachEntriesToReport(ctx, rpt.ID, start, end); err != nil {
		// The report itself is complete; attachment is bookkeeping.
		s.logger.Warn("failed to attach entries to report",
			zap.Int64("report_id", rpt.ID),
			zap.Error(err))
	}

	rpt.Entries = entries
	return rpt, nil
}

// ListReports returns the most recent reports.
func (s *Service) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	return s.store.ListReports(ctx, limit)
}
