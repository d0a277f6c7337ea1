// Package server exposes the moderation operations over a small REST
// surface for downstream applications.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/textsafe/textsafe/internal/category"
	"github.com/textsafe/textsafe/internal/models"
	"github.com/textsafe/textsafe/internal/moderation"
	"github.com/textsafe/textsafe/internal/report"
	"github.com/textsafe/textsafe/internal/sentiment"
	"github.com/textsafe/textsafe/internal/synonym"
	"go.uber.org/zap"
)

type Server struct {
	engine     *gin.Engine
	moderation *moderation.Service
	categories *category.Resolver
	synonyms   *synonym.Service
	sentiments *sentiment.Service
	reports    *report.Service
	logger     *zap.Logger
}

func New(
	mod *moderation.Service,
	categories *category.Resolver,
	synonyms *synonym.Service,
	sentiments *sentiment.Service,
	reports *report.Service,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:     gin.New(),
		moderation: mod,
		categories: categories,
		synonyms:   synonyms,
		sentiments: sentiments,
		reports:    reports,
		logger:     logger,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)

	s.engine.POST("/check", s.handleCheckText)
	s.engine.GET("/words", s.handleListWords)
	s.engine.POST("/words", s.handleAddWord)

	s.engine.GET("/categories", s.handleListCategories)
	s.engine.POST("/categories", s.handleCreateCategory)
	s.engine.GET("/categories/word/:word", s.handleGetCategoryForWord)
	s.engine.POST("/word-categories", s.handleSaveWordCategory)

	s.engine.GET("/synonyms", s.handleListSynonyms)
	s.engine.GET("/synonyms/:word", s.handleGetSuggestions)

	s.engine.POST("/sentiment", s.handleAnalyzeSentiment)
	s.engine.GET("/sentiment/recent", s.handleRecentSentiments)

	s.engine.POST("/reports", s.handleGenerateReport)
	s.engine.GET("/reports", s.handleListReports)
}

// Run blocks serving HTTP on the given port.
func (s *Server) Run(port int) error {
	return s.engine.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCheckText(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	flagged, err := s.moderation.CheckText(c.Request.Context(), req.Text)
	if err != nil {
		s.logger.Error("check text failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check text"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flagged_words": flagged})
}

func (s *Server) handleListWords(c *gin.Context) {
	words, err := s.moderation.ListWords(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list words"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

func (s *Server) handleAddWord(c *gin.Context) {
	var req struct {
		Word             string `json:"word" binding:"required"`
		Severity         int    `json:"severity"`
		ContextDependent bool   `json:"context_dependent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	word, err := s.moderation.AddWord(c.Request.Context(), req.Word, req.Severity, req.ContextDependent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add word"})
		return
	}
	c.JSON(http.StatusCreated, word)
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.categories.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		Description   string `json:"description"`
		SeverityLevel int    `json:"severity_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	cat, err := s.categories.CreateCategory(c.Request.Context(), req.Name, req.Description, req.SeverityLevel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) handleGetCategoryForWord(c *gin.Context) {
	word := c.Param("word")
	contextText := c.Query("context")

	result, err := s.categories.Resolve(c.Request.Context(), moderationWord(word), contextText)
	if err != nil {
		s.logger.Error("category resolution failed", zap.String("word", word), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve category"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSaveWordCategory(c *gin.Context) {
	var req struct {
		Word       string  `json:"word" binding:"required"`
		CategoryID int64   `json:"category_id" binding:"required"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word and category_id are required"})
		return
	}

	result, err := s.categories.SaveWordCategory(c.Request.Context(), req.Word, req.CategoryID, req.Confidence)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save word category"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListSynonyms(c *gin.Context) {
	synonyms, err := s.synonyms.ListSynonyms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list synonyms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synonyms": synonyms})
}

func (s *Server) handleGetSuggestions(c *gin.Context) {
	word := c.Param("word")
	contextText := c.Query("context")

	suggestions, err := s.synonyms.GetSuggestions(c.Request.Context(), word, contextText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get suggestions"})
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"word": word, "suggestions": suggestions})
}

func (s *Server) handleAnalyzeSentiment(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	analysis, err := s.sentiments.AnalyzeSentiment(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze sentiment"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleRecentSentiments(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	analyses, err := s.sentiments.GetRecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

func (s *Server) handleGenerateReport(c *gin.Context) {
	var req struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
		Title     string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	rpt, err := s.reports.GenerateReport(c.Request.Context(), start, end, req.Title)
	if err != nil {
		s.logger.Error("report generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}
	c.JSON(http.StatusOK, rpt)
}

func (s *Server) handleListReports(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	reports, err := s.reports.ListReports(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// moderationWord wraps a bare word for standalone category resolution;
// severity 2 matches the AI-merge default for unknown words.
func moderationWord(word string) models.FlaggedWord {
	return models.FlaggedWord{Word: word, Severity: 2, ContextDependent: true, AIDetectable: true}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
