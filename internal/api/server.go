// Package api exposes the summarization engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/config"
	"github.com/patient-summary-mcp-server/internal/domain"
	"github.com/patient-summary-mcp-server/internal/middleware"
	"github.com/patient-summary-mcp-server/internal/review"
)

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	engine  domain.SummaryEngine
	reviews review.Store
	router  *gin.Engine
	server  *http.Server
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, engine domain.SummaryEngine, reviews review.Store, logger *logrus.Logger) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

	server := &Server{
		cfg:     cfg,
		engine:  engine,
		reviews: reviews,
		router:  router,
		logger:  logger,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/patients", s.handleListPatients)
		v1.GET("/patients/:id/summary", s.handleSummary)
		v1.GET("/patients/:id/analysis", s.handleAnalysis)
		v1.POST("/feedback", s.handleFeedback)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"patients":  len(s.engine.ListPatients()),
	})
}

// handleListPatients returns the patient identifiers the engine can
// summarize.
func (s *Server) handleListPatients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"patients": s.engine.ListPatients(),
	})
}

// handleSummary returns the narrative summary for a patient.
func (s *Server) handleSummary(c *gin.Context) {
	patientID := c.Param("id")

	summary, err := s.engine.GeneratePatientSummary(c.Request.Context(), patientID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": patientID,
		"summary":    summary,
	})
}

// handleAnalysis returns the full structured report for a patient.
func (s *Server) handleAnalysis(c *gin.Context) {
	patientID := c.Param("id")

	report, err := s.engine.AnalyzePatientData(c.Request.Context(), patientID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// feedbackRequest is the POST /api/v1/feedback payload.
type feedbackRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Reviewer  string `json:"reviewer"`
	Verdict   string `json:"verdict" binding:"required"`
	Notes     string `json:"notes"`
}

// handleFeedback records a clinician's review of a generated summary.
func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Invalid request body",
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	verdict := review.Verdict(req.Verdict)
	if !verdict.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          fmt.Sprintf("Invalid verdict: %s", req.Verdict),
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	r := &review.Review{
		PatientID: req.PatientID,
		Reviewer:  req.Reviewer,
		Verdict:   verdict,
		Notes:     req.Notes,
	}
	if err := s.reviews.Save(c.Request.Context(), r); err != nil {
		s.logger.WithError(err).Error("Failed to save review")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "Failed to save review",
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	c.JSON(http.StatusCreated, r)
}

// writeError maps engine errors onto HTTP status codes: unknown patients are
// 404, malformed or ambiguous bundles are 422, everything else is 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.ErrorCode(err) {
	case domain.ErrCodeUnknownPatient:
		status = http.StatusNotFound
	case domain.ErrCodeMalformedBundle, domain.ErrCodeMissingResource:
		status = http.StatusUnprocessableEntity
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	c.JSON(status, gin.H{
		"error":          message,
		"code":           domain.ErrorCode(err),
		"correlation_id": c.GetString("correlation_id"),
	})
}
