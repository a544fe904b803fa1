// Package mcp exposes the summarization engine as an MCP server over stdio,
// so agent frameworks can invoke the entry points as tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
	"github.com/patient-summary-mcp-server/internal/review"
)

// Server represents the patient summary MCP server implementation
type Server struct {
	mcpServer *mcp.Server
	engine    domain.SummaryEngine
	reviews   review.Store
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance wired to the summarization
// engine. The review store is optional; when nil the feedback tool is not
// registered.
func NewServer(engine domain.SummaryEngine, reviews review.Store, logger *logrus.Logger) *Server {
	serverInfo := &mcp.Implementation{
		Name:    "patient-summary-mcp-server",
		Version: "v0.1.0",
	}

	server := &Server{
		mcpServer: mcp.NewServer(serverInfo, nil),
		engine:    engine,
		reviews:   reviews,
		logger:    logger,
	}

	server.registerTools()

	return server
}

// registerTools registers the engine's entry points as MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_patient_summary",
		Description: "Generate a concise clinical summary for a patient from their FHIR record, covering major diagnoses, key laboratory findings, and likely medication classes.",
	}, s.handleGenerateSummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "analyze_patient_data",
		Description: "Produce a full structured analysis of a patient's FHIR record: demographics, every condition with status and severity, and every laboratory result with its interpretation.",
	}, s.handleAnalyzeData)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_patients",
		Description: "List the patient identifiers available for summarization.",
	}, s.handleListPatients)

	if s.reviews != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "submit_summary_feedback",
			Description: "Record a clinician's review of a generated summary: accurate, incomplete, or inaccurate, with optional notes.",
		}, s.handleSubmitFeedback)
	}

	s.logger.Info("Registered MCP tools")
}

// Run starts the MCP server over stdio and blocks until the context is
// cancelled or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting patient summary MCP server")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
