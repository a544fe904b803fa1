package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patient-summary-mcp-server/internal/domain"
	"github.com/patient-summary-mcp-server/internal/review"
)

// GenerateSummaryParams defines parameters for the generate_patient_summary tool
type GenerateSummaryParams struct {
	PatientID string `json:"patient_id"`
}

// AnalyzeDataParams defines parameters for the analyze_patient_data tool
type AnalyzeDataParams struct {
	PatientID string `json:"patient_id"`
}

// ListPatientsParams defines parameters for the list_patients tool
type ListPatientsParams struct{}

// ListPatientsResult defines the result structure for the list_patients tool
type ListPatientsResult struct {
	Patients []string `json:"patients"`
	Count    int      `json:"count"`
}

// SubmitFeedbackParams defines parameters for the submit_summary_feedback tool
type SubmitFeedbackParams struct {
	PatientID string `json:"patient_id"`
	Reviewer  string `json:"reviewer,omitempty"`
	Verdict   string `json:"verdict"`
	Notes     string `json:"notes,omitempty"`
}

// handleGenerateSummary handles the generate_patient_summary tool invocation
func (s *Server) handleGenerateSummary(ctx context.Context, req *mcp.CallToolRequest, params GenerateSummaryParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "generate_patient_summary").Info("Tool invoked")

	if params.PatientID == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("patient_id is required")), nil, nil
	}

	summary, err := s.engine.GeneratePatientSummary(ctx, params.PatientID)
	if err != nil {
		return s.createErrorResult("Summary generation failed", err), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summary},
		},
	}, nil, nil
}

// handleAnalyzeData handles the analyze_patient_data tool invocation
func (s *Server) handleAnalyzeData(ctx context.Context, req *mcp.CallToolRequest, params AnalyzeDataParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "analyze_patient_data").Info("Tool invoked")

	if params.PatientID == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("patient_id is required")), nil, nil
	}

	report, err := s.engine.AnalyzePatientData(ctx, params.PatientID)
	if err != nil {
		return s.createErrorResult("Analysis failed", err), nil, nil
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return s.createErrorResult("Failed to encode report", err), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(encoded)},
		},
	}, report, nil
}

// handleListPatients handles the list_patients tool invocation
func (s *Server) handleListPatients(ctx context.Context, req *mcp.CallToolRequest, params ListPatientsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "list_patients").Info("Tool invoked")

	patients := s.engine.ListPatients()
	result := ListPatientsResult{
		Patients: patients,
		Count:    len(patients),
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("%d patients available: %v", result.Count, result.Patients),
			},
		},
	}, result, nil
}

// handleSubmitFeedback handles the submit_summary_feedback tool invocation
func (s *Server) handleSubmitFeedback(ctx context.Context, req *mcp.CallToolRequest, params SubmitFeedbackParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "submit_summary_feedback").Info("Tool invoked")

	if params.PatientID == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("patient_id is required")), nil, nil
	}

	verdict := review.Verdict(params.Verdict)
	if !verdict.IsValid() {
		return s.createErrorResult("Invalid parameter",
			fmt.Errorf("verdict must be one of accurate, incomplete, inaccurate; got %q", params.Verdict)), nil, nil
	}

	r := &review.Review{
		PatientID: params.PatientID,
		Reviewer:  params.Reviewer,
		Verdict:   verdict,
		Notes:     params.Notes,
	}
	if err := s.reviews.Save(ctx, r); err != nil {
		return s.createErrorResult("Failed to save review", err), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Recorded %s review for patient %s", verdict, params.PatientID),
			},
		},
	}, r, nil
}

// createErrorResult builds an error tool result carrying the engine's error
// code so callers can distinguish unknown patients from malformed records.
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	s.logger.WithError(err).Warn(message)

	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("%s (%s): %v", message, domain.ErrorCode(err), err),
			},
		},
	}
}
