package domain

import "context"

// BundleSource resolves a patient identifier to raw bundle content. It is the
// only shared resource across request pipelines and must be safe for
// concurrent reads; the summarization pipeline never mutates it.
type BundleSource interface {
	// Resolve returns the raw bundle bytes for a patient identifier.
	// Returns *UnknownPatientError when the identifier is not known.
	Resolve(ctx context.Context, patientID string) ([]byte, error)

	// Patients lists the identifiers this source can resolve, sorted.
	Patients() []string
}

// SummaryEngine is the engine's invocation surface: the two entry points
// exposed by the MCP and HTTP layers.
type SummaryEngine interface {
	// GeneratePatientSummary returns the 2-4 sentence clinician-facing
	// narrative for a patient.
	GeneratePatientSummary(ctx context.Context, patientID string) (string, error)

	// AnalyzePatientData returns the full structured report for a patient.
	AnalyzePatientData(ctx context.Context, patientID string) (*DetailedReport, error)

	// ListPatients lists the patient identifiers the engine can summarize.
	ListPatients() []string
}
