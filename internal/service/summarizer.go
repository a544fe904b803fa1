package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
	"github.com/patient-summary-mcp-server/internal/fhir"
)

// Options controls how much of a record the narrative surfaces.
type Options struct {
	// TopDiagnoses is the number of prioritized conditions named in the
	// narrative's opening sentence.
	TopDiagnoses int
	// TopLabFindings is the number of significant laboratory results named in
	// the narrative's findings sentence.
	TopLabFindings int
}

// DefaultOptions returns the standard narrative sizing.
func DefaultOptions() Options {
	return Options{
		TopDiagnoses:   3,
		TopLabFindings: 4,
	}
}

// Summarizer is the summarization engine. It wires the loader, extractor,
// prioritizer, interpreter, inferencer, and composers into the two entry
// points and holds no per-request state, so a single instance serves
// concurrent requests.
type Summarizer struct {
	loader      *fhir.Loader
	extractor   *fhir.Extractor
	prioritizer *ConditionPrioritizer
	labs        *LabInterpreter
	medications *MedicationInferencer
	narrative   *NarrativeComposer
	report      *DetailedReportComposer
	source      domain.BundleSource
	logger      *logrus.Logger
}

// NewSummarizer creates the engine on top of a bundle source.
func NewSummarizer(source domain.BundleSource, opts Options, logger *logrus.Logger) *Summarizer {
	if opts.TopDiagnoses <= 0 {
		opts.TopDiagnoses = DefaultOptions().TopDiagnoses
	}
	if opts.TopLabFindings <= 0 {
		opts.TopLabFindings = DefaultOptions().TopLabFindings
	}

	return &Summarizer{
		loader:      fhir.NewLoader(source, logger),
		extractor:   fhir.NewExtractor(logger),
		prioritizer: NewConditionPrioritizer(logger),
		labs:        NewLabInterpreter(logger),
		medications: NewMedicationInferencer(logger),
		narrative:   NewNarrativeComposer(opts.TopDiagnoses, opts.TopLabFindings),
		report:      NewDetailedReportComposer(),
		source:      source,
		logger:      logger,
	}
}

// GeneratePatientSummary produces the clinician-facing narrative for a
// patient.
func (s *Summarizer) GeneratePatientSummary(ctx context.Context, patientID string) (string, error) {
	start := time.Now()
	s.logger.WithField("patient_id", patientID).Info("Generating patient summary")

	view, err := s.resolve(ctx, patientID)
	if err != nil {
		s.logger.WithField("patient_id", patientID).WithError(err).Warn("Summary generation failed")
		return "", err
	}

	prioritized := s.prioritizer.Prioritize(view.Conditions)
	interpreted := s.labs.InterpretAll(view.Observations)
	surfaced := SurfaceSignificant(interpreted)
	classes := s.medications.Infer(prioritized)

	summary := s.narrative.Compose(view.Patient, prioritized, surfaced, classes)

	s.logger.WithFields(logrus.Fields{
		"patient_id":  patientID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Patient summary generated")

	return summary, nil
}

// AnalyzePatientData produces the full structured report for a patient.
func (s *Summarizer) AnalyzePatientData(ctx context.Context, patientID string) (*domain.DetailedReport, error) {
	start := time.Now()
	s.logger.WithField("patient_id", patientID).Info("Analyzing patient data")

	view, err := s.resolve(ctx, patientID)
	if err != nil {
		s.logger.WithField("patient_id", patientID).WithError(err).Warn("Patient analysis failed")
		return nil, err
	}

	prioritized := s.prioritizer.Prioritize(view.Conditions)
	interpreted := s.labs.InterpretAll(view.Observations)
	classes := s.medications.Infer(prioritized)

	report := s.report.Compose(view.Patient, prioritized, interpreted, classes)

	s.logger.WithFields(logrus.Fields{
		"patient_id":   patientID,
		"conditions":   len(report.Conditions),
		"observations": len(report.Observations),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Patient analysis completed")

	return report, nil
}

// ListPatients lists the patient identifiers the engine can summarize.
func (s *Summarizer) ListPatients() []string {
	return s.source.Patients()
}

// resolve runs the shared front half of both pipelines: load, parse, and
// extract the per-patient view.
func (s *Summarizer) resolve(ctx context.Context, patientID string) (*domain.PatientView, error) {
	bundle, err := s.loader.Load(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(patientID, bundle)
}
