package fhir

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// Extractor indexes a loaded bundle into a per-patient view: exactly one
// patient, plus every condition and observation cross-referenced to it.
type Extractor struct {
	logger *logrus.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(logger *logrus.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract builds the per-patient view. Bundles with zero or multiple Patient
// resources are ambiguous and rejected with *domain.MissingResourceError.
// Conditions and observations whose subject references a different patient
// are dropped, not errors.
func (e *Extractor) Extract(patientID string, bundle *domain.Bundle) (*domain.PatientView, error) {
	if len(bundle.Patients) != 1 {
		return nil, &domain.MissingResourceError{
			PatientID:    patientID,
			ResourceType: resourcePatient,
			Count:        len(bundle.Patients),
		}
	}

	patient := bundle.Patients[0]
	view := &domain.PatientView{Patient: patient}
	dropped := 0

	for _, condition := range bundle.Conditions {
		if !refersToPatient(condition.Subject, patient.ID) {
			dropped++
			continue
		}
		view.Conditions = append(view.Conditions, condition)
	}

	for _, observation := range bundle.Observations {
		if !refersToPatient(observation.Subject, patient.ID) {
			dropped++
			continue
		}
		view.Observations = append(view.Observations, observation)
	}

	if dropped > 0 {
		e.logger.WithFields(logrus.Fields{
			"patient_id": patientID,
			"dropped":    dropped,
		}).Warn("Dropped resources referencing a different patient")
	}

	return view, nil
}

// refersToPatient reports whether a subject reference resolves to the given
// patient. An empty reference belongs to the bundle's single patient by
// construction.
func refersToPatient(subject, patientID string) bool {
	if subject == "" {
		return true
	}
	if subject == patientID || subject == resourcePatient+"/"+patientID {
		return true
	}
	return strings.HasSuffix(subject, "/"+patientID)
}
