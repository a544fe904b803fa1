package service

import (
	"time"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// DetailedReportComposer builds the audit-grade structured report. Unlike the
// narrative it never truncates: every condition and every observation from
// the bundle appears, in bundle order.
type DetailedReportComposer struct{}

// NewDetailedReportComposer creates a report composer.
func NewDetailedReportComposer() *DetailedReportComposer {
	return &DetailedReportComposer{}
}

// Compose assembles the report from the extracted patient view, the
// prioritized conditions, the interpreted observations in bundle order, and
// the inferred medication classes.
func (c *DetailedReportComposer) Compose(
	patient domain.PatientRecord,
	prioritized []domain.Condition,
	interpreted []domain.InterpretedObservation,
	medicationClasses []string,
) *domain.DetailedReport {
	report := &domain.DetailedReport{
		Demographics: domain.Demographics{
			PatientID: patient.ID,
			FullName:  patient.FullName,
			BirthDate: patient.BirthDate,
			Gender:    patient.Gender,
			Address:   patient.Address,
		},
		Conditions:        make([]domain.ConditionDetail, 0, len(prioritized)),
		Observations:      make([]domain.ObservationDetail, 0, len(interpreted)),
		MedicationClasses: medicationClasses,
		GeneratedAt:       time.Now().UTC(),
	}

	for _, condition := range prioritized {
		report.Conditions = append(report.Conditions, domain.ConditionDetail{
			Code:           condition.Code.Code,
			System:         condition.Code.System,
			Display:        condition.Code.Display,
			ClinicalStatus: condition.ClinicalStatus.String(),
			Severity:       condition.Severity.String(),
			OnsetDate:      condition.OnsetRaw,
		})
	}

	for _, io := range interpreted {
		detail := domain.ObservationDetail{
			Code:           io.Observation.Code.Code,
			System:         io.Observation.Code.System,
			Display:        io.Observation.Code.Display,
			Unit:           io.Observation.Unit,
			Interpretation: io.Interpretation.String(),
			Significant:    io.Significant,
			EffectiveDate:  io.Observation.EffectiveDate,
		}
		if io.Observation.HasValue {
			value := io.Observation.Value
			detail.Value = &value
		}
		if rng := io.Observation.ReferenceRange; rng != nil {
			detail.ReferenceLow = rng.Low
			detail.ReferenceHigh = rng.High
		}
		report.Observations = append(report.Observations, detail)
	}

	return report
}
