package service

import (
	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// alwaysSignificantCodes is the fixed allow-list of LOINC codes surfaced as
// clinically significant even when the value falls inside its reference
// range: cardiac and inflammatory markers plus the core metabolic panel.
var alwaysSignificantCodes = map[string]string{
	"6598-7":  "Troponin T",
	"10839-9": "Troponin I",
	"89579-7": "High-sensitivity Troponin I",
	"30934-4": "B-type natriuretic peptide",
	"33762-6": "NT-proBNP",
	"1988-5":  "C-reactive protein",
	"2345-7":  "Glucose",
	"4548-4":  "Hemoglobin A1c",
	"2160-0":  "Creatinine",
	"718-7":   "Hemoglobin",
	"2093-3":  "Total cholesterol",
}

// LabInterpreter classifies observation values against their reference ranges
// and flags clinically significant results.
type LabInterpreter struct {
	logger *logrus.Logger
}

// NewLabInterpreter creates a lab interpreter.
func NewLabInterpreter(logger *logrus.Logger) *LabInterpreter {
	return &LabInterpreter{logger: logger}
}

// Interpret classifies a value against a reference range. It is a pure
// function: the result depends only on its arguments.
func Interpret(value float64, rng *domain.ReferenceRange) domain.Interpretation {
	if rng == nil {
		return domain.InterpretationUnknown
	}
	if rng.Low != nil && value < *rng.Low {
		return domain.InterpretationLow
	}
	if rng.High != nil && value > *rng.High {
		return domain.InterpretationHigh
	}
	return domain.InterpretationNormal
}

// InterpretAll interprets every observation, preserving bundle order. The
// detailed report consumes this list directly; the narrative reorders it via
// SurfaceSignificant.
func (li *LabInterpreter) InterpretAll(observations []domain.Observation) []domain.InterpretedObservation {
	interpreted := make([]domain.InterpretedObservation, 0, len(observations))
	significant := 0

	for _, obs := range observations {
		result := li.interpretOne(obs)
		if result.Significant {
			significant++
		}
		interpreted = append(interpreted, result)
	}

	li.logger.WithFields(logrus.Fields{
		"observation_count": len(interpreted),
		"significant_count": significant,
	}).Debug("Interpreted observations")

	return interpreted
}

// interpretOne computes the interpretation and significance flags for a
// single observation.
func (li *LabInterpreter) interpretOne(obs domain.Observation) domain.InterpretedObservation {
	interpretation := domain.InterpretationUnknown
	if obs.HasValue {
		interpretation = Interpret(obs.Value, obs.ReferenceRange)
	}

	outOfRange := interpretation == domain.InterpretationLow ||
		interpretation == domain.InterpretationHigh ||
		interpretation == domain.InterpretationCritical
	_, always := alwaysSignificantCodes[obs.Code.Code]

	return domain.InterpretedObservation{
		Observation:       obs,
		Interpretation:    interpretation,
		Significant:       outOfRange || always,
		OutOfRange:        outOfRange,
		AlwaysSignificant: always,
	}
}

// SurfaceSignificant reorders interpreted observations for narrative use:
// out-of-range results first, then in-range always-significant markers, then
// everything else. Each group keeps its original relative order.
func SurfaceSignificant(interpreted []domain.InterpretedObservation) []domain.InterpretedObservation {
	surfaced := make([]domain.InterpretedObservation, 0, len(interpreted))
	for _, io := range interpreted {
		if io.OutOfRange {
			surfaced = append(surfaced, io)
		}
	}
	for _, io := range interpreted {
		if !io.OutOfRange && io.AlwaysSignificant {
			surfaced = append(surfaced, io)
		}
	}
	for _, io := range interpreted {
		if !io.Significant {
			surfaced = append(surfaced, io)
		}
	}
	return surfaced
}
