// Package domain contains the core business entities for FHIR patient record
// summarization: typed clinical resources, the enumerations used to rank
// conditions and interpret laboratory values, and the derived report structures
// returned to callers.
package domain

// ClinicalStatus represents whether a condition is currently active.
// Mirrors the FHIR condition-clinical code system values the engine recognizes.
type ClinicalStatus string

const (
	StatusActive   ClinicalStatus = "active"
	StatusInactive ClinicalStatus = "inactive"
	StatusResolved ClinicalStatus = "resolved"
	StatusUnknown  ClinicalStatus = "unknown"
)

// IsValid validates the clinical status against the recognized value set.
func (s ClinicalStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusResolved, StatusUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the clinical status.
func (s ClinicalStatus) String() string {
	return string(s)
}

// Rank returns the sort rank for condition prioritization.
// Active conditions always sort before inactive and resolved ones.
func (s ClinicalStatus) Rank() int {
	if s == StatusActive {
		return 0
	}
	return 1
}

// Severity represents the severity grading of a condition.
type Severity string

const (
	SeveritySevere      Severity = "severe"
	SeverityModerate    Severity = "moderate"
	SeverityMild        Severity = "mild"
	SeverityUnspecified Severity = "unspecified"
)

// IsValid validates the severity against the recognized value set.
func (s Severity) IsValid() bool {
	switch s {
	case SeveritySevere, SeverityModerate, SeverityMild, SeverityUnspecified:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Rank returns the sort rank for condition prioritization:
// severe > moderate > mild > unspecified.
func (s Severity) Rank() int {
	switch s {
	case SeveritySevere:
		return 0
	case SeverityModerate:
		return 1
	case SeverityMild:
		return 2
	default:
		return 3
	}
}

// Interpretation classifies an observation value against its reference range.
type Interpretation string

const (
	InterpretationNormal   Interpretation = "normal"
	InterpretationHigh     Interpretation = "high"
	InterpretationLow      Interpretation = "low"
	InterpretationCritical Interpretation = "critical"
	InterpretationUnknown  Interpretation = "unknown"
)

// IsValid validates the interpretation against the recognized value set.
func (i Interpretation) IsValid() bool {
	switch i {
	case InterpretationNormal, InterpretationHigh, InterpretationLow,
		InterpretationCritical, InterpretationUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the interpretation.
func (i Interpretation) String() string {
	return string(i)
}

// Display returns the clinician-facing capitalized form used in narratives,
// e.g. "High" for InterpretationHigh.
func (i Interpretation) Display() string {
	switch i {
	case InterpretationNormal:
		return "Normal"
	case InterpretationHigh:
		return "High"
	case InterpretationLow:
		return "Low"
	case InterpretationCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}
