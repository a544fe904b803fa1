package domain

import "time"

// InterpretedObservation pairs an observation with its computed interpretation
// and clinical-significance flags. Derived per request, never persisted.
type InterpretedObservation struct {
	Observation    Observation    `json:"observation"`
	Interpretation Interpretation `json:"interpretation"`
	// Significant is set when the value falls outside its reference range or
	// the observation code is on the always-significant marker list.
	Significant bool `json:"significant"`
	// OutOfRange distinguishes range-driven significance from marker-driven
	// significance; it drives the surfacing order for narrative use.
	OutOfRange bool `json:"out_of_range"`
	// AlwaysSignificant is set when the code is on the fixed marker allow-list.
	AlwaysSignificant bool `json:"always_significant"`
}

// Demographics is the patient identity block of a detailed report.
type Demographics struct {
	PatientID string `json:"patient_id"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Address   string `json:"address,omitempty"`
}

// ConditionDetail is one condition row of a detailed report.
type ConditionDetail struct {
	Code           string `json:"code"`
	System         string `json:"system,omitempty"`
	Display        string `json:"display"`
	ClinicalStatus string `json:"clinical_status"`
	Severity       string `json:"severity"`
	OnsetDate      string `json:"onset_date,omitempty"`
}

// ObservationDetail is one laboratory row of a detailed report, annotated
// with its reference range when known and its computed interpretation.
type ObservationDetail struct {
	Code           string   `json:"code"`
	System         string   `json:"system,omitempty"`
	Display        string   `json:"display"`
	Value          *float64 `json:"value,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	ReferenceLow   *float64 `json:"reference_low,omitempty"`
	ReferenceHigh  *float64 `json:"reference_high,omitempty"`
	Interpretation string   `json:"interpretation"`
	Significant    bool     `json:"significant"`
	EffectiveDate  string   `json:"effective_date,omitempty"`
}

// DetailedReport is the audit-grade structured counterpart to the narrative
// summary: demographics, every condition, and every observation from the
// source bundle, with nothing summarized away.
type DetailedReport struct {
	Demographics      Demographics        `json:"demographics"`
	Conditions        []ConditionDetail   `json:"conditions"`
	Observations      []ObservationDetail `json:"observations"`
	MedicationClasses []string            `json:"likely_medication_classes,omitempty"`
	GeneratedAt       time.Time           `json:"generated_at"`
}
