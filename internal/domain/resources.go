package domain

import "time"

// CodedConcept is a coded clinical concept with its originating code system,
// e.g. a SNOMED CT condition code or a LOINC laboratory code.
type CodedConcept struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

// PatientRecord holds the demographics extracted from a bundle's Patient
// resource. Immutable once loaded; owned by a single request pipeline.
type PatientRecord struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Condition is a diagnosed clinical condition belonging to one patient.
// Ordering is imposed by the prioritizer, never inherent to the data.
type Condition struct {
	ID             string         `json:"id"`
	Code           CodedConcept   `json:"code"`
	ClinicalStatus ClinicalStatus `json:"clinical_status"`
	Severity       Severity       `json:"severity"`
	OnsetDate      time.Time      `json:"onset_date,omitempty"` // zero when the bundle carries no onset
	OnsetRaw       string         `json:"-"`                    // original onsetDateTime text for reporting
	Subject        string         `json:"-"`                    // internal cross-reference, e.g. "Patient/p01"
}

// ReferenceRange is the normal low/high bounds for an observation value.
// Either bound may be absent.
type ReferenceRange struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
}

// Observation is a laboratory result belonging to one patient. The
// interpretation flag is never stored here: it is recomputed from the value
// and reference range on every request.
type Observation struct {
	ID             string          `json:"id"`
	Code           CodedConcept    `json:"code"`
	Value          float64         `json:"value"`
	HasValue       bool            `json:"-"` // false when the entry carried no numeric value
	Unit           string          `json:"unit,omitempty"`
	ReferenceRange *ReferenceRange `json:"reference_range,omitempty"`
	EffectiveDate  string          `json:"effective_date,omitempty"`
	Subject        string          `json:"-"`
}

// Bundle is a validated, typed view of a FHIR bundle's recognized resources.
// Unrecognized resource types are dropped during loading.
type Bundle struct {
	Patients     []PatientRecord
	Conditions   []Condition
	Observations []Observation
}

// PatientView is the per-patient extraction of a bundle: exactly one patient
// plus every condition and observation cross-referenced to it.
type PatientView struct {
	Patient      PatientRecord
	Conditions   []Condition
	Observations []Observation
}
