package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patient-summary-mcp-server/internal/domain"
)

func TestJoinNatural(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"empty", nil, ""},
		{"one", []string{"A"}, "A"},
		{"two", []string{"A", "B"}, "A and B"},
		{"three", []string{"A", "B", "C"}, "A, B and C"},
		{"four", []string{"A", "B", "C", "D"}, "A, B, C and D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinNatural(tt.items))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "95", formatValue(95))
	assert.Equal(t, "0.08", formatValue(0.08))
	assert.Equal(t, "6.5", formatValue(6.5))
}

func TestCompose_FullNarrative(t *testing.T) {
	c := NewNarrativeComposer(3, 4)
	patient := domain.PatientRecord{ID: "p01", FullName: "John Doe"}
	conditions := []domain.Condition{
		coded("53741008", "Coronary artery disease"),
		coded("84114007", "Heart failure"),
		coded("38341003", "Hypertension"),
	}
	surfaced := []domain.InterpretedObservation{
		{
			Observation: domain.Observation{
				Code: domain.CodedConcept{Code: "6598-7", Display: "Troponin T"},
				Value: 0.08, HasValue: true, Unit: "ng/mL",
			},
			Interpretation: domain.InterpretationHigh,
			Significant:    true,
			OutOfRange:     true,
		},
		{
			Observation: domain.Observation{
				Code: domain.CodedConcept{Code: "30934-4", Display: "B-type natriuretic peptide"},
				Value: 450, HasValue: true, Unit: "pg/mL",
			},
			Interpretation: domain.InterpretationHigh,
			Significant:    true,
			OutOfRange:     true,
		},
	}

	narrative := c.Compose(patient, conditions, surfaced, []string{"cardiovascular medications"})

	assert.Equal(t,
		"John Doe is a patient with Coronary artery disease, Heart failure and Hypertension. "+
			"Key laboratory findings include Troponin T (0.08 ng/mL) - High and "+
			"B-type natriuretic peptide (450 pg/mL) - High. "+
			"The patient is likely on cardiovascular medications.",
		narrative)
}

func TestCompose_NoConditions(t *testing.T) {
	c := NewNarrativeComposer(3, 4)
	patient := domain.PatientRecord{ID: "p01", FullName: "Jane Roe"}

	narrative := c.Compose(patient, nil, nil, nil)

	assert.Equal(t, "Jane Roe is a patient with no significant diagnoses on record.", narrative)
}

func TestCompose_TruncatesDiagnoses(t *testing.T) {
	c := NewNarrativeComposer(2, 4)
	patient := domain.PatientRecord{ID: "p01", FullName: "Jane Roe"}
	conditions := []domain.Condition{
		coded("1", "First"),
		coded("2", "Second"),
		coded("3", "Third"),
	}

	narrative := c.Compose(patient, conditions, nil, nil)

	assert.Equal(t, "Jane Roe is a patient with First and Second.", narrative)
}

func TestCompose_TruncatesLabFindings(t *testing.T) {
	c := NewNarrativeComposer(3, 1)
	patient := domain.PatientRecord{ID: "p01", FullName: "Jane Roe"}
	surfaced := []domain.InterpretedObservation{
		{
			Observation: domain.Observation{
				Code: domain.CodedConcept{Display: "Sodium"}, Value: 150, HasValue: true, Unit: "mmol/L",
			},
			Interpretation: domain.InterpretationHigh,
			Significant:    true, OutOfRange: true,
		},
		{
			Observation: domain.Observation{
				Code: domain.CodedConcept{Display: "Glucose"}, Value: 120, HasValue: true, Unit: "mg/dL",
			},
			Interpretation: domain.InterpretationHigh,
			Significant:    true, OutOfRange: true,
		},
	}

	narrative := c.Compose(patient, []domain.Condition{coded("", "Dehydration")}, surfaced, nil)

	assert.Contains(t, narrative, "Sodium (150 mmol/L) - High")
	assert.NotContains(t, narrative, "Glucose")
}

func TestCompose_SkipsInsignificantFindings(t *testing.T) {
	c := NewNarrativeComposer(3, 4)
	patient := domain.PatientRecord{ID: "p01", FullName: "Jane Roe"}
	surfaced := []domain.InterpretedObservation{
		{
			Observation: domain.Observation{
				Code: domain.CodedConcept{Display: "Potassium"}, Value: 4.2, HasValue: true,
			},
			Interpretation: domain.InterpretationNormal,
		},
	}

	narrative := c.Compose(patient, []domain.Condition{coded("", "Fatigue")}, surfaced, nil)

	// No significant findings: the lab sentence is omitted entirely.
	assert.Equal(t, "Jane Roe is a patient with Fatigue.", narrative)
}

func TestCompose_FallsBackToPatientID(t *testing.T) {
	c := NewNarrativeComposer(3, 4)
	patient := domain.PatientRecord{ID: "p01"}

	narrative := c.Compose(patient, nil, nil, nil)

	assert.Equal(t, "Patient p01 is a patient with no significant diagnoses on record.", narrative)
}
