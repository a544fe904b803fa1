package fhir

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patient-summary-mcp-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// stubSource resolves a single in-memory bundle.
type stubSource struct {
	patientID string
	content   []byte
}

func (s *stubSource) Resolve(_ context.Context, patientID string) ([]byte, error) {
	if patientID != s.patientID {
		return nil, &domain.UnknownPatientError{PatientID: patientID}
	}
	return s.content, nil
}

func (s *stubSource) Patients() []string {
	return []string{s.patientID}
}

const sampleBundle = `{
	"resourceType": "Bundle",
	"type": "collection",
	"entry": [
		{
			"resource": {
				"resourceType": "Patient",
				"id": "p01",
				"name": [{"given": ["John"], "family": "Doe"}],
				"birthDate": "1958-03-12",
				"gender": "male",
				"address": [{"line": ["12 Elm St"], "city": "Springfield", "state": "IL", "postalCode": "62701"}],
				"telecom": [{"system": "phone", "value": "555-0101"}]
			}
		},
		{
			"resource": {
				"resourceType": "Condition",
				"id": "c1",
				"code": {"coding": [{"system": "http://snomed.info/sct", "code": "53741008", "display": "Coronary artery disease"}]},
				"clinicalStatus": {"coding": [{"code": "active"}]},
				"severity": {"coding": [{"code": "24484000", "display": "Severe"}]},
				"onsetDateTime": "2019-06-01",
				"subject": {"reference": "Patient/p01"}
			}
		},
		{
			"resource": {
				"resourceType": "Observation",
				"id": "o1",
				"code": {"coding": [{"system": "http://loinc.org", "code": "6598-7", "display": "Troponin T"}]},
				"valueQuantity": {"value": 0.08, "unit": "ng/mL"},
				"referenceRange": [{"low": {"value": 0}, "high": {"value": 0.01}}],
				"effectiveDateTime": "2024-02-10",
				"subject": {"reference": "Patient/p01"}
			}
		},
		{
			"resource": {
				"resourceType": "MedicationRequest",
				"id": "m1"
			}
		}
	]
}`

func TestLoader_Parse_ValidBundle(t *testing.T) {
	loader := NewLoader(nil, testLogger())

	bundle, err := loader.Parse("p01", []byte(sampleBundle))

	require.NoError(t, err)
	require.Len(t, bundle.Patients, 1)
	require.Len(t, bundle.Conditions, 1)
	require.Len(t, bundle.Observations, 1)

	patient := bundle.Patients[0]
	assert.Equal(t, "p01", patient.ID)
	assert.Equal(t, "John Doe", patient.FullName)
	assert.Equal(t, "1958-03-12", patient.BirthDate)
	assert.Equal(t, "male", patient.Gender)
	assert.Equal(t, "12 Elm St, Springfield, IL, 62701", patient.Address)
	assert.Equal(t, "555-0101", patient.Phone)

	condition := bundle.Conditions[0]
	assert.Equal(t, "53741008", condition.Code.Code)
	assert.Equal(t, "Coronary artery disease", condition.Code.Display)
	assert.Equal(t, domain.StatusActive, condition.ClinicalStatus)
	assert.Equal(t, domain.SeveritySevere, condition.Severity)
	assert.Equal(t, 2019, condition.OnsetDate.Year())
	assert.Equal(t, "Patient/p01", condition.Subject)

	observation := bundle.Observations[0]
	assert.Equal(t, "6598-7", observation.Code.Code)
	assert.True(t, observation.HasValue)
	assert.InDelta(t, 0.08, observation.Value, 1e-9)
	assert.Equal(t, "ng/mL", observation.Unit)
	require.NotNil(t, observation.ReferenceRange)
	require.NotNil(t, observation.ReferenceRange.High)
	assert.InDelta(t, 0.01, *observation.ReferenceRange.High, 1e-9)
}

func TestLoader_Parse_InvalidJSON(t *testing.T) {
	loader := NewLoader(nil, testLogger())

	_, err := loader.Parse("p01", []byte("{not json"))

	var malformed *domain.MalformedBundleError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "p01", malformed.PatientID)
}

func TestLoader_Parse_MissingEntryCollection(t *testing.T) {
	loader := NewLoader(nil, testLogger())

	_, err := loader.Parse("p01", []byte(`{"resourceType": "Bundle", "type": "collection"}`))

	var malformed *domain.MalformedBundleError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "entry")
}

func TestLoader_Parse_EmptyEntryCollection(t *testing.T) {
	loader := NewLoader(nil, testLogger())

	bundle, err := loader.Parse("p01", []byte(`{"resourceType": "Bundle", "entry": []}`))

	// An empty entry list is a valid bundle, just a useless one.
	require.NoError(t, err)
	assert.Empty(t, bundle.Patients)
}

func TestLoader_Parse_SkipsMalformedEntries(t *testing.T) {
	content := `{
		"resourceType": "Bundle",
		"entry": [
			{"resource": {"resourceType": "Patient", "id": "p01"}},
			{"resource": {"resourceType": "Condition", "id": "c1", "code": {"coding": []}}},
			{"resource": {"resourceType": "Observation", "id": "o1", "code": {}}},
			{}
		]
	}`
	loader := NewLoader(nil, testLogger())

	bundle, err := loader.Parse("p01", []byte(content))

	require.NoError(t, err)
	assert.Len(t, bundle.Patients, 1)
	assert.Empty(t, bundle.Conditions, "condition without a coded concept should be dropped")
	assert.Empty(t, bundle.Observations, "observation without a coded concept should be dropped")
}

func TestLoader_Parse_ObservationWithoutValue(t *testing.T) {
	content := `{
		"resourceType": "Bundle",
		"entry": [
			{"resource": {"resourceType": "Observation", "id": "o1",
				"code": {"coding": [{"code": "718-7", "display": "Hemoglobin"}]}}}
		]
	}`
	loader := NewLoader(nil, testLogger())

	bundle, err := loader.Parse("p01", []byte(content))

	require.NoError(t, err)
	require.Len(t, bundle.Observations, 1)
	assert.False(t, bundle.Observations[0].HasValue)
}

func TestLoader_Load_UnknownPatientPassesThrough(t *testing.T) {
	source := &stubSource{patientID: "p01", content: []byte(sampleBundle)}
	loader := NewLoader(source, testLogger())

	_, err := loader.Load(context.Background(), "p99")

	var unknown *domain.UnknownPatientError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "p99", unknown.PatientID)
}

func TestParseClinicalStatus(t *testing.T) {
	tests := []struct {
		code   string
		status domain.ClinicalStatus
	}{
		{"active", domain.StatusActive},
		{"recurrence", domain.StatusActive},
		{"relapse", domain.StatusActive},
		{"resolved", domain.StatusResolved},
		{"inactive", domain.StatusInactive},
		{"remission", domain.StatusInactive},
		{"", domain.StatusUnknown},
		{"garbage", domain.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			concept := &rawCodeableConcept{Coding: []rawCoding{{Code: tt.code}}}
			assert.Equal(t, tt.status, parseClinicalStatus(concept))
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name     string
		coding   rawCoding
		severity domain.Severity
	}{
		{"severe by SNOMED code", rawCoding{Code: "24484000"}, domain.SeveritySevere},
		{"moderate by SNOMED code", rawCoding{Code: "6736007"}, domain.SeverityModerate},
		{"mild by SNOMED code", rawCoding{Code: "255604002"}, domain.SeverityMild},
		{"severe by display", rawCoding{Display: "Severe"}, domain.SeveritySevere},
		{"absent severity", rawCoding{}, domain.SeverityUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			concept := &rawCodeableConcept{Coding: []rawCoding{tt.coding}}
			assert.Equal(t, tt.severity, parseSeverity(concept))
		})
	}
}

func TestParseOnset(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
		year  int
	}{
		{"2019-06-01T10:30:00Z", true, 2019},
		{"2019-06-01", true, 2019},
		{"2019-06", true, 2019},
		{"2019", true, 2019},
		{"", false, 0},
		{"June 2019", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			parsed, ok := parseOnset(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.year, parsed.Year())
			} else {
				assert.Equal(t, time.Time{}, parsed)
			}
		})
	}
}

func TestFormatName_FallsBackToText(t *testing.T) {
	names := []rawHumanName{{Text: "Jane Q. Public"}}
	assert.Equal(t, "Jane Q. Public", formatName(names))

	assert.Equal(t, "", formatName(nil))
}
