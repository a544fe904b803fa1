package fhir

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// Recognized resource type discriminators.
const (
	resourcePatient     = "Patient"
	resourceCondition   = "Condition"
	resourceObservation = "Observation"
)

// onsetLayouts are the date formats accepted for onsetDateTime, most specific
// first.
var onsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Loader turns raw bundle content into a validated typed bundle. It is
// stateless apart from its collaborators and safe for concurrent use.
type Loader struct {
	source domain.BundleSource
	logger *logrus.Logger
}

// NewLoader creates a loader backed by the given bundle source.
func NewLoader(source domain.BundleSource, logger *logrus.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger,
	}
}

// Load resolves a patient identifier to raw content and parses it into a
// typed bundle. Resolution failures pass through unchanged so the caller sees
// the source's UnknownPatientError directly.
func (l *Loader) Load(ctx context.Context, patientID string) (*domain.Bundle, error) {
	content, err := l.source.Resolve(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return l.Parse(patientID, content)
}

// Parse validates raw bundle content and extracts the recognized resources.
// Returns *domain.MalformedBundleError when the content is not valid JSON or
// lacks an entry collection. Individually malformed entries are skipped.
func (l *Loader) Parse(patientID string, content []byte) (*domain.Bundle, error) {
	var raw rawBundle
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &domain.MalformedBundleError{
			PatientID: patientID,
			Reason:    "content is not valid JSON",
			Err:       err,
		}
	}

	if raw.Entry == nil {
		return nil, &domain.MalformedBundleError{
			PatientID: patientID,
			Reason:    "bundle has no entry collection",
		}
	}

	bundle := &domain.Bundle{}
	skipped := 0

	for i, entry := range raw.Entry {
		if len(entry.Resource) == 0 {
			skipped++
			continue
		}

		var header rawResourceHeader
		if err := json.Unmarshal(entry.Resource, &header); err != nil {
			l.logger.WithFields(logrus.Fields{
				"patient_id": patientID,
				"entry":      i,
			}).WithError(err).Debug("Skipping unreadable bundle entry")
			skipped++
			continue
		}

		switch header.ResourceType {
		case resourcePatient:
			patient, ok := l.parsePatient(entry.Resource)
			if !ok {
				skipped++
				continue
			}
			bundle.Patients = append(bundle.Patients, patient)

		case resourceCondition:
			condition, ok := l.parseCondition(entry.Resource)
			if !ok {
				skipped++
				continue
			}
			bundle.Conditions = append(bundle.Conditions, condition)

		case resourceObservation:
			observation, ok := l.parseObservation(entry.Resource)
			if !ok {
				skipped++
				continue
			}
			bundle.Observations = append(bundle.Observations, observation)

		default:
			// Unrecognized resource types are ignored, not errors.
		}
	}

	l.logger.WithFields(logrus.Fields{
		"patient_id":   patientID,
		"patients":     len(bundle.Patients),
		"conditions":   len(bundle.Conditions),
		"observations": len(bundle.Observations),
		"skipped":      skipped,
	}).Debug("Parsed bundle")

	return bundle, nil
}

// parsePatient decodes a Patient entry. Entries without an id are malformed
// and dropped.
func (l *Loader) parsePatient(resource json.RawMessage) (domain.PatientRecord, bool) {
	var raw rawPatient
	if err := json.Unmarshal(resource, &raw); err != nil || raw.ID == "" {
		l.logger.WithError(err).Debug("Skipping malformed Patient entry")
		return domain.PatientRecord{}, false
	}

	record := domain.PatientRecord{
		ID:        raw.ID,
		FullName:  formatName(raw.Name),
		BirthDate: raw.BirthDate,
		Gender:    raw.Gender,
		Address:   formatAddress(raw.Address),
	}
	for _, t := range raw.Telecom {
		if t.System == "phone" {
			record.Phone = t.Value
			break
		}
	}
	return record, true
}

// parseCondition decodes a Condition entry. A condition without a coded
// concept carries no clinical meaning and is dropped.
func (l *Loader) parseCondition(resource json.RawMessage) (domain.Condition, bool) {
	var raw rawCondition
	if err := json.Unmarshal(resource, &raw); err != nil {
		l.logger.WithError(err).Debug("Skipping malformed Condition entry")
		return domain.Condition{}, false
	}

	coding := raw.Code.primaryCoding()
	if coding.Code == "" && coding.Display == "" {
		l.logger.WithField("condition_id", raw.ID).Debug("Skipping Condition entry without a coded concept")
		return domain.Condition{}, false
	}

	condition := domain.Condition{
		ID: raw.ID,
		Code: domain.CodedConcept{
			System:  coding.System,
			Code:    coding.Code,
			Display: coding.Display,
		},
		ClinicalStatus: parseClinicalStatus(raw.ClinicalStatus),
		Severity:       parseSeverity(raw.Severity),
		OnsetRaw:       raw.OnsetDateTime,
	}
	if raw.Subject != nil {
		condition.Subject = raw.Subject.Reference
	}
	if onset, ok := parseOnset(raw.OnsetDateTime); ok {
		condition.OnsetDate = onset
	}
	return condition, true
}

// parseObservation decodes an Observation entry. An observation without a
// coded concept is dropped; one without a numeric value is kept and later
// interpreted as unknown.
func (l *Loader) parseObservation(resource json.RawMessage) (domain.Observation, bool) {
	var raw rawObservation
	if err := json.Unmarshal(resource, &raw); err != nil {
		l.logger.WithError(err).Debug("Skipping malformed Observation entry")
		return domain.Observation{}, false
	}

	coding := raw.Code.primaryCoding()
	if coding.Code == "" && coding.Display == "" {
		l.logger.WithField("observation_id", raw.ID).Debug("Skipping Observation entry without a coded concept")
		return domain.Observation{}, false
	}

	observation := domain.Observation{
		ID: raw.ID,
		Code: domain.CodedConcept{
			System:  coding.System,
			Code:    coding.Code,
			Display: coding.Display,
		},
		EffectiveDate: raw.EffectiveDateTime,
	}
	if raw.Subject != nil {
		observation.Subject = raw.Subject.Reference
	}
	if raw.ValueQuantity != nil && raw.ValueQuantity.Value != nil {
		observation.Value = *raw.ValueQuantity.Value
		observation.HasValue = true
		observation.Unit = raw.ValueQuantity.Unit
	}
	if len(raw.ReferenceRange) > 0 {
		rr := raw.ReferenceRange[0]
		rng := &domain.ReferenceRange{}
		if rr.Low != nil && rr.Low.Value != nil {
			low := *rr.Low.Value
			rng.Low = &low
		}
		if rr.High != nil && rr.High.Value != nil {
			high := *rr.High.Value
			rng.High = &high
		}
		if rng.Low != nil || rng.High != nil {
			observation.ReferenceRange = rng
		}
	}
	return observation, true
}

// parseClinicalStatus maps the FHIR condition-clinical coding onto the
// recognized status set. Unknown codes degrade to StatusUnknown rather than
// failing the entry.
func parseClinicalStatus(concept *rawCodeableConcept) domain.ClinicalStatus {
	coding := concept.primaryCoding()
	code := strings.ToLower(coding.Code)
	if code == "" {
		code = strings.ToLower(coding.Display)
	}

	switch code {
	case "active", "recurrence", "relapse":
		return domain.StatusActive
	case "resolved":
		return domain.StatusResolved
	case "inactive", "remission":
		return domain.StatusInactive
	default:
		return domain.StatusUnknown
	}
}

// parseSeverity maps the FHIR severity coding (SNOMED CT codes or display
// text) onto the recognized severity set.
func parseSeverity(concept *rawCodeableConcept) domain.Severity {
	coding := concept.primaryCoding()

	switch coding.Code {
	case "24484000":
		return domain.SeveritySevere
	case "6736007":
		return domain.SeverityModerate
	case "255604002":
		return domain.SeverityMild
	}

	switch strings.ToLower(coding.Display) {
	case "severe":
		return domain.SeveritySevere
	case "moderate":
		return domain.SeverityModerate
	case "mild":
		return domain.SeverityMild
	default:
		return domain.SeverityUnspecified
	}
}

// parseOnset parses an onsetDateTime string against the accepted layouts.
func parseOnset(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range onsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatName renders the first HumanName as "Given Family", falling back to
// the free-text form.
func formatName(names []rawHumanName) string {
	if len(names) == 0 {
		return ""
	}
	name := names[0]
	parts := make([]string, 0, len(name.Given)+1)
	parts = append(parts, name.Given...)
	if name.Family != "" {
		parts = append(parts, name.Family)
	}
	full := strings.TrimSpace(strings.Join(parts, " "))
	if full == "" {
		return name.Text
	}
	return full
}

// formatAddress renders the first address as a single display line.
func formatAddress(addresses []rawAddress) string {
	if len(addresses) == 0 {
		return ""
	}
	addr := addresses[0]
	parts := make([]string, 0, len(addr.Line)+3)
	parts = append(parts, addr.Line...)
	for _, p := range []string{addr.City, addr.State, addr.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
