package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// NarrativeComposer renders the clinician-facing summary: two to four plain
// sentences covering diagnoses, key laboratory findings, and likely
// medication classes. Composition is deterministic; identical inputs always
// produce the identical narrative.
type NarrativeComposer struct {
	topDiagnoses   int
	topLabFindings int
}

// NewNarrativeComposer creates a composer that surfaces at most topDiagnoses
// conditions and topLabFindings laboratory results.
func NewNarrativeComposer(topDiagnoses, topLabFindings int) *NarrativeComposer {
	return &NarrativeComposer{
		topDiagnoses:   topDiagnoses,
		topLabFindings: topLabFindings,
	}
}

// Compose builds the narrative from prioritized conditions, interpreted
// observations in surfaced order, and inferred medication classes. Sections
// with no content are omitted rather than rendered empty.
func (c *NarrativeComposer) Compose(
	patient domain.PatientRecord,
	prioritized []domain.Condition,
	surfaced []domain.InterpretedObservation,
	medicationClasses []string,
) string {
	sentences := []string{c.diagnosisSentence(patient, prioritized)}

	if s := c.labSentence(surfaced); s != "" {
		sentences = append(sentences, s)
	}
	if len(medicationClasses) > 0 {
		sentences = append(sentences,
			fmt.Sprintf("The patient is likely on %s.", joinNatural(medicationClasses)))
	}

	return strings.Join(sentences, " ")
}

// diagnosisSentence renders the opening sentence naming the patient and the
// major diagnoses.
func (c *NarrativeComposer) diagnosisSentence(patient domain.PatientRecord, prioritized []domain.Condition) string {
	name := patient.FullName
	if name == "" {
		name = "Patient " + patient.ID
	}

	if len(prioritized) == 0 {
		return fmt.Sprintf("%s is a patient with no significant diagnoses on record.", name)
	}

	major := MajorDiagnoses(prioritized, c.topDiagnoses)
	displays := make([]string, 0, len(major))
	for _, condition := range major {
		display := condition.Code.Display
		if display == "" {
			display = condition.Code.Code
		}
		displays = append(displays, display)
	}
	return fmt.Sprintf("%s is a patient with %s.", name, joinNatural(displays))
}

// labSentence renders the key laboratory findings from the surfaced
// observations. Observations without a numeric value carry nothing a
// clinician can act on in one sentence, so they are skipped.
func (c *NarrativeComposer) labSentence(surfaced []domain.InterpretedObservation) string {
	findings := make([]string, 0, c.topLabFindings)
	for _, io := range surfaced {
		if len(findings) == c.topLabFindings {
			break
		}
		if !io.Significant || !io.Observation.HasValue {
			continue
		}
		findings = append(findings, formatFinding(io))
	}

	if len(findings) == 0 {
		return ""
	}
	return fmt.Sprintf("Key laboratory findings include %s.", joinNatural(findings))
}

// formatFinding renders one laboratory result as
// "Display (value unit) - Interpretation".
func formatFinding(io domain.InterpretedObservation) string {
	obs := io.Observation
	display := obs.Code.Display
	if display == "" {
		display = obs.Code.Code
	}

	value := formatValue(obs.Value)
	if obs.Unit != "" {
		value += " " + obs.Unit
	}
	return fmt.Sprintf("%s (%s) - %s", display, value, io.Interpretation.Display())
}

// formatValue renders a measurement without a trailing ".0" on whole numbers.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// joinNatural joins items into prose: "A", "A and B", "A, B and C".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
