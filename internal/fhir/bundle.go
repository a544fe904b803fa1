// Package fhir loads raw FHIR JSON bundles into the validated, typed resource
// model. Only Patient, Condition, and Observation resources are recognized;
// anything else in a bundle is ignored. Individually malformed entries are
// skipped so that one bad resource never costs the caller the whole bundle.
package fhir

import "github.com/goccy/go-json"

// Wire-level bundle shapes. These mirror just the slice of FHIR the engine
// consumes; fields the engine never reads are left undeclared.

type rawBundle struct {
	ResourceType string     `json:"resourceType"`
	Type         string     `json:"type"`
	Entry        []rawEntry `json:"entry"`
}

type rawEntry struct {
	Resource json.RawMessage `json:"resource"`
}

// rawResourceHeader is the discriminator peeked from every entry before the
// full type-specific decode.
type rawResourceHeader struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

type rawHumanName struct {
	Given  []string `json:"given"`
	Family string   `json:"family"`
	Text   string   `json:"text"`
}

type rawAddress struct {
	Line       []string `json:"line"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postalCode"`
	Country    string   `json:"country"`
}

type rawContactPoint struct {
	System string `json:"system"`
	Value  string `json:"value"`
}

type rawPatient struct {
	ID        string            `json:"id"`
	Name      []rawHumanName    `json:"name"`
	BirthDate string            `json:"birthDate"`
	Gender    string            `json:"gender"`
	Address   []rawAddress      `json:"address"`
	Telecom   []rawContactPoint `json:"telecom"`
}

type rawCoding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

type rawCodeableConcept struct {
	Coding []rawCoding `json:"coding"`
	Text   string      `json:"text"`
}

type rawReference struct {
	Reference string `json:"reference"`
}

type rawCondition struct {
	ID             string              `json:"id"`
	Code           *rawCodeableConcept `json:"code"`
	ClinicalStatus *rawCodeableConcept `json:"clinicalStatus"`
	Severity       *rawCodeableConcept `json:"severity"`
	OnsetDateTime  string              `json:"onsetDateTime"`
	Subject        *rawReference       `json:"subject"`
}

type rawQuantity struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

type rawReferenceRange struct {
	Low  *rawQuantity `json:"low"`
	High *rawQuantity `json:"high"`
	Text string       `json:"text"`
}

type rawObservation struct {
	ID                string              `json:"id"`
	Code              *rawCodeableConcept `json:"code"`
	ValueQuantity     *rawQuantity        `json:"valueQuantity"`
	EffectiveDateTime string              `json:"effectiveDateTime"`
	ReferenceRange    []rawReferenceRange `json:"referenceRange"`
	Subject           *rawReference       `json:"subject"`
}

// primaryCoding returns the first coding of a concept, falling back to the
// free-text form when no coding is present.
func (c *rawCodeableConcept) primaryCoding() rawCoding {
	if c == nil {
		return rawCoding{}
	}
	if len(c.Coding) > 0 {
		coding := c.Coding[0]
		if coding.Display == "" {
			coding.Display = c.Text
		}
		return coding
	}
	return rawCoding{Display: c.Text}
}
