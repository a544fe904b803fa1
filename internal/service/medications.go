package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// MedicationRule maps a condition-code family to a medication-class label.
// A rule matches when the condition's SNOMED CT code is listed, or when its
// display text contains one of the keywords (fallback for bundles coded with
// display text only).
type MedicationRule struct {
	Label    string
	Codes    []string
	Keywords []string
}

// defaultMedicationRules is the declarative inference table. Extending the
// inferencer means adding a rule here; the composers never change.
var defaultMedicationRules = []MedicationRule{
	{
		Label:    "cardiovascular medications",
		Codes:    []string{"53741008", "22298006", "84114007", "38341003", "49436004"},
		Keywords: []string{"coronary", "heart", "cardiac", "hypertension", "myocardial"},
	},
	{
		Label:    "antidiabetic therapy",
		Codes:    []string{"44054006", "46635009", "73211009"},
		Keywords: []string{"diabetes"},
	},
	{
		Label:    "respiratory medications",
		Codes:    []string{"13645005", "195967001"},
		Keywords: []string{"copd", "asthma", "emphysema", "pulmonary disease"},
	},
	{
		Label:    "lipid-lowering therapy",
		Codes:    []string{"55822004", "13644009"},
		Keywords: []string{"hyperlipidemia", "hypercholesterolemia"},
	},
	{
		Label:    "thyroid replacement therapy",
		Codes:    []string{"40930008"},
		Keywords: []string{"hypothyroid"},
	},
	{
		Label:    "acid suppression therapy",
		Codes:    []string{"235595009"},
		Keywords: []string{"reflux", "gerd"},
	},
}

// MedicationInferencer infers likely medication classes from diagnosed
// conditions. The output is always phrased as inference by the narrative
// composer, never as a factual medication list.
type MedicationInferencer struct {
	logger *logrus.Logger
	rules  []MedicationRule
}

// NewMedicationInferencer creates an inferencer with the default rule table.
func NewMedicationInferencer(logger *logrus.Logger) *MedicationInferencer {
	return &MedicationInferencer{
		logger: logger,
		rules:  defaultMedicationRules,
	}
}

// Infer evaluates the rule table against every condition in the list and
// returns the deduplicated medication-class labels in first-match order.
// Conditions with no matching rule contribute nothing; an empty condition
// list yields an empty set.
func (m *MedicationInferencer) Infer(conditions []domain.Condition) []string {
	seen := make(map[string]bool, len(m.rules))
	labels := make([]string, 0, len(m.rules))

	for _, condition := range conditions {
		for _, rule := range m.rules {
			if seen[rule.Label] || !rule.matches(condition) {
				continue
			}
			seen[rule.Label] = true
			labels = append(labels, rule.Label)
		}
	}

	m.logger.WithFields(logrus.Fields{
		"condition_count":  len(conditions),
		"inferred_classes": len(labels),
	}).Debug("Inferred medication classes")

	return labels
}

// matches reports whether the rule applies to a condition.
func (r *MedicationRule) matches(condition domain.Condition) bool {
	for _, code := range r.Codes {
		if condition.Code.Code == code {
			return true
		}
	}
	display := strings.ToLower(condition.Code.Display)
	for _, keyword := range r.Keywords {
		if strings.Contains(display, keyword) {
			return true
		}
	}
	return false
}
