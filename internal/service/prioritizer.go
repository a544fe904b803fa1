// Package service implements the summarization engine: condition
// prioritization, laboratory interpretation, medication-class inference, and
// the narrative and structured-report composers, orchestrated by Summarizer.
package service

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/patient-summary-mcp-server/internal/domain"
)

// ConditionPrioritizer ranks conditions by clinical significance.
type ConditionPrioritizer struct {
	logger *logrus.Logger
}

// NewConditionPrioritizer creates a condition prioritizer.
func NewConditionPrioritizer(logger *logrus.Logger) *ConditionPrioritizer {
	return &ConditionPrioritizer{logger: logger}
}

// Prioritize returns the conditions ordered most clinically significant
// first: active status, then severity, then onset recency. The sort is
// stable, so conditions tied on all three keys keep their bundle order.
// No condition is dropped. The input slice is not modified.
func (p *ConditionPrioritizer) Prioritize(conditions []domain.Condition) []domain.Condition {
	ordered := make([]domain.Condition, len(conditions))
	copy(ordered, conditions)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]

		if a.ClinicalStatus.Rank() != b.ClinicalStatus.Rank() {
			return a.ClinicalStatus.Rank() < b.ClinicalStatus.Rank()
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		// More recent onset first; conditions without an onset sort last.
		if a.OnsetDate.IsZero() != b.OnsetDate.IsZero() {
			return !a.OnsetDate.IsZero()
		}
		return a.OnsetDate.After(b.OnsetDate)
	})

	p.logger.WithField("condition_count", len(ordered)).Debug("Prioritized conditions")
	return ordered
}

// MajorDiagnoses returns the top-N prioritized conditions designated for
// narrative use.
func MajorDiagnoses(prioritized []domain.Condition, topN int) []domain.Condition {
	if topN <= 0 || topN > len(prioritized) {
		topN = len(prioritized)
	}
	return prioritized[:topN]
}
