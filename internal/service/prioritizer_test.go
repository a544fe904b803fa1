package service

import (
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

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func condition(id string, status domain.ClinicalStatus, severity domain.Severity, onset time.Time) domain.Condition {
	return domain.Condition{
		ID:             id,
		Code:           domain.CodedConcept{Code: id, Display: id},
		ClinicalStatus: status,
		Severity:       severity,
		OnsetDate:      onset,
	}
}

func ids(conditions []domain.Condition) []string {
	out := make([]string, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, c.ID)
	}
	return out
}

func TestPrioritize_ActiveBeforeInactive(t *testing.T) {
	p := NewConditionPrioritizer(testLogger())
	input := []domain.Condition{
		condition("resolved", domain.StatusResolved, domain.SeveritySevere, date("2024-01-01")),
		condition("active", domain.StatusActive, domain.SeverityMild, date("2020-01-01")),
	}

	ordered := p.Prioritize(input)

	assert.Equal(t, []string{"active", "resolved"}, ids(ordered))
}

func TestPrioritize_SeverityWithinStatus(t *testing.T) {
	p := NewConditionPrioritizer(testLogger())
	input := []domain.Condition{
		condition("mild", domain.StatusActive, domain.SeverityMild, time.Time{}),
		condition("severe", domain.StatusActive, domain.SeveritySevere, time.Time{}),
		condition("moderate", domain.StatusActive, domain.SeverityModerate, time.Time{}),
		condition("unspecified", domain.StatusActive, domain.SeverityUnspecified, time.Time{}),
	}

	ordered := p.Prioritize(input)

	assert.Equal(t, []string{"severe", "moderate", "mild", "unspecified"}, ids(ordered))
}

func TestPrioritize_RecencyWithinSeverity(t *testing.T) {
	p := NewConditionPrioritizer(testLogger())
	input := []domain.Condition{
		condition("older", domain.StatusActive, domain.SeverityModerate, date("2015-05-01")),
		condition("newer", domain.StatusActive, domain.SeverityModerate, date("2023-02-01")),
		condition("no-onset", domain.StatusActive, domain.SeverityModerate, time.Time{}),
	}

	ordered := p.Prioritize(input)

	assert.Equal(t, []string{"newer", "older", "no-onset"}, ids(ordered))
}

func TestPrioritize_StableForTies(t *testing.T) {
	p := NewConditionPrioritizer(testLogger())
	input := []domain.Condition{
		condition("first", domain.StatusActive, domain.SeverityModerate, date("2020-01-01")),
		condition("second", domain.StatusActive, domain.SeverityModerate, date("2020-01-01")),
		condition("third", domain.StatusActive, domain.SeverityModerate, date("2020-01-01")),
	}

	ordered := p.Prioritize(input)

	assert.Equal(t, []string{"first", "second", "third"}, ids(ordered))
}

func TestPrioritize_DoesNotMutateInput(t *testing.T) {
	p := NewConditionPrioritizer(testLogger())
	input := []domain.Condition{
		condition("b", domain.StatusResolved, domain.SeverityMild, time.Time{}),
		condition("a", domain.StatusActive, domain.SeveritySevere, time.Time{}),
	}

	ordered := p.Prioritize(input)

	require.Equal(t, []string{"a", "b"}, ids(ordered))
	assert.Equal(t, []string{"b", "a"}, ids(input), "input order must be preserved")
}

func TestMajorDiagnoses(t *testing.T) {
	conditions := []domain.Condition{
		condition("a", domain.StatusActive, domain.SeveritySevere, time.Time{}),
		condition("b", domain.StatusActive, domain.SeverityModerate, time.Time{}),
		condition("c", domain.StatusActive, domain.SeverityMild, time.Time{}),
	}

	assert.Equal(t, []string{"a", "b"}, ids(MajorDiagnoses(conditions, 2)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(MajorDiagnoses(conditions, 5)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(MajorDiagnoses(conditions, 0)))
}
