// Package review provides storage for clinician reviews of generated
// summaries. Reviews capture whether a summary was judged accurate so the
// rule tables can be tuned; the generated summaries themselves are never
// stored.
package review

import (
	"context"
	"io"
	"time"
)

// Verdict is a clinician's judgement of a generated summary.
type Verdict string

const (
	VerdictAccurate   Verdict = "accurate"
	VerdictIncomplete Verdict = "incomplete"
	VerdictInaccurate Verdict = "inaccurate"
)

// IsValid validates the verdict against the recognized value set.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictAccurate, VerdictIncomplete, VerdictInaccurate:
		return true
	default:
		return false
	}
}

// Review represents a clinician's review of a generated summary.
type Review struct {
	ID        int64     `json:"id,omitempty"`
	PatientID string    `json:"patient_id"`
	Reviewer  string    `json:"reviewer,omitempty"`
	Verdict   Verdict   `json:"verdict"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for review storage operations.
type Store interface {
	// Save stores or updates a review. A second review by the same reviewer
	// for the same patient replaces the first.
	Save(ctx context.Context, review *Review) error

	// Get retrieves a reviewer's review for a patient. Returns nil when no
	// review exists.
	Get(ctx context.Context, patientID, reviewer string) (*Review, error)

	// List returns reviews with pagination, most recent first.
	List(ctx context.Context, limit, offset int) ([]*Review, error)

	// Count returns the total number of reviews.
	Count(ctx context.Context) (int64, error)

	// Delete removes a review by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all reviews to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Reviews    []*Review `json:"reviews"`
}
