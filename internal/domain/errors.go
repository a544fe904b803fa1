package domain

import (
	"errors"
	"fmt"
)

// Error codes for the failure taxonomy. Every engine failure maps to exactly
// one of these; callers at the invocation boundary use them for error mapping.
const (
	ErrCodeUnknownPatient  = "UNKNOWN_PATIENT"
	ErrCodeMalformedBundle = "MALFORMED_BUNDLE"
	ErrCodeMissingResource = "MISSING_RESOURCE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// UnknownPatientError indicates a patient identifier that does not resolve to
// any known bundle.
type UnknownPatientError struct {
	PatientID string
}

// Error implements the error interface.
func (e *UnknownPatientError) Error() string {
	return fmt.Sprintf("unknown patient %q: identifier does not resolve to any bundle", e.PatientID)
}

// MalformedBundleError indicates bundle content that is not valid structured
// data or lacks a resource collection.
type MalformedBundleError struct {
	PatientID string
	Reason    string
	Err       error
}

// Error implements the error interface.
func (e *MalformedBundleError) Error() string {
	return fmt.Sprintf("malformed bundle for patient %q: %s", e.PatientID, e.Reason)
}

// Unwrap exposes the underlying parse error, if any.
func (e *MalformedBundleError) Unwrap() error {
	return e.Err
}

// MissingResourceError indicates an ambiguous bundle: zero or more than one
// Patient resource. Such bundles are rejected rather than guessed at.
type MissingResourceError struct {
	PatientID    string
	ResourceType string
	Count        int
}

// Error implements the error interface.
func (e *MissingResourceError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("bundle for patient %q contains no %s resource", e.PatientID, e.ResourceType)
	}
	return fmt.Sprintf("bundle for patient %q is ambiguous: %d %s resources found", e.PatientID, e.Count, e.ResourceType)
}

// ErrorCode maps an engine error to its taxonomy code. Unrecognized errors map
// to ErrCodeInternal.
func ErrorCode(err error) string {
	var unknown *UnknownPatientError
	var malformed *MalformedBundleError
	var missing *MissingResourceError

	switch {
	case errors.As(err, &unknown):
		return ErrCodeUnknownPatient
	case errors.As(err, &malformed):
		return ErrCodeMalformedBundle
	case errors.As(err, &missing):
		return ErrCodeMissingResource
	default:
		return ErrCodeInternal
	}
}
