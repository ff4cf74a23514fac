// Package diag defines the error taxonomy and non-fatal diagnostics shared by
// the floor-plan pipeline.
//
// Hard failures are ordinary Go errors of two kinds:
//   - *InputError: the caller supplied something malformed (seed point outside
//     the image, empty color-range set, zero-size image, bad catalog entry).
//   - *OracleError: the external segmentation oracle failed or returned data
//     that does not fit the query (wrong mask shape, NaN scores).
//
// Everything recoverable is reported as a Warning alongside a successful
// result: degenerate geometry, empty masks, reverted refinements, unmatched
// labels and unclaimed regions. Stages never abort a whole request because a
// single candidate or contour is bad.
package diag

import (
	"errors"
	"fmt"
)

// InputError reports a malformed or out-of-range request parameter.
type InputError struct {
	Op  string // operation that rejected the input, e.g. "enhance"
	Msg string
}

func (e *InputError) Error() string {
	if e.Op == "" {
		return "invalid input: " + e.Msg
	}
	return fmt.Sprintf("%s: invalid input: %s", e.Op, e.Msg)
}

// Inputf builds an *InputError with a formatted message.
func Inputf(op, format string, args ...interface{}) error {
	return &InputError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// OracleError wraps a failure of the external segmentation oracle.
type OracleError struct {
	Err error
}

func (e *OracleError) Error() string {
	return "oracle: " + e.Err.Error()
}

func (e *OracleError) Unwrap() error { return e.Err }

// Oraclef builds an *OracleError with a formatted message. %w verbs are honored.
func Oraclef(format string, args ...interface{}) error {
	return &OracleError{Err: fmt.Errorf(format, args...)}
}

// IsInput reports whether err (or anything it wraps) is an *InputError.
func IsInput(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsOracle reports whether err (or anything it wraps) is an *OracleError.
func IsOracle(err error) bool {
	var oe *OracleError
	return errors.As(err, &oe)
}

// WarningKind classifies a recoverable condition.
type WarningKind string

const (
	DegenerateGeometry WarningKind = "degenerate_geometry"
	EmptyMask          WarningKind = "empty_mask"
	RefinementReverted WarningKind = "refinement_reverted"
	WholeImageMask     WarningKind = "whole_image_mask"
	SmallMask          WarningKind = "small_mask"
	UnmatchedLabel     WarningKind = "unmatched_label"
	UnclaimedRegion    WarningKind = "unclaimed_region"
)

// Warning is a diagnostic surfaced to the caller instead of a hard failure.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject,omitempty"` // region id, label name, candidate index...
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Subject == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Subject, w.Message)
}

// Warn builds a Warning with a formatted message.
func Warn(kind WarningKind, subject, format string, args ...interface{}) Warning {
	return Warning{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}
