// Package errors defines the coded errors returned by mavosort's host
// layers. The sorting and grouping engine itself never fails; these cover
// loading input, configuration and the state store.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier for a failure mode.
type ErrorCode string

const (
	// InputUnreadable indicates an item or key file could not be read or decoded
	InputUnreadable ErrorCode = "INPUT_UNREADABLE"
	// FormatUnsupported indicates an unknown input or output format
	FormatUnsupported ErrorCode = "FORMAT_UNSUPPORTED"
	// ParallelLengthMismatch indicates a parallel key whose length differs from the input (strict mode only)
	ParallelLengthMismatch ErrorCode = "PARALLEL_LENGTH_MISMATCH"
	// StateUnavailable indicates the signature store could not be opened or written
	StateUnavailable ErrorCode = "STATE_UNAVAILABLE"
	// ConfigInvalid indicates a configuration value is out of range
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates an unexpected failure
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction is a suggested remedy shown next to an error.
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description"`
}

// SortError carries a code, a message and suggested fixes.
type SortError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a SortError with the fixes registered for code.
func New(code ErrorCode, message string, cause error) *SortError {
	return &SortError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Error implements the error interface
func (e *SortError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SortError) Unwrap() error {
	return e.cause
}

// WithDetails attaches structured details.
func (e *SortError) WithDetails(details interface{}) *SortError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first SortError in err's chain, or
// InternalError.
func CodeOf(err error) ErrorCode {
	var se *SortError
	if errors.As(err, &se) {
		return se.Code
	}
	return InternalError
}

// ErrorActions maps codes to suggested fixes.
var ErrorActions = map[ErrorCode][]FixAction{
	InputUnreadable: {
		{Description: "Check the file exists and matches its extension (.json, .yaml, .toml, optionally .gz or .zst)"},
	},
	FormatUnsupported: {
		{Command: "mavosort sort --input-format json <file>", Description: "Name the format explicitly"},
	},
	ParallelLengthMismatch: {
		{Description: "Give the parallel key exactly one value per input item"},
		{Command: "mavosort config show", Description: "Or set sort.parallelMismatch to \"skip\""},
	},
	StateUnavailable: {
		{Command: "mavosort render --no-state", Description: "Render without the signature store"},
	},
	ConfigInvalid: {
		{Command: "mavosort config show", Description: "Inspect the effective configuration"},
	},
}

// GetSuggestedFixes returns the fixes registered for code.
func GetSuggestedFixes(code ErrorCode) []FixAction {
	return ErrorActions[code]
}
