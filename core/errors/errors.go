// Package errors provides standardized error types and helpers for the
// complykit engine. Parse and merge failures are fatal and typed; validation
// and profile resolution accumulate diagnostics built from the same types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrFormat indicates malformed input bytes
	ErrFormat = errors.New("malformed input")
	// ErrUnsupportedFormat indicates a codec unavailable in this process
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnknownModelType indicates the document kind could not be determined
	ErrUnknownModelType = errors.New("unknown model type")
	// ErrMerge indicates a merge precondition failure
	ErrMerge = errors.New("merge failed")
	// ErrDuplicateID indicates an identifier collision
	ErrDuplicateID = errors.New("duplicate id")
	// ErrDanglingReference indicates a reference with no matching id
	ErrDanglingReference = errors.New("dangling reference")
	// ErrUnsupported indicates an unsupported operation or strategy
	ErrUnsupported = errors.New("unsupported")
)

// FormatError represents malformed input bytes for a given format
type FormatError struct {
	Format string // Format being parsed (e.g., "json", "xml")
	Detail string // Error details
	Err    error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("malformed %s: %s", e.Format, e.Detail)
	}
	return fmt.Sprintf("malformed %s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFormat
}

// UnsupportedFormatError represents a request for a codec that is not
// available in the running process. Codec availability is fixed once at
// process start; absence is reported, never a crash.
type UnsupportedFormatError struct {
	Format string // Requested format
	Reason string // Why it is unavailable
}

func (e *UnsupportedFormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("format %q unavailable: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("format %q unavailable", e.Format)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// UnknownModelTypeError represents a document whose kind could not be
// inferred from its top-level key set and was not supplied explicitly.
type UnknownModelTypeError struct {
	Keys []string // Top-level keys that were inspected
}

func (e *UnknownModelTypeError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("cannot determine document kind from top-level keys [%s]",
			strings.Join(e.Keys, ", "))
	}
	return "cannot determine document kind"
}

func (e *UnknownModelTypeError) Unwrap() error {
	return ErrUnknownModelType
}

// MergeError represents a merge precondition failure (empty input list or
// mismatched document kinds).
type MergeError struct {
	Reason string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge failed: %s", e.Reason)
}

func (e *MergeError) Unwrap() error {
	return ErrMerge
}

// DuplicateIDError represents an identifier collision. During a merge,
// SourceIndices identifies the input documents that both carry the id.
// During validation, Path locates the repeated occurrence in the tree.
type DuplicateIDError struct {
	ID            string // Colliding identifier
	Path          string // Tree path of the repeat (validation)
	SourceIndices []int  // Input documents carrying the id (merge)
}

func (e *DuplicateIDError) Error() string {
	if len(e.SourceIndices) > 0 {
		return fmt.Sprintf("duplicate id %q in input documents %v", e.ID, e.SourceIndices)
	}
	if e.Path != "" {
		return fmt.Sprintf("duplicate id %q at %s", e.ID, e.Path)
	}
	return fmt.Sprintf("duplicate id %q", e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// DanglingReferenceError represents a "#id"-shaped reference with no
// matching id anywhere in the document.
type DanglingReferenceError struct {
	Reference string // The reference value, including the "#"
	Path      string // Tree path where the reference appears
}

func (e *DanglingReferenceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("dangling reference %q at %s", e.Reference, e.Path)
	}
	return fmt.Sprintf("dangling reference %q", e.Reference)
}

func (e *DanglingReferenceError) Unwrap() error {
	return ErrDanglingReference
}

// ResolutionWarning represents a non-fatal diagnostic from profile
// resolution. A modification whose target control does not exist in the
// flattened catalog is skipped and reported this way.
type ResolutionWarning struct {
	TargetID string // Control id the modification targeted
	Op       string // Modification kind (e.g., "set-parameter", "alter")
	Detail   string // Human-readable explanation
}

func (e *ResolutionWarning) Error() string {
	if e.TargetID != "" {
		return fmt.Sprintf("%s targeting %q skipped: %s", e.Op, e.TargetID, e.Detail)
	}
	return fmt.Sprintf("%s skipped: %s", e.Op, e.Detail)
}

// ValidationError represents a structural validation finding with the
// tree path that triggered it.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationWarning represents a non-fatal structural finding.
type ValidationWarning struct {
	Path    string
	Message string
}

func (e *ValidationWarning) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// UnsupportedError represents an unsupported operation, such as a split
// strategy that does not apply to the document kind.
type UnsupportedError struct {
	Feature string // Feature that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewFormat creates a FormatError
func NewFormat(format, detail string, err error) *FormatError {
	return &FormatError{Format: format, Detail: detail, Err: err}
}

// NewUnsupportedFormat creates an UnsupportedFormatError
func NewUnsupportedFormat(format, reason string) *UnsupportedFormatError {
	return &UnsupportedFormatError{Format: format, Reason: reason}
}

// NewUnknownModelType creates an UnknownModelTypeError
func NewUnknownModelType(keys []string) *UnknownModelTypeError {
	return &UnknownModelTypeError{Keys: keys}
}

// NewMerge creates a MergeError
func NewMerge(reason string) *MergeError {
	return &MergeError{Reason: reason}
}

// NewDuplicateID creates a validation-time DuplicateIDError
func NewDuplicateID(id, path string) *DuplicateIDError {
	return &DuplicateIDError{ID: id, Path: path}
}

// NewMergeDuplicateID creates a merge-time DuplicateIDError
func NewMergeDuplicateID(id string, sourceIndices []int) *DuplicateIDError {
	return &DuplicateIDError{ID: id, SourceIndices: sourceIndices}
}

// NewDanglingReference creates a DanglingReferenceError
func NewDanglingReference(reference, path string) *DanglingReferenceError {
	return &DanglingReferenceError{Reference: reference, Path: path}
}

// NewValidationError creates a ValidationError
func NewValidationError(path, message string) *ValidationError {
	return &ValidationError{Path: path, Message: message}
}

// NewValidationWarning creates a ValidationWarning
func NewValidationWarning(path, message string) *ValidationWarning {
	return &ValidationWarning{Path: path, Message: message}
}

// NewResolutionWarning creates a ResolutionWarning
func NewResolutionWarning(op, targetID, detail string) *ResolutionWarning {
	return &ResolutionWarning{Op: op, TargetID: targetID, Detail: detail}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
