package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error categories. Every sentinel below wraps exactly one of these so callers
// can branch on the category with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConflict            = errors.New("conflict")
	ErrPersistence         = errors.New("persistence failure")
)

var (
	// Account errors
	ErrAccountNotFound    = fmt.Errorf("account %w", ErrNotFound)
	ErrAccountExists      = fmt.Errorf("%w: account already exists", ErrConflict)
	ErrAccountInactive    = fmt.Errorf("%w: account is inactive", ErrValidation)
	ErrInvalidAccountKind = fmt.Errorf("%w: invalid account kind", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be positive", ErrValidation)

	// Journal errors
	ErrEntryNotFound = fmt.Errorf("journal entry %w", ErrNotFound)
	ErrBrokenJournal = errors.New("journal entry balances are inconsistent")

	// Member and inflow errors
	ErrMemberNotFound       = fmt.Errorf("member %w", ErrNotFound)
	ErrContributionNotFound = fmt.Errorf("contribution %w", ErrNotFound)
	ErrInvalidTransition    = fmt.Errorf("%w: invalid status transition", ErrConflict)

	// Refund errors
	ErrRefundNotFound = fmt.Errorf("refund %w", ErrNotFound)
	ErrInvalidSource  = fmt.Errorf("%w: invalid refund source", ErrValidation)

	// Import errors
	ErrImportInProgress  = fmt.Errorf("%w: an import of this kind is already running", ErrConflict)
	ErrInvalidImportKind = fmt.Errorf("%w: unsupported import kind", ErrValidation)
	ErrImportTooLarge    = fmt.Errorf("%w: import exceeds the maximum number of rows", ErrValidation)
	ErrUploadTooLarge    = fmt.Errorf("%w: upload exceeds the maximum size", ErrValidation)

	// Caller scope errors
	ErrMissingTenant = fmt.Errorf("%w: tenant id is required", ErrValidation)
	ErrMissingActor  = fmt.Errorf("%w: actor id is required", ErrValidation)
)

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsClassified reports whether err already belongs to one of the categories
// above. Unclassified errors are infrastructure faults.
func IsClassified(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrPersistence)
}
