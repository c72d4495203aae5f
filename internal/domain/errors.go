package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Resource, e.ID)
}

// FieldErrors maps a field name to one or more human-readable messages.
// It is the accumulation structure for write validation: independent fields
// collect their own failures instead of short-circuiting the first one.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Merge copies all messages from other into fe.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		fe[field] = append(fe[field], messages...)
	}
}

// Fields returns the sorted field names carrying at least one message.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for field := range fe {
		names = append(names, field)
	}
	sort.Strings(names)
	return names
}

// ErrFieldValidation indicates a write was rejected by the validation layer.
// The carried map renders as the HTTP 400 response body.
type ErrFieldValidation struct {
	Fields FieldErrors
}

func (e *ErrFieldValidation) Error() string {
	return fmt.Sprintf("validation failed on: %s", strings.Join(e.Fields.Fields(), ", "))
}

// ErrProtected indicates a delete was blocked by dependent records.
type ErrProtected struct {
	Resource  string
	ID        int64
	Dependent string
}

func (e *ErrProtected) Error() string {
	return fmt.Sprintf("cannot delete %s %d: referenced by existing %s", e.Resource, e.ID, e.Dependent)
}

// ErrConflict indicates a uniqueness constraint was violated at the storage
// boundary (the race guard behind the validation-layer check).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
