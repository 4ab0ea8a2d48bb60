package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel failures surfaced by the submission pipeline. Handlers map these
// onto HTTP statuses.
var (
	// ErrConflict marks a constraint violation the atomic upsert could not
	// absorb. Safe to retry.
	ErrConflict = errors.New("submission conflict")
	// ErrTransient marks database or collaborator unavailability, including
	// timeouts. The outcome is unknown to the caller and safe to retry
	// because the business upsert is idempotent per hash.
	ErrTransient = errors.New("transient failure, try again")
)

// FieldError describes one offending submission field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every offending field so the caller can surface
// all of them at once instead of just the first.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
