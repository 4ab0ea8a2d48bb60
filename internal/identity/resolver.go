// Package identity computes the stable dedup key for a business. Two
// submissions that normalize to the same address fields must resolve to the
// same key so they attach to one canonical record instead of creating
// duplicates.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// InvalidInputError is returned when a required identity field is empty
// after trimming.
type InvalidInputError struct {
	Field string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("identity: %s is required", e.Field)
}

// Resolve maps business identification fields to a stable hex-encoded
// SHA-256 key. Name, address and city are lower-cased, the state code is
// upper-cased, all fields are trimmed, and the normalized fields are joined
// with "|" in a fixed order. Pure function, no side effects.
//
// Exact duplicates (same user resubmitting, two users entering the same
// address verbatim) converge onto one key. Near-duplicates with typos do
// not; fuzzy matching is out of scope.
func Resolve(name, address, city, state, zipCode string) (string, error) {
	fields := []struct {
		label string
		value *string
		upper bool
	}{
		{"name", &name, false},
		{"address", &address, false},
		{"city", &city, false},
		{"state", &state, true},
		{"zip_code", &zipCode, false},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return "", &InvalidInputError{Field: f.label}
		}
		if f.upper {
			v = strings.ToUpper(v)
		} else {
			v = strings.ToLower(v)
		}
		parts = append(parts, v)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:]), nil
}
