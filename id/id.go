// Package id generates job identifiers.
//
// Generated IDs have the form "prefix_suffix" where the suffix is the hex
// encoding of a UUIDv7, so IDs sort by creation time. Callers may supply
// their own IDs instead; any non-empty string is a valid job ID.
package id

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefix identifies the entity type encoded in a generated ID.
type Prefix string

// PrefixJob is the default prefix for job IDs.
const PrefixJob Prefix = "job"

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid prefix (programming error).
func New(prefix Prefix) string {
	if err := validatePrefix(prefix); err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	u := uuid.Must(uuid.NewV7())

	return string(prefix) + "_" + hex.EncodeToString(u[:])
}

// NewJobID generates a new unique job ID.
func NewJobID() string { return New(PrefixJob) }

// Generator returns a function producing IDs with the given prefix.
// An empty prefix falls back to PrefixJob.
func Generator(prefix Prefix) func() string {
	if prefix == "" {
		prefix = PrefixJob
	}
	if err := validatePrefix(prefix); err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return func() string { return New(prefix) }
}

// PrefixOf returns the prefix of a generated ID, or "" when s carries none.
func PrefixOf(s string) Prefix {
	p, _, ok := strings.Cut(s, "_")
	if !ok {
		return ""
	}

	return Prefix(p)
}

// Valid reports whether s can be used as a job ID.
func Valid(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ValidatePrefix reports why p cannot be used as an ID prefix.
// Prefixes are non-empty and use lowercase letters and dashes only.
func ValidatePrefix(p Prefix) error {
	return validatePrefix(p)
}

func validatePrefix(p Prefix) error {
	if p == "" {
		return fmt.Errorf("empty prefix")
	}
	for _, r := range p {
		if (r < 'a' || r > 'z') && r != '-' {
			return fmt.Errorf("unexpected character %q", r)
		}
	}

	return nil
}
