// Package id generates identifiers used on the wire and in local storage.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "req-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// RequestID returns a fresh id for the X-Request-ID header.
func RequestID() string {
	id, err := Generate("req")
	if err != nil {
		// A request without a correlation id is still a valid request.
		return ""
	}
	return id
}

// NewInstallID returns a random per-installation identifier.
// It is persisted once and sent as X-Device-ID so the backend can tell devices apart.
func NewInstallID() string {
	return uuid.NewString()
}

// ValidInstallID reports whether s parses as an installation id.
func ValidInstallID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
