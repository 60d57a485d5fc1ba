// Package identity talks to the external identity provider that owns email/password credentials.
//
// Providers report failures with one of a fixed set of named conditions. Message turns each into the
// string shown next to the sign-in form.
package identity

import (
	"context"
	"errors"
)

// Named failure conditions.
var (
	ErrUserNotFound      = errors.New("identity: user not found")
	ErrWrongPassword     = errors.New("identity: wrong password")
	ErrInvalidEmail      = errors.New("identity: invalid email")
	ErrInvalidCredential = errors.New("identity: invalid credential")
	ErrEmailInUse        = errors.New("identity: email already in use")
	ErrWeakPassword      = errors.New("identity: weak password")
	ErrUnsupported       = errors.New("identity: operation not supported by provider")
	ErrUnspecified       = errors.New("identity: unspecified error")
)

// Provider authenticates and registers email/password accounts.
type Provider interface {
	// Authenticate returns the provider-issued user id for valid credentials.
	Authenticate(ctx context.Context, email, password string) (string, error)
	// Register creates an account and returns its provider-issued user id.
	Register(ctx context.Context, email, password string) (string, error)
}

// GenericMessage is shown for any failure without a dedicated message.
const GenericMessage = "Something went wrong while signing in. Please try again."

var messages = []struct {
	err error
	msg string
}{
	{ErrUserNotFound, "No account exists for this email address."},
	{ErrWrongPassword, "Incorrect password. Please try again."},
	{ErrInvalidEmail, "The email address is badly formatted."},
	{ErrInvalidCredential, "These credentials are invalid or have been revoked."},
	{ErrEmailInUse, "An account already exists for this email address."},
	{ErrWeakPassword, "Password must be at least 6 characters."},
	{ErrUnsupported, "This sign-in provider does not support creating accounts."},
}

// Message maps a provider error to its user-facing string.
func Message(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return GenericMessage
}

// unspecified wraps cause so it matches ErrUnspecified while keeping the original error.
func unspecified(cause error) error {
	if cause == nil {
		return ErrUnspecified
	}
	return errors.Join(ErrUnspecified, cause)
}
