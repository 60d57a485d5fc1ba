package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/validation"
)

type credentials struct {
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,max=1024"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=10"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(credentials{Email: "a@b.com", Password: "secret"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       credentials
		wantField string
		wantMsg   string
	}{
		{"empty email", credentials{Password: "secret"}, "email", "is required"},
		{"blank password", credentials{Email: "a@b.com", Password: "   "}, "password", "is required"},
		{"malformed email", credentials{Email: "not-an-email", Password: "secret"}, "email", "must be a valid email address"},
		{"name too long", credentials{Email: "a@b.com", Password: "secret", Name: strings.Repeat("x", 11)}, "name", "must not exceed 10 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			fields := validation.FieldErrors(err)
			assert.Equal(t, tt.wantMsg, fields[tt.wantField])
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestValidator_SummaryIsSorted(t *testing.T) {
	v := validation.New()
	err := v.Validate(credentials{})
	require.Error(t, err)
	assert.Equal(t, "email is required; password is required", err.Error())
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("borrower", "Sam", "notblank"))

	err := v.Var("borrower", " ", "notblank")
	require.Error(t, err)
	assert.Equal(t, "borrower is required", err.Error())
	assert.Equal(t, map[string]string{"borrower": "is required"}, validation.FieldErrors(err))
}

func TestFieldErrors_NonValidation(t *testing.T) {
	assert.Nil(t, validation.FieldErrors(domainerrors.NotFound("x")))
	assert.Nil(t, validation.FieldErrors(nil))
}
