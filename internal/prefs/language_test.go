package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"en", "en"},
		{"  German ", "de"},
		{"deu", "de"},
		{"pt_BR", "pt-BR"},
		{"FR", "fr"},
		{"Cantonese", "yue"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeLanguage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeLanguage("")
	assert.Error(t, err)
	_, err = NormalizeLanguage("klingon!!")
	assert.Error(t, err)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Deutsch", LanguageName("de"))
	assert.Equal(t, "???", LanguageName("???"))
}
