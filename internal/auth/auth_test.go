package auth

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrGenerateKey_GeneratesOnceThenReuses(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, keyLength)

	info, err := os.Stat(filepath.Join(dir, keyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestLoadOrGenerateKey_RejectsCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too short", "abcd"},
		{"not hex", string(make([]byte, keyHexLength))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, keyFileName), []byte(tt.content), 0o600))

			_, err := LoadOrGenerateKey(dir)
			assert.Error(t, err)
		})
	}
}

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	key, err := hex.DecodeString("707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f")
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestSealer_RoundTrip(t *testing.T) {
	s := newTestSealer(t)

	sealed, err := s.Seal("firebase-uid-123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "firebase-uid-123")
	assert.Contains(t, sealed, "v4.local.")

	got, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid-123", got)
}

func TestSealer_RejectsForeignAndGarbageTokens(t *testing.T) {
	s := newTestSealer(t)

	otherKey := make([]byte, keyLength)
	other, err := NewSealer(otherKey)
	require.NoError(t, err)
	foreign, err := other.Seal("someone")
	require.NoError(t, err)

	for _, token := range []string{foreign, "not-a-token", "firebase-uid-123"} {
		_, err := s.Open(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestSealer_Validation(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	assert.Error(t, err)

	s := newTestSealer(t)
	_, err = s.Seal("")
	assert.Error(t, err)
}
