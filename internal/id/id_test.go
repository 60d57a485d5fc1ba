package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"request", "req"},
		{"notification", "ntf"},
		{"loan", "loan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Generate(tt.prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, tt.prefix+"-"))
			// NanoID default length is 21.
			assert.Len(t, id, len(tt.prefix)+1+21)
		})
	}
}

func TestRequestID(t *testing.T) {
	assert.True(t, strings.HasPrefix(RequestID(), "req-"))
	assert.NotEqual(t, RequestID(), RequestID())
}

func TestInstallID(t *testing.T) {
	install := NewInstallID()
	assert.True(t, ValidInstallID(install))
	assert.False(t, ValidInstallID("not-a-uuid"))
	assert.NotEqual(t, install, NewInstallID())
}
