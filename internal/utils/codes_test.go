package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func TestNewResetCodeShape(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := NewResetCode()
		require.NoError(t, err)
		assert.Len(t, code, ResetCodeLength)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestNewResetCodeVaries(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, err := NewResetCode()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 50 draws from a million-value space colliding down to a handful would mean a broken source.
	assert.Greater(t, len(seen), 40)
}
