package invitecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Length(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
}

func TestGenerate_Alphabet(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := Generate()
		require.NoError(t, err)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(alphabet, r),
				"code %q contains unexpected symbol %q", code, r)
		}
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true
	}
}
