package rewardcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphabet(t *testing.T) {
	assert.Len(t, Alphabet, 32)
	for _, forbidden := range []string{"0", "O", "1", "I"} {
		assert.NotContains(t, Alphabet, forbidden)
	}
}

func TestGenerate(t *testing.T) {
	t.Run("produces 8-character codes with prefix", func(t *testing.T) {
		code, err := Generate("PH")
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		assert.True(t, strings.HasPrefix(code, "PH"))
		for _, c := range code[2:] {
			assert.Contains(t, Alphabet, string(c))
		}
	})

	t.Run("uppercases the prefix", func(t *testing.T) {
		code, err := Generate("ph")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(code, "PH"))
	})

	t.Run("rejects bad prefixes", func(t *testing.T) {
		for _, prefix := range []string{"", "P", "PHX", "P1", "4H"} {
			_, err := Generate(prefix)
			assert.Error(t, err, "prefix %q should be rejected", prefix)
		}
	})

	t.Run("codes vary between calls", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			code, err := Generate("PH")
			require.NoError(t, err)
			seen[code] = true
		}
		// 50 draws from a 32^6 space should never collide this badly
		assert.Greater(t, len(seen), 45)
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "PHAB2CD3", Normalize("  phab2cd3 "))
	assert.Equal(t, "PHAB2CD3", Normalize("PHAB2CD3"))
}
