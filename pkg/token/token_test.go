package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLength(t *testing.T) {
	tok, err := Generate(64)
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	tok, err = Generate(100)
	require.NoError(t, err)
	assert.Len(t, tok, 100)
}

func TestGenerateRaisesShortLengths(t *testing.T) {
	tok, err := Generate(8)
	require.NoError(t, err)
	assert.Len(t, tok, MinLength)
}

func TestGenerateIsURLSafe(t *testing.T) {
	tok, err := Generate(MinLength)
	require.NoError(t, err)
	for _, r := range tok {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		assert.True(t, ok, "unexpected character %q", r)
	}
}

func TestGenerateIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := Generate(MinLength)
		require.NoError(t, err)
		require.False(t, seen[tok], "duplicate token generated")
		seen[tok] = true
	}
}

func TestHashAndVerify(t *testing.T) {
	tok, err := Generate(MinLength)
	require.NoError(t, err)

	hash, err := Hash(tok)
	require.NoError(t, err)
	assert.NotEqual(t, tok, hash)

	assert.True(t, Verify(tok, hash))
	assert.False(t, Verify(tok+"x", hash))
	assert.False(t, Verify(tok, "not-a-hash"))
}
