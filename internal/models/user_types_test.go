package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_SetAndMatches(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("Abc123!"))

	assert.NotEqual(t, "Abc123!", p.Hash)
	require.NotNil(t, p.Plaintext)

	ok, err := p.Matches("Abc123!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("abc123!")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPassword_MatchesBadHash(t *testing.T) {
	p := Password{Hash: "not-a-bcrypt-hash"}
	_, err := p.Matches("anything")
	assert.Error(t, err)
}
