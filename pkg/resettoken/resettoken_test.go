package resettoken_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Auth-api/pkg/resettoken"
)

func TestGenerate_64Hex(t *testing.T) {
	tok, err := resettoken.Generate()
	require.NoError(t, err)
	assert.Len(t, tok, 64)
	assert.True(t, resettoken.WellFormed(tok))

	other, err := resettoken.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestHash_DeterministicoYDistintoDelPlano(t *testing.T) {
	tok, err := resettoken.Generate()
	require.NoError(t, err)
	assert.Equal(t, resettoken.Hash(tok), resettoken.Hash(tok))
	assert.NotEqual(t, tok, resettoken.Hash(tok))
	assert.Len(t, resettoken.Hash(tok), 64)
}

func TestVerify(t *testing.T) {
	tok, err := resettoken.Generate()
	require.NoError(t, err)
	assert.True(t, resettoken.Verify(tok, resettoken.Hash(tok)))
	assert.False(t, resettoken.Verify(tok+"0", resettoken.Hash(tok)))
	assert.False(t, resettoken.Verify(tok, ""))
}

func TestWellFormed(t *testing.T) {
	assert.False(t, resettoken.WellFormed("abc"))
	assert.False(t, resettoken.WellFormed(string(make([]byte, 64))))
}

func TestExpiresAt_UnaHora(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(time.Hour), resettoken.ExpiresAt(now))
}
