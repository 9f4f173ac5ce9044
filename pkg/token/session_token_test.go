package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenManager_RoundTrip(t *testing.T) {
	m := NewSessionTokenManager("secret")

	tok, err := m.GenerateToken("abc")
	require.NoError(t, err)

	sid, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)
}

func TestSessionTokenManager_RejectsForeignSignature(t *testing.T) {
	tok, err := NewSessionTokenManager("secret-a").GenerateToken("abc")
	require.NoError(t, err)

	_, err = NewSessionTokenManager("secret-b").VerifyToken(tok)
	assert.Error(t, err)

	_, err = NewSessionTokenManager("secret-a").VerifyToken(tok + "x")
	assert.Error(t, err)

	_, err = NewSessionTokenManager("secret-a").VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

func TestSessionTokenManager_EmptySessionID(t *testing.T) {
	_, err := NewSessionTokenManager("secret").GenerateToken("")
	assert.Error(t, err)
}

func TestNewSessionID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id, err := NewSessionID()
		require.NoError(t, err)
		assert.Len(t, id, SessionIDBytes*2)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
