package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundtrip(t *testing.T) {
	m := newSessionManager("secret")

	token, err := m.issue("a@x.com")
	require.NoError(t, err)

	email, err := m.verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestSessionRejectsForeignToken(t *testing.T) {
	issuer := newSessionManager("secret-a")
	verifier := newSessionManager("secret-b")

	token, err := issuer.issue("a@x.com")
	require.NoError(t, err)

	_, err = verifier.verify(token)
	assert.Error(t, err)
}

func TestSessionRejectsGarbage(t *testing.T) {
	m := newSessionManager("secret")

	_, err := m.verify("not-a-token")
	assert.Error(t, err)
}

// Without a configured secret each manager gets its own random key, so
// tokens do not transfer between processes.
func TestSessionRandomKeyPerManager(t *testing.T) {
	a := newSessionManager("")
	b := newSessionManager("")

	token, err := a.issue("a@x.com")
	require.NoError(t, err)

	email, err := a.verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	_, err = b.verify(token)
	assert.Error(t, err)
}
