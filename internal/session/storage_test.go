package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdeck/internal/model"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	return NewStorage(t.TempDir(), t.TempDir())
}

func TestReadAuthPrefersDurable(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.WriteAuth(StoredAuth{Token: "session-tok", Persist: PersistSession}, PersistSession))

	// Write the durable copy by hand so both locations are populated.
	durable := StoredAuth{Token: "durable-tok", Persist: PersistDurable}
	data := `{"token":"durable-tok","persist":"local"}`
	require.NoError(t, os.WriteFile(filepath.Join(s.durableDir, authFileName), []byte(data), 0o600))

	got := s.ReadAuth()
	require.NotNil(t, got)
	assert.Equal(t, durable.Token, got.Token)
}

func TestWriteAuthRemovesOtherLocation(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.WriteAuth(StoredAuth{Token: "a", Persist: PersistDurable}, PersistDurable))
	require.NoError(t, s.WriteAuth(StoredAuth{Token: "b", Persist: PersistSession}, PersistSession))

	// The durable copy must be gone; only the session copy remains.
	_, err := os.Stat(filepath.Join(s.durableDir, authFileName))
	assert.True(t, os.IsNotExist(err))

	got := s.ReadAuth()
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Token)
	assert.Equal(t, PersistSession, got.Persist)
}

func TestReadAuthSkipsMalformedPayloads(t *testing.T) {
	s := newTestStorage(t)

	path := filepath.Join(s.durableDir, authFileName)
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	require.NoError(t, s.WriteAuth(StoredAuth{Token: "ok", Persist: PersistSession}, PersistSession))

	got := s.ReadAuth()
	require.NotNil(t, got)
	assert.Equal(t, "ok", got.Token)

	// The malformed file is removed, not retried forever.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadAuthTreatsEmptyTokenAsMalformed(t *testing.T) {
	s := newTestStorage(t)

	path := filepath.Join(s.durableDir, authFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"token":""}`), 0o600))

	assert.Nil(t, s.ReadAuth())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestClearAuthIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.WriteAuth(StoredAuth{Token: "x", User: &model.User{ID: "u"}}, PersistDurable))

	s.ClearAuth()
	s.ClearAuth()
	assert.Nil(t, s.ReadAuth())
}

func TestServerSelectionRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	_, ok := s.ReadServer()
	assert.False(t, ok)

	require.NoError(t, s.WriteServer("http://other:9090"))
	url, ok := s.ReadServer()
	require.True(t, ok)
	assert.Equal(t, "http://other:9090", url)
}
