package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdeck/internal/model"
)

// backendStub serves login and profile with configurable outcomes.
type backendStub struct {
	user        model.User
	token       string
	rejectAuth  atomic.Bool
	profileHits atomic.Int64
}

func (b *backendStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if b.rejectAuth.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid username or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(model.LoginResponse{Token: b.token, User: b.user})
	})
	mux.HandleFunc("GET /api/profile", func(w http.ResponseWriter, r *http.Request) {
		b.profileHits.Add(1)
		if b.rejectAuth.Load() || r.Header.Get("Authorization") != "Bearer "+b.token {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid or expired token"})
			return
		}
		_ = json.NewEncoder(w).Encode(b.user)
	})
	return mux
}

func newBackend(t *testing.T) (*backendStub, *httptest.Server) {
	t.Helper()
	stub := &backendStub{
		user:  model.User{ID: "u1", Username: "admin", Role: model.RoleManager},
		token: "sdk_testtoken",
	}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	return stub, srv
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestLoginPersistsDurablyWhenRemembered(t *testing.T) {
	_, srv := newBackend(t)
	storage := newTestStorage(t)
	store := New(srv.URL, storage)

	resp, err := store.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "adminadmin"}, true)
	require.NoError(t, err)
	assert.Equal(t, "sdk_testtoken", resp.Token)
	assert.Equal(t, "admin", store.User().Username)
	require.NotNil(t, store.API())

	stored := storage.ReadAuth()
	require.NotNil(t, stored)
	assert.Equal(t, PersistDurable, stored.Persist)
}

func TestLoginWithoutRememberUsesSessionStorage(t *testing.T) {
	_, srv := newBackend(t)
	storage := newTestStorage(t)
	store := New(srv.URL, storage)

	_, err := store.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "adminadmin"}, false)
	require.NoError(t, err)

	stored := storage.ReadAuth()
	require.NotNil(t, stored)
	assert.Equal(t, PersistSession, stored.Persist)
}

func TestFailedLoginLeavesSessionUntouched(t *testing.T) {
	stub, srv := newBackend(t)
	storage := newTestStorage(t)
	store := New(srv.URL, storage)

	_, err := store.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "right"}, true)
	require.NoError(t, err)

	stub.rejectAuth.Store(true)
	_, err = store.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "wrong"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid username or password")

	// The previous session is still in place.
	assert.Equal(t, "sdk_testtoken", store.Token())
	assert.NotNil(t, store.API())
}

func TestRestoreRefreshesProfileInBackground(t *testing.T) {
	stub, srv := newBackend(t)
	storage := newTestStorage(t)

	require.NoError(t, storage.WriteAuth(StoredAuth{
		Token:   stub.token,
		User:    &model.User{ID: "u1", Username: "stale-name"},
		Persist: PersistDurable,
	}, PersistDurable))

	store := New(srv.URL, storage)
	store.Restore()

	// The persisted profile is visible immediately while the fetch runs.
	assert.Equal(t, "stale-name", store.User().Username)
	require.NotNil(t, store.API())

	waitFor(t, func() bool { return !store.Loading() }, "profile fetch never finished")
	assert.Equal(t, "admin", store.User().Username, "profile refreshed from backend")
	assert.GreaterOrEqual(t, stub.profileHits.Load(), int64(1))
}

func TestRestoreWithRejectedTokenInvalidatesSession(t *testing.T) {
	stub, srv := newBackend(t)
	storage := newTestStorage(t)

	require.NoError(t, storage.WriteAuth(StoredAuth{
		Token:   "sdk_expired",
		User:    &model.User{ID: "u1"},
		Persist: PersistDurable,
	}, PersistDurable))
	stub.rejectAuth.Store(true)

	store := New(srv.URL, storage)
	store.Restore()

	waitFor(t, func() bool { return store.Token() == "" }, "session never invalidated")
	assert.Nil(t, store.User())
	assert.Nil(t, store.API())
	assert.Nil(t, storage.ReadAuth(), "rejected session removed from storage")
}

func TestLogoutClearsEverything(t *testing.T) {
	_, srv := newBackend(t)
	storage := newTestStorage(t)
	store := New(srv.URL, storage)

	_, err := store.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "x"}, true)
	require.NoError(t, err)

	store.Logout()
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
	assert.Nil(t, store.API())
	assert.Nil(t, storage.ReadAuth())

	// Idempotent.
	store.Logout()
}

func TestLogoutDuringRestoreDiscardsFetchResult(t *testing.T) {
	stub, srv := newBackend(t)
	storage := newTestStorage(t)

	require.NoError(t, storage.WriteAuth(StoredAuth{
		Token:   stub.token,
		User:    &model.User{ID: "u1", Username: "stale"},
		Persist: PersistDurable,
	}, PersistDurable))

	store := New(srv.URL, storage)
	store.Restore()
	store.Logout()

	// Give the in-flight fetch time to resolve; its result must be dropped.
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
}

func TestRefreshProfileRequiresSession(t *testing.T) {
	_, srv := newBackend(t)
	store := New(srv.URL, newTestStorage(t))

	err := store.RefreshProfile(context.Background())
	assert.ErrorIs(t, err, errNotAuthenticated)
}

func TestOnChangeNotifiesOnLogin(t *testing.T) {
	_, srv := newBackend(t)
	store := New(srv.URL, newTestStorage(t))

	var notifications atomic.Int64
	store.OnChange(func() { notifications.Add(1) })

	_, err := store.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "x"}, false)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, notifications.Load(), int64(1))
}
