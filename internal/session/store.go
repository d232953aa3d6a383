package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"stockdeck/internal/api"
	"stockdeck/internal/model"
)

// Store owns the auth token and user profile. It is the single writer of both;
// dependents read the derived API client (nil iff unauthenticated) and
// subscribe to change notifications.
type Store struct {
	mu      sync.Mutex
	baseURL string
	storage *Storage

	token   string
	user    *model.User
	persist PersistMode
	loading bool
	client  *api.Client

	// epoch disconnects superseded profile fetches: a fetch started before a
	// later token change must not write state when it finally resolves.
	epoch int

	subscribers []func()

	profileTimeout time.Duration
}

// New creates a session store bound to a backend endpoint. Call Restore to
// pick up a persisted session.
func New(baseURL string, storage *Storage) *Store {
	return &Store{
		baseURL:        baseURL,
		storage:        storage,
		persist:        PersistDurable,
		profileTimeout: 15 * time.Second,
	}
}

// OnChange registers a callback invoked after every state transition.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notifyLocked() func() {
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	return func() {
		for _, fn := range subs {
			fn()
		}
	}
}

// Token returns the current auth token ("" when unauthenticated).
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current profile, or nil while unauthenticated or still
// authenticating.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Loading reports whether a profile fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// API returns the derived gateway client. Nil iff no token is present;
// dependents key off this, not the raw token, to decide whether to issue
// requests.
func (s *Store) API() *api.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Restore loads a persisted session, preferring durable over session storage,
// and eagerly refreshes the profile in the background. A profile-fetch failure
// invalidates the restored session.
func (s *Store) Restore() {
	stored := s.storage.ReadAuth()
	if stored == nil {
		return
	}

	s.mu.Lock()
	s.token = stored.Token
	s.user = stored.User
	if stored.Persist == PersistSession {
		s.persist = PersistSession
	} else {
		s.persist = PersistDurable
	}
	s.client = api.New(s.baseURL, s.token)
	s.loading = true
	s.epoch++
	epoch := s.epoch
	client := s.client
	notify := s.notifyLocked()
	s.mu.Unlock()

	notify()
	go s.fetchProfile(epoch, client)
}

// Login authenticates and installs the resulting session. remember selects
// durable persistence. On failure the existing session is left untouched.
func (s *Store) Login(ctx context.Context, creds model.LoginRequest, remember bool) (*model.LoginResponse, error) {
	resp, err := api.Login(ctx, s.baseURL, creds)
	if err != nil {
		return nil, err
	}

	mode := PersistSession
	if remember {
		mode = PersistDurable
	}

	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.persist = mode
	s.client = api.New(s.baseURL, s.token)
	s.epoch++
	notify := s.notifyLocked()
	s.mu.Unlock()

	if err := s.storage.WriteAuth(StoredAuth{Token: resp.Token, User: &user, Persist: mode}, mode); err != nil {
		logrus.WithError(err).Warn("failed to persist session")
	}

	notify()
	return resp, nil
}

// Logout clears the in-memory session and both storage locations. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.epoch++
	s.token = ""
	s.user = nil
	s.client = nil
	s.loading = false
	notify := s.notifyLocked()
	s.mu.Unlock()

	s.storage.ClearAuth()
	notify()
}

// RefreshProfile re-fetches the profile for the current token and re-persists
// it under the active mode. No-op when unauthenticated.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	token := s.token
	mode := s.persist
	s.mu.Unlock()

	if client == nil {
		return errNotAuthenticated
	}

	profile, err := client.GetProfile(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// A logout or re-login may have raced the fetch; only apply to the same token.
	if s.token != token {
		s.mu.Unlock()
		return nil
	}
	s.user = profile
	notify := s.notifyLocked()
	s.mu.Unlock()

	if err := s.storage.WriteAuth(StoredAuth{Token: token, User: profile, Persist: mode}, mode); err != nil {
		logrus.WithError(err).Warn("failed to persist session")
	}

	notify()
	return nil
}

// fetchProfile is the eager background fetch triggered by Restore. The epoch
// check discards results that resolve after the session changed again.
func (s *Store) fetchProfile(epoch int, client *api.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), s.profileTimeout)
	defer cancel()

	profile, err := client.GetProfile(ctx)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}

	if err != nil {
		// A stored token the backend no longer accepts means the session is
		// invalid; silently drop it.
		logrus.WithError(err).Warn("profile fetch failed, invalidating session")
		s.token = ""
		s.user = nil
		s.client = nil
		s.loading = false
		notify := s.notifyLocked()
		s.mu.Unlock()

		s.storage.ClearAuth()
		notify()
		return
	}

	s.user = profile
	s.loading = false
	token := s.token
	mode := s.persist
	notify := s.notifyLocked()
	s.mu.Unlock()

	if err := s.storage.WriteAuth(StoredAuth{Token: token, User: profile, Persist: mode}, mode); err != nil {
		logrus.WithError(err).Warn("failed to persist session")
	}

	notify()
}
