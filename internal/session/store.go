// Package session holds the client-side session: the access token presented
// to the task API on behalf of a single browsing session.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// DefaultName is the name of the entry a Store persists itself under unless
// told otherwise.
const DefaultName = "session-storage"

// persistedVersion is the version stamped on every persisted snapshot.
const persistedVersion = 0

// Session is an immutable snapshot of the session state. A nil AccessToken
// means no token is held.
type Session struct {
	AccessToken *string `json:"accessToken"`
}

// persistedSession is the envelope a Session is persisted in.
type persistedSession struct {
	State   Session `json:"state"`
	Version int     `json:"version"`
}

// Store is an observable, persisted holder of a Session. It implements the
// SDK's TokenSource so that every outgoing request carries whatever token the
// Store holds when the request is sent.
type Store struct {
	storage Storage
	name    string

	mu        sync.RWMutex
	session   Session
	listeners map[int]func(Session)
	nextID    int
}

// NewStore returns a Store hydrated from the entry with the provided name in
// storage. If no such entry exists, the Store starts out holding no token.
func NewStore(ctx context.Context, storage Storage, name string) (*Store, error) {
	s := &Store{
		storage:   storage,
		name:      name,
		listeners: map[int]func(Session){},
	}
	value, found, err := storage.GetItem(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading session entry %q", name)
	}
	if !found {
		return s, nil
	}
	persisted := persistedSession{}
	if err := json.Unmarshal(value, &persisted); err != nil {
		return nil, errors.Wrapf(err, "error decoding session entry %q", name)
	}
	s.session = Session{
		AccessToken: copyToken(persisted.State.AccessToken),
	}
	return s, nil
}

// Snapshot returns the current Session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{
		AccessToken: copyToken(s.session.AccessToken),
	}
}

// AccessToken returns the token currently held, if any.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.AccessToken == nil {
		return "", false
	}
	return *s.session.AccessToken, true
}

// SetAccessToken replaces the token held by the Store. Any value, including
// nil, is accepted as is. The new Session is persisted and then published to
// subscribers. Subscribers are notified even if persisting fails, in which
// case the error is returned.
func (s *Store) SetAccessToken(ctx context.Context, token *string) error {
	s.mu.Lock()
	s.session = Session{
		AccessToken: copyToken(token),
	}
	snapshot := Session{
		AccessToken: copyToken(s.session.AccessToken),
	}
	listeners := make([]func(Session), 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	persistErr := s.persist(ctx, snapshot)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
	return persistErr
}

// ClearAccessToken is equivalent to SetAccessToken(ctx, nil).
func (s *Store) ClearAccessToken(ctx context.Context) error {
	return s.SetAccessToken(ctx, nil)
}

// Subscribe registers fn to receive every new Session. The returned function
// cancels the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// persist must be called while holding the write lock so that concurrent
// mutations reach storage in the order they were applied.
func (s *Store) persist(ctx context.Context, session Session) error {
	value, err := json.Marshal(
		persistedSession{
			State:   session,
			Version: persistedVersion,
		},
	)
	if err != nil {
		return errors.Wrap(err, "error encoding session")
	}
	if err := s.storage.SetItem(ctx, s.name, value); err != nil {
		return errors.Wrapf(err, "error persisting session entry %q", s.name)
	}
	return nil
}

func copyToken(token *string) *string {
	if token == nil {
		return nil
	}
	t := *token
	return &t
}
