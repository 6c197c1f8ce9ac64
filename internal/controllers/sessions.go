package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/contentpilot/cps/internal/db"
)

// SessionStore tracks admin session tokens. Sessions live in the database when
// one is configured so that they survive restarts; otherwise they are held in
// memory. Expired sessions are purged lazily whenever the store is consulted.
type SessionStore struct {
	gormdb   *gorm.DB
	lifetime time.Duration

	mutex  sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

// NewSessionStore creates a SessionStore with the given session lifetime. gormdb
// may be nil, in which case sessions are memory-backed.
func NewSessionStore(gormdb *gorm.DB, lifetime time.Duration) *SessionStore {
	return &SessionStore{
		gormdb:   gormdb,
		lifetime: lifetime,
		tokens:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// Create starts a new session and returns its token and expiration time.
func (s *SessionStore) Create(ctx context.Context) (string, time.Time, error) {
	wrapMsg := "unable to create the admin session"

	expiresAt := s.now().Add(s.lifetime)

	if s.gormdb != nil {
		session, err := db.CreateAdminSession(ctx, s.gormdb, expiresAt)
		if err != nil {
			return "", time.Time{}, errors.Wrap(err, wrapMsg)
		}
		return *session.ID, session.ExpiresAt, nil
	}

	token := uuid.NewString()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.purgeLocked()
	s.tokens[token] = expiresAt

	return token, expiresAt, nil
}

// Valid reports whether the token names a live session. Tokens that are not
// well-formed UUIDs are rejected without touching the store.
func (s *SessionStore) Valid(ctx context.Context, token string) bool {
	if _, err := uuid.Parse(token); err != nil {
		return false
	}

	if s.gormdb != nil {
		valid, err := db.AdminSessionValid(ctx, s.gormdb, token)
		if err != nil {
			log.Errorf("unable to validate an admin session: %s", err.Error())
			return false
		}
		return valid
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.purgeLocked()
	_, ok := s.tokens[token]
	return ok
}

// Delete ends the session named by the token. Deleting an unknown token is not
// an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return nil
	}

	if s.gormdb != nil {
		return db.DeleteAdminSession(ctx, s.gormdb, token)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.tokens, token)
	return nil
}

// purgeLocked drops expired in-memory sessions. The caller must hold the mutex.
func (s *SessionStore) purgeLocked() {
	now := s.now()
	for token, expiresAt := range s.tokens {
		if !expiresAt.After(now) {
			delete(s.tokens, token)
		}
	}
}
