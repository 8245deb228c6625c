package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var ErrWrongPassword = errors.New("wrong password")

// Store is an in-memory session gate. Logging in with the shared
// password mints an opaque token; tokens expire after the TTL and a
// background sweep drops stale ones.
type Store struct {
	password string
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time

	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	now func() time.Time
}

func NewStore(password string, ttl time.Duration) *Store {
	s := &Store{
		password:    password,
		ttl:         ttl,
		sessions:    make(map[string]time.Time),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}
	go s.startCleanup()
	return s
}

// Enabled reports whether the gate is active. An empty password means
// the deployment runs open, every token check passes.
func (s *Store) Enabled() bool {
	return s.password != ""
}

// Login checks the password and mints a session token.
func (s *Store) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", ErrWrongPassword
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return token, nil
}

// Valid reports whether the token names a live session.
func (s *Store) Valid(token string) bool {
	if !s.Enabled() {
		return true
	}
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.sessions[token]
	if !ok {
		return false
	}
	if s.now().After(expiresAt) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// Logout drops the session if it exists.
func (s *Store) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Store) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, expiresAt := range s.sessions {
		if now.After(expiresAt) {
			delete(s.sessions, token)
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (s *Store) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
