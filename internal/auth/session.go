package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// SessionStore holds sessions in memory, keyed by opaque token. Sessions
// expire after the configured inactivity timeout; expired entries are
// evicted lazily on lookup and by the periodic sweep.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	timeout  time.Duration
	now      func() time.Time
}

func NewSessionStore(timeout time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// GenerateRandomToken returns 32 bytes of cryptographic randomness,
// hex-encoded. Used for session and CSRF tokens.
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Create establishes a session for the authenticated user.
func (s *SessionStore) Create(u *User) (*Session, error) {
	token, err := GenerateRandomToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		FullName:  u.FullName,
		LoginTime: now,
		LastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()

	return sess, nil
}

// Get resolves a token to a live session, touching its last-seen time.
// Sessions past the inactivity timeout are destroyed and reported absent.
func (s *SessionStore) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.LastSeen) > s.timeout {
		delete(s.sessions, token)
		return nil, false
	}
	sess.LastSeen = s.now()
	return sess, true
}

func (s *SessionStore) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Sweep drops all expired sessions and returns how many were evicted.
// Run periodically from the server loop.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.timeout)
	evicted := 0
	for token, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, token)
			evicted++
		}
	}
	return evicted
}

// SetAlert stages a one-shot alert on the session.
func (s *SessionStore) SetAlert(sess *Session, alertType, message string) {
	s.mu.Lock()
	sess.alert = &Alert{Type: alertType, Message: message}
	s.mu.Unlock()
}

// PopAlert returns the staged alert and clears it.
func (s *SessionStore) PopAlert(sess *Session) *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert := sess.alert
	sess.alert = nil
	return alert
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
