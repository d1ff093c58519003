package auth

import "crypto/subtle"

// CSRFToken returns the session's anti-forgery token, creating it on
// first use. One token per session, reused across forms.
func (s *SessionStore) CSRFToken(sess *Session) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.csrfToken == "" {
		token, err := GenerateRandomToken()
		if err != nil {
			return "", err
		}
		sess.csrfToken = token
	}
	return sess.csrfToken, nil
}

// ValidateCSRF checks a submitted token against the session token in
// constant time. A session without an issued token always fails.
func (s *SessionStore) ValidateCSRF(sess *Session, submitted string) error {
	s.mu.RLock()
	stored := sess.csrfToken
	s.mu.RUnlock()

	if stored == "" || submitted == "" {
		return ErrInvalidCSRFToken
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return ErrInvalidCSRFToken
	}
	return nil
}
