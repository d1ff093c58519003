package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the slice of user storage the auth service needs.
type UserRepository interface {
	GetActiveByUsername(ctx context.Context, username string) (*User, string, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	TouchLastLogin(ctx context.Context, userID int64) error
}

// ActivityLogger appends audit trail entries. Failures are logged and
// swallowed so auditing never blocks a login or logout.
type ActivityLogger interface {
	Log(ctx context.Context, userID int64, action, description, ip string)
}

type Service struct {
	userRepo UserRepository
	sessions *SessionStore
	activity ActivityLogger
	logger   *slog.Logger
}

func NewService(userRepo UserRepository, sessions *SessionStore, activity ActivityLogger, logger *slog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		sessions: sessions,
		activity: activity,
		logger:   logger,
	}
}

func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Authenticate verifies credentials and establishes a session. Unknown
// username, wrong password, and inactive account all return the same
// ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO, ip string) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, storedHash, err := s.userRepo.GetActiveByUsername(ctx, dto.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", "error", err, "user_id", user.ID)
	}

	s.activity.Log(ctx, user.ID, "login", "User logged in successfully", ip)

	s.logger.Info("user authenticated", "user_id", user.ID, "username", user.Username, "role", user.Role)

	return sess, nil
}

// Logout records the logout and destroys the session. A missing session
// is not an error.
func (s *Service) Logout(ctx context.Context, token, ip string) {
	sess, ok := s.sessions.Get(token)
	if !ok {
		return
	}

	s.activity.Log(ctx, sess.UserID, "logout", "User logged out", ip)
	s.sessions.Destroy(token)

	s.logger.Info("user logged out", "user_id", sess.UserID, "username", sess.Username)
}

// CurrentUser re-fetches the authoritative user row for the session-held
// id. Role or status may have changed since login.
func (s *Service) CurrentUser(ctx context.Context, sess *Session) (*User, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	return s.userRepo.GetByID(ctx, sess.UserID)
}
