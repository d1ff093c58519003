package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atokschool/archiving-portal/internal/activity"
	"github.com/atokschool/archiving-portal/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type ActivityLogger interface {
	Log(ctx context.Context, userID int64, action, description, ip string)
}

type Service struct {
	repo       Repository
	activity   ActivityLogger
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, activityLog ActivityLogger, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		activity:   activityLog,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create provisions a new staff account. Usernames and emails are
// unique; the checks here give a friendly error before the DB
// constraints would.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateUserDTO, ip string) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByUsername(ctx, dto.Username); err == nil && existing != nil {
		return nil, ErrUserExists
	}
	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	role, _ := auth.ParseRole(dto.Role)
	u := &User{
		Username:     dto.Username,
		PasswordHash: string(hash),
		FullName:     dto.FullName,
		Email:        dto.Email,
		Role:         role,
		Status:       StatusActive,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.activity.Log(ctx, actor.ID, activity.ActionCreateUser,
		fmt.Sprintf("Created user account: %s (%s)", u.Username, u.Role), ip)

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role, "created_by", actor.ID)

	return u, nil
}

// Update rewrites the profile fields and, when dto.Password is set,
// resets the stored hash.
func (s *Service) Update(ctx context.Context, actor *auth.User, dto UpdateUserDTO, ip string) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err == nil && existing != nil && existing.ID != u.ID {
		return nil, ErrUserExists
	}

	role, _ := auth.ParseRole(dto.Role)
	u.FullName = dto.FullName
	u.Email = dto.Email
	u.Role = role
	u.Status = dto.Status

	if dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return nil, err
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", u.ID)
		return nil, err
	}

	s.activity.Log(ctx, actor.ID, activity.ActionUpdateUser,
		fmt.Sprintf("Updated user account: %s", u.Username), ip)

	return u, nil
}

// ChangePassword verifies the current password before accepting the new
// one. Any authenticated user may change their own.
func (s *Service) ChangePassword(ctx context.Context, actor *auth.User, dto ChangePasswordDTO, ip string) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return err
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", u.ID)
		return err
	}

	s.activity.Log(ctx, actor.ID, activity.ActionChangePassword, "Changed account password", ip)

	return nil
}

func (s *Service) List(ctx context.Context) (*UserPage, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", "error", err)
		return nil, err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	return &UserPage{Users: users, TotalUsers: total}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
