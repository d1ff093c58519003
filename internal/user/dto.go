package user

import (
	"errors"
	"strings"

	"github.com/atokschool/archiving-portal/internal/auth"
)

var (
	ErrMissingFields    = errors.New("all required fields must be filled in")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidStatus    = errors.New("invalid status")
)

const minPasswordLength = 8

type CreateUserDTO struct {
	Username string
	Password string
	FullName string
	Email    string
	Role     string
}

func (dto CreateUserDTO) Validate() error {
	if strings.TrimSpace(dto.Username) == "" ||
		dto.Password == "" ||
		strings.TrimSpace(dto.FullName) == "" ||
		strings.TrimSpace(dto.Email) == "" ||
		strings.TrimSpace(dto.Role) == "" {
		return ErrMissingFields
	}
	if len(dto.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if _, err := auth.ParseRole(dto.Role); err != nil {
		return ErrInvalidRole
	}
	return nil
}

// UpdateUserDTO changes profile fields and optionally resets the
// password. An empty Password leaves the stored hash untouched.
type UpdateUserDTO struct {
	ID       int64
	FullName string
	Email    string
	Role     string
	Status   string
	Password string
}

func (dto UpdateUserDTO) Validate() error {
	if dto.ID <= 0 ||
		strings.TrimSpace(dto.FullName) == "" ||
		strings.TrimSpace(dto.Email) == "" ||
		strings.TrimSpace(dto.Role) == "" {
		return ErrMissingFields
	}
	if _, err := auth.ParseRole(dto.Role); err != nil {
		return ErrInvalidRole
	}
	if dto.Status != StatusActive && dto.Status != StatusInactive {
		return ErrInvalidStatus
	}
	if dto.Password != "" && len(dto.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

type ChangePasswordDTO struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (dto ChangePasswordDTO) Validate() error {
	if dto.CurrentPassword == "" || dto.NewPassword == "" {
		return ErrMissingFields
	}
	if len(dto.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if dto.NewPassword != dto.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

type UserPage struct {
	Users      []*User `json:"users"`
	TotalUsers int64   `json:"total_users"`
}
