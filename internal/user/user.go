package user

import (
	"errors"
	"time"

	"github.com/atokschool/archiving-portal/internal/auth"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("username or email already exists")
	ErrWrongPassword = errors.New("current password is incorrect")
)

// User is the full account row. PasswordHash never leaves the package
// boundary in responses.
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Role         auth.Role  `json:"role"`
	Status       string     `json:"status"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// View converts the account row to the identity shape carried in request
// context.
func (u *User) View() *auth.User {
	return &auth.User{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		Status:   u.Status,
	}
}
