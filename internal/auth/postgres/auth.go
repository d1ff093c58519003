package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/atokschool/archiving-portal/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetActiveByUsername returns the user and stored password hash. Inactive
// and unknown accounts are indistinguishable to the caller.
func (r *Repository) GetActiveByUsername(ctx context.Context, username string) (*auth.User, string, error) {
	var (
		user auth.User
		hash string
	)

	query := `SELECT id, username, password_hash, full_name, email, role, status
	          FROM users WHERE username = ? AND status = 'active'`

	row := r.db.WithContext(ctx).Raw(query, username).Row()
	if err := row.Scan(&user.ID, &user.Username, &hash, &user.FullName, &user.Email, &user.Role, &user.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}

	return &user, hash, nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT id, username, full_name, email, role, status FROM users WHERE id = ?`

	row := r.db.WithContext(ctx).Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Username, &user.FullName, &user.Email, &user.Role, &user.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNoSession
		}
		return nil, err
	}

	return &user, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Exec(`UPDATE users SET last_login = ? WHERE id = ?`, time.Now(), userID).Error
}
