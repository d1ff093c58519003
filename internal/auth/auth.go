package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Role is the closed set of staff roles. Anything else denies everything.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSchoolHead Role = "school_head"
	RoleRegistrar  Role = "registrar"
)

type Permission string

const (
	PermissionView        Permission = "view"
	PermissionUpload      Permission = "upload"
	PermissionEdit        Permission = "edit"
	PermissionDelete      Permission = "delete"
	PermissionManageUsers Permission = "manage_users"
	PermissionBackup      Permission = "backup"
)

// rolePermissions is the static access control table. Deny-by-default:
// unknown roles and unknown permissions both resolve to false.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:      {PermissionView, PermissionUpload, PermissionEdit, PermissionDelete, PermissionManageUsers, PermissionBackup},
	RoleSchoolHead: {PermissionView},
	RoleRegistrar:  {PermissionView, PermissionUpload},
}

func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

func (r Role) HasPermission(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

func (r Role) Permissions() []Permission {
	perms := rolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

func ParseRole(s string) (Role, error) {
	role := Role(strings.TrimSpace(s))
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// User is the identity threaded through request contexts. It is re-fetched
// from the users table on every request so role or status changes take
// effect without waiting for the session to expire.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Status   string `json:"status"`
}

func (u *User) HasPermission(p Permission) bool {
	if u == nil {
		return false
	}
	return u.Role.HasPermission(p)
}

// Session is the server-side state created at login.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	Role      Role
	FullName  string
	LoginTime time.Time
	LastSeen  time.Time

	csrfToken string
	alert     *Alert
}

// Alert is the one-shot session-scoped status message surfaced on the
// next rendered page.
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if strings.TrimSpace(dto.Username) == "" {
		return errors.New("username is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidCSRFToken   = errors.New("invalid csrf token")
)

type ctxKey string

const contextUserKey ctxKey = "user"
const contextSessionKey ctxKey = "session"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextSessionKey).(*Session)
	return s, ok
}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextSessionKey, s)
}
