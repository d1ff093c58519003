package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/atokschool/archiving-portal/internal/auth"
)

// MockUserRepository implements auth.UserRepository for testing.
type MockUserRepository struct {
	users       map[string]*auth.User
	hashes      map[string]string
	lastLoginID int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*auth.User),
		hashes: make(map[string]string),
	}
}

func (m *MockUserRepository) AddUser(u *auth.User, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.users[u.Username] = u
	m.hashes[u.Username] = string(hash)
}

func (m *MockUserRepository) GetActiveByUsername(_ context.Context, username string) (*auth.User, string, error) {
	u, ok := m.users[username]
	if !ok || u.Status != "active" {
		return nil, "", auth.ErrInvalidCredentials
	}
	return u, m.hashes[username], nil
}

func (m *MockUserRepository) GetByID(_ context.Context, userID int64) (*auth.User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *MockUserRepository) TouchLastLogin(_ context.Context, userID int64) error {
	m.lastLoginID = userID
	return nil
}

// MockActivityLogger records audit calls for assertions.
type MockActivityLogger struct {
	entries []string
}

func (m *MockActivityLogger) Log(_ context.Context, _ int64, action, _, _ string) {
	m.entries = append(m.entries, action)
}

var _ = Describe("Auth Service", func() {
	var (
		repo     *MockUserRepository
		sessions *auth.SessionStore
		audit    *MockActivityLogger
		service  *auth.Service
	)

	BeforeEach(func() {
		repo = NewMockUserRepository()
		sessions = auth.NewSessionStore(time.Hour)
		audit = &MockActivityLogger{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(repo, sessions, audit, lg)

		repo.AddUser(&auth.User{
			ID:       1,
			Username: "registrar",
			FullName: "Maria Santos",
			Role:     auth.RoleRegistrar,
			Status:   "active",
		}, "secret-password")
	})

	Describe("Authenticate", func() {
		It("should establish a session for valid credentials", func() {
			sess, err := service.Authenticate(context.Background(), auth.LoginDTO{
				Username: "registrar",
				Password: "secret-password",
			}, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(sess.UserID).To(Equal(int64(1)))
			Expect(sess.Token).NotTo(BeEmpty())
			Expect(sessions.Len()).To(Equal(1))
		})

		It("should touch last login and record the login", func() {
			_, err := service.Authenticate(context.Background(), auth.LoginDTO{
				Username: "registrar",
				Password: "secret-password",
			}, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastLoginID).To(Equal(int64(1)))
			Expect(audit.entries).To(ContainElement("login"))
		})

		It("should return the same error for a wrong password", func() {
			_, err := service.Authenticate(context.Background(), auth.LoginDTO{
				Username: "registrar",
				Password: "wrong",
			}, "10.0.0.1")

			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
			Expect(sessions.Len()).To(Equal(0))
		})

		It("should return the same error for an unknown username", func() {
			_, err := service.Authenticate(context.Background(), auth.LoginDTO{
				Username: "nobody",
				Password: "secret-password",
			}, "10.0.0.1")

			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should return the same error for an inactive account", func() {
			repo.AddUser(&auth.User{
				ID:       2,
				Username: "retired",
				Role:     auth.RoleRegistrar,
				Status:   "inactive",
			}, "secret-password")

			_, err := service.Authenticate(context.Background(), auth.LoginDTO{
				Username: "retired",
				Password: "secret-password",
			}, "10.0.0.1")

			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject empty credentials before touching the repo", func() {
			_, err := service.Authenticate(context.Background(), auth.LoginDTO{}, "10.0.0.1")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Logout", func() {
		It("should destroy the session and record the logout", func() {
			sess, err := service.Authenticate(context.Background(), auth.LoginDTO{
				Username: "registrar",
				Password: "secret-password",
			}, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			service.Logout(context.Background(), sess.Token, "10.0.0.1")

			_, ok := sessions.Get(sess.Token)
			Expect(ok).To(BeFalse())
			Expect(audit.entries).To(ContainElement("logout"))
		})

		It("should be a no-op for an unknown token", func() {
			service.Logout(context.Background(), "no-such-token", "10.0.0.1")
			Expect(audit.entries).NotTo(ContainElement("logout"))
		})
	})

	Describe("CurrentUser", func() {
		It("should re-fetch the authoritative user row", func() {
			sess, err := service.Authenticate(context.Background(), auth.LoginDTO{
				Username: "registrar",
				Password: "secret-password",
			}, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			// role change after login is visible immediately
			repo.users["registrar"].Role = auth.RoleAdmin

			u, err := service.CurrentUser(context.Background(), sess)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleAdmin))
		})

		It("should fail without a session", func() {
			_, err := service.CurrentUser(context.Background(), nil)
			Expect(err).To(MatchError(auth.ErrNoSession))
		})
	})
})
