package user_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/atokschool/archiving-portal/internal/auth"
	"github.com/atokschool/archiving-portal/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.Repository in memory.
type MockRepository struct {
	users  map[int64]*user.User
	nextID int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[int64]*user.User), nextID: 1}
}

func (m *MockRepository) Create(_ context.Context, u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) Update(_ context.Context, u *user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *MockRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *MockRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *MockRepository) List(_ context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MockRepository) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *MockRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// MockActivityLogger captures audit actions.
type MockActivityLogger struct {
	actions []string
}

func (m *MockActivityLogger) Log(_ context.Context, _ int64, action, _, _ string) {
	m.actions = append(m.actions, action)
}

var _ = Describe("User Service", func() {
	var (
		repo    *MockRepository
		audit   *MockActivityLogger
		service *user.Service
		admin   *auth.User
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		audit = &MockActivityLogger{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, audit, bcrypt.MinCost, lg)
		admin = &auth.User{ID: 1, Username: "admin", Role: auth.RoleAdmin}
	})

	validDTO := user.CreateUserDTO{
		Username: "registrar2",
		Password: "longenough",
		FullName: "Ana Reyes",
		Email:    "ana@atok-es.edu.ph",
		Role:     "registrar",
	}

	Describe("Create", func() {
		It("should store a bcrypt hash, never the raw password", func() {
			created, err := service.Create(context.Background(), admin, validDTO, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Status).To(Equal(user.StatusActive))
			Expect(created.PasswordHash).NotTo(Equal("longenough"))
			Expect(bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("longenough"))).To(Succeed())
			Expect(audit.actions).To(ContainElement("create_user"))
		})

		It("should reject a duplicate username", func() {
			_, err := service.Create(context.Background(), admin, validDTO, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(context.Background(), admin, validDTO, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrUserExists))
		})

		It("should reject a duplicate email under a different username", func() {
			_, err := service.Create(context.Background(), admin, validDTO, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			dto := validDTO
			dto.Username = "registrar3"
			_, err = service.Create(context.Background(), admin, dto, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrUserExists))
		})

		It("should reject an empty email", func() {
			dto := validDTO
			dto.Email = ""
			_, err := service.Create(context.Background(), admin, dto, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrMissingFields))
		})

		It("should reject a short password", func() {
			dto := validDTO
			dto.Password = "short"
			_, err := service.Create(context.Background(), admin, dto, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrPasswordTooShort))
		})

		It("should reject an unknown role", func() {
			dto := validDTO
			dto.Role = "superuser"
			_, err := service.Create(context.Background(), admin, dto, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrInvalidRole))
		})

		It("should reject missing fields", func() {
			dto := validDTO
			dto.FullName = ""
			_, err := service.Create(context.Background(), admin, dto, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrMissingFields))
		})
	})

	Describe("Update", func() {
		var existing *user.User

		BeforeEach(func() {
			var err error
			existing, err = service.Create(context.Background(), admin, validDTO, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			audit.actions = nil
		})

		It("should rewrite profile fields and record the update", func() {
			updated, err := service.Update(context.Background(), admin, user.UpdateUserDTO{
				ID:       existing.ID,
				FullName: "Ana R. Reyes",
				Email:    "ana.reyes@atok-es.edu.ph",
				Role:     "school_head",
				Status:   user.StatusInactive,
			}, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FullName).To(Equal("Ana R. Reyes"))
			Expect(updated.Role).To(Equal(auth.RoleSchoolHead))
			Expect(updated.Status).To(Equal(user.StatusInactive))
			Expect(audit.actions).To(ContainElement("update_user"))
		})

		It("should keep the old hash when no password is supplied", func() {
			before := existing.PasswordHash

			updated, err := service.Update(context.Background(), admin, user.UpdateUserDTO{
				ID:       existing.ID,
				FullName: "Ana Reyes",
				Email:    "ana@atok-es.edu.ph",
				Role:     "registrar",
				Status:   user.StatusActive,
			}, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.PasswordHash).To(Equal(before))
		})

		It("should reset the hash when a password is supplied", func() {
			before := existing.PasswordHash

			updated, err := service.Update(context.Background(), admin, user.UpdateUserDTO{
				ID:       existing.ID,
				FullName: "Ana Reyes",
				Email:    "ana@atok-es.edu.ph",
				Role:     "registrar",
				Status:   user.StatusActive,
				Password: "replacement",
			}, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.PasswordHash).NotTo(Equal(before))
			Expect(bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("replacement"))).To(Succeed())
		})

		It("should reject taking another account's email", func() {
			other := validDTO
			other.Username = "registrar3"
			other.Email = "other@atok-es.edu.ph"
			_, err := service.Create(context.Background(), admin, other, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(context.Background(), admin, user.UpdateUserDTO{
				ID:       existing.ID,
				FullName: "Ana Reyes",
				Email:    "other@atok-es.edu.ph",
				Role:     "registrar",
				Status:   user.StatusActive,
			}, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrUserExists))
		})

		It("should report an unknown user", func() {
			_, err := service.Update(context.Background(), admin, user.UpdateUserDTO{
				ID:       999,
				FullName: "Ghost",
				Email:    "ghost@atok-es.edu.ph",
				Role:     "registrar",
				Status:   user.StatusActive,
			}, "10.0.0.1")
			Expect(err).To(MatchError(user.ErrUserNotFound))
		})
	})

	Describe("ChangePassword", func() {
		var account *user.User

		BeforeEach(func() {
			var err error
			account, err = service.Create(context.Background(), admin, validDTO, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			audit.actions = nil
		})

		It("should rotate the password after verifying the current one", func() {
			err := service.ChangePassword(context.Background(), account.View(), user.ChangePasswordDTO{
				CurrentPassword: "longenough",
				NewPassword:     "brand-new-pass",
				ConfirmPassword: "brand-new-pass",
			}, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			stored, _ := repo.GetByID(context.Background(), account.ID)
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new-pass"))).To(Succeed())
			Expect(audit.actions).To(ContainElement("change_password"))
		})

		It("should reject a wrong current password", func() {
			err := service.ChangePassword(context.Background(), account.View(), user.ChangePasswordDTO{
				CurrentPassword: "wrong",
				NewPassword:     "brand-new-pass",
				ConfirmPassword: "brand-new-pass",
			}, "10.0.0.1")

			Expect(err).To(MatchError(user.ErrWrongPassword))
			Expect(audit.actions).To(BeEmpty())
		})

		It("should reject mismatched confirmation", func() {
			err := service.ChangePassword(context.Background(), account.View(), user.ChangePasswordDTO{
				CurrentPassword: "longenough",
				NewPassword:     "brand-new-pass",
				ConfirmPassword: "different",
			}, "10.0.0.1")

			Expect(err).To(MatchError(user.ErrPasswordMismatch))
		})
	})

	Describe("List", func() {
		It("should return users with the total", func() {
			_, err := service.Create(context.Background(), admin, validDTO, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			page, err := service.List(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Users).To(HaveLen(1))
			Expect(page.TotalUsers).To(Equal(int64(1)))
		})
	})
})
