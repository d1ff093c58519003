package auth_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/atokschool/archiving-portal/internal/auth"
)

var _ = Describe("Auth Middleware", func() {
	const cookieName = "archive_session"

	var (
		repo    *MockUserRepository
		service *auth.Service
		handler *auth.Handler

		nextCalled bool
		nextUser   *auth.User
		next       http.Handler
	)

	newHandler := func(timeout time.Duration) {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(repo, auth.NewSessionStore(timeout), &MockActivityLogger{}, lg)
		handler = auth.NewHandler(service, cookieName)
	}

	login := func(username string) *auth.Session {
		sess, err := service.Authenticate(context.Background(), auth.LoginDTO{
			Username: username,
			Password: "secret-password",
		}, "10.0.0.1")
		Expect(err).NotTo(HaveOccurred())
		return sess
	}

	BeforeEach(func() {
		repo = NewMockUserRepository()
		repo.AddUser(&auth.User{
			ID:       1,
			Username: "registrar",
			FullName: "Maria Santos",
			Role:     auth.RoleRegistrar,
			Status:   "active",
		}, "secret-password")
		repo.AddUser(&auth.User{
			ID:       2,
			Username: "principal",
			FullName: "Jose Ramirez",
			Role:     auth.RoleSchoolHead,
			Status:   "active",
		}, "secret-password")

		newHandler(time.Hour)

		nextCalled = false
		nextUser = nil
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
			nextUser, _ = auth.UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	})

	Describe("RequireAuth", func() {
		It("should redirect to login and halt when no cookie is sent", func() {
			req := httptest.NewRequest(http.MethodGet, "/students", nil)
			rec := httptest.NewRecorder()

			handler.RequireAuth(next).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal(auth.LoginPath))
			Expect(nextCalled).To(BeFalse())
		})

		It("should redirect to login for an unknown token", func() {
			req := httptest.NewRequest(http.MethodGet, "/students", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: "no-such-token"})
			rec := httptest.NewRecorder()

			handler.RequireAuth(next).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal(auth.LoginPath))
			Expect(nextCalled).To(BeFalse())
		})

		It("should redirect to login once the session has expired", func() {
			newHandler(10 * time.Millisecond)
			sess := login("registrar")
			time.Sleep(30 * time.Millisecond)

			req := httptest.NewRequest(http.MethodGet, "/students", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.Token})
			rec := httptest.NewRecorder()

			handler.RequireAuth(next).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal(auth.LoginPath))
			Expect(nextCalled).To(BeFalse())
		})

		It("should thread the authoritative user through the context", func() {
			sess := login("registrar")

			req := httptest.NewRequest(http.MethodGet, "/students", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.Token})
			rec := httptest.NewRecorder()

			handler.RequireAuth(next).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(nextCalled).To(BeTrue())
			Expect(nextUser).NotTo(BeNil())
			Expect(nextUser.Username).To(Equal("registrar"))
		})
	})

	Describe("RequirePermission", func() {
		guarded := func(perm auth.Permission) http.Handler {
			return handler.RequireAuth(handler.RequirePermission(perm)(next))
		}

		It("should send a school head posting an upload to the unauthorized page", func() {
			sess := login("principal")

			req := httptest.NewRequest(http.MethodPost, "/students", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.Token})
			rec := httptest.NewRecorder()

			guarded(auth.PermissionUpload).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal(auth.UnauthorizedPath))
			Expect(nextCalled).To(BeFalse())
		})

		It("should let a school head through a view-gated route", func() {
			sess := login("principal")

			req := httptest.NewRequest(http.MethodGet, "/students", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.Token})
			rec := httptest.NewRecorder()

			guarded(auth.PermissionView).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(nextCalled).To(BeTrue())
		})

		It("should let a registrar through an upload-gated route", func() {
			sess := login("registrar")

			req := httptest.NewRequest(http.MethodPost, "/students", nil)
			req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.Token})
			rec := httptest.NewRecorder()

			guarded(auth.PermissionUpload).ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(nextCalled).To(BeTrue())
		})
	})
})
