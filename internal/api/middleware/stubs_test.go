package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// stubSessions validates against a fixed token→user table.
type stubSessions struct {
	users       map[string]*domain.User // by token
	validateErr error
}

func (s *stubSessions) Create(_ context.Context, _ *domain.User, _ bool, _ domain.ClientMeta) (*domain.Session, error) {
	return nil, nil
}

func (s *stubSessions) Validate(_ context.Context, token string) (*domain.User, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, domain.ErrSessionInvalid
}

func (s *stubSessions) Invalidate(_ context.Context, token string) (bool, error) {
	_, ok := s.users[token]
	delete(s.users, token)
	return ok, nil
}

func (s *stubSessions) InvalidateAll(_ context.Context, _ string) error {
	return nil
}

// stubAuthorizer grants a fixed permission set.
type stubAuthorizer struct {
	granted map[string]bool
	err     error
}

func (a *stubAuthorizer) HasPermission(_ context.Context, id domain.Identity, permission string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	if id.Superuser {
		return true, nil
	}
	return a.granted[permission], nil
}

func (a *stubAuthorizer) HasRoleAtLeast(_ context.Context, id domain.Identity, _ string) (bool, error) {
	return id.Superuser, a.err
}

func (a *stubAuthorizer) HasModuleAccess(_ context.Context, id domain.Identity, _ string) (bool, error) {
	return id.Superuser, a.err
}

func (a *stubAuthorizer) ListPermissions(_ context.Context, _ domain.Identity) ([]string, error) {
	var out []string
	for name, ok := range a.granted {
		if ok {
			out = append(out, name)
		}
	}
	return out, a.err
}

// recordingAudit captures audit entries synchronously.
type recordingAudit struct {
	mu      sync.Mutex
	entries []domain.AccessLog
}

func (a *recordingAudit) Record(_ context.Context, entry domain.AccessLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func (a *recordingAudit) last() domain.AccessLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.entries[len(a.entries)-1]
}

func newContext(e *echo.Echo, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
