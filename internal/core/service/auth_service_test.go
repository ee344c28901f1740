package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

type authFixture struct {
	svc      *AuthService
	users    *stubUserRepo
	rbac     *stubRBACRepo
	sessions *stubSessionRepo
	audit    *recordingAudit
	throttle *stubThrottle
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newStubUserRepo()
	rbac := newStubRBACRepo()
	rbac.addLevel(domain.LevelMusician, 5)
	sessions := newStubSessionRepo()
	audit := &recordingAudit{}
	throttle := newStubThrottle(5)

	manager := NewSessionManager(sessions, users, time.Hour, 24*time.Hour, zerolog.Nop())
	svc := NewAuthService(users, rbac, manager, audit, throttle, "test-reset-secret", zerolog.Nop())
	return &authFixture{svc: svc, users: users, rbac: rbac, sessions: sessions, audit: audit, throttle: throttle}
}

func (f *authFixture) seedUser(t *testing.T, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		Email:        email,
		FirstName:    "Ana",
		PasswordHash: hash,
		Active:       active,
		Level:        domain.AccessLevel{ID: "lvl", Name: domain.LevelMusician, Rank: 5},
	}
	f.users.add(u)
	return u
}

func TestAuthService_LoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "correct-horse", true)
	meta := domain.ClientMeta{IPAddress: "10.0.0.1", UserAgent: "test"}

	session, user, err := f.svc.Login(context.Background(), "ana@example.com", "correct-horse", false, meta)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session == nil || session.Token == "" {
		t.Fatalf("no session issued")
	}
	if user.LastLogin == nil {
		t.Fatalf("last login not stamped")
	}

	logged := f.audit.byAction(domain.ActionLoginSuccess)
	if len(logged) != 1 {
		t.Fatalf("want 1 login_success entry, got %d", len(logged))
	}
	if logged[0].UserID == nil || *logged[0].UserID != user.ID {
		t.Fatalf("audit entry missing user id")
	}
	if logged[0].IPAddress != "10.0.0.1" {
		t.Fatalf("audit entry missing client ip")
	}
}

func TestAuthService_LoginWrongPasswordThreeTimes(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ana@example.com", "correct-horse", true)
	meta := domain.ClientMeta{IPAddress: "10.0.0.1"}

	for i := 0; i < 3; i++ {
		_, _, err := f.svc.Login(context.Background(), "ana@example.com", "wrong", false, meta)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	failed := f.audit.byAction(domain.ActionLoginFailed)
	if len(failed) != 3 {
		t.Fatalf("want 3 login_failed entries, got %d", len(failed))
	}
	for _, e := range failed {
		if e.Success {
			t.Fatalf("login_failed entry marked success")
		}
		if e.UserID == nil || *e.UserID != user.ID {
			t.Fatalf("failed attempt against a known account should carry the user id")
		}
	}
	if f.sessions.count() != 0 {
		t.Fatalf("failed logins created %d sessions", f.sessions.count())
	}
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	meta := domain.ClientMeta{IPAddress: "10.0.0.1"}

	_, _, err := f.svc.Login(context.Background(), "nobody@example.com", "whatever", false, meta)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	failed := f.audit.byAction(domain.ActionLoginFailed)
	if len(failed) != 1 {
		t.Fatalf("want 1 login_failed entry, got %d", len(failed))
	}
	if failed[0].UserID != nil {
		t.Fatalf("unknown email entry should have no user id")
	}
}

func TestAuthService_LoginInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "correct-horse", false)

	_, _, err := f.svc.Login(context.Background(), "ana@example.com", "correct-horse", false, domain.ClientMeta{})
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
	if f.sessions.count() != 0 {
		t.Fatalf("inactive account got a session")
	}
}

func TestAuthService_LoginThrottled(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "correct-horse", true)
	meta := domain.ClientMeta{IPAddress: "10.0.0.1"}

	for i := 0; i < 5; i++ {
		f.throttle.RecordFailure(context.Background(), "ana@example.com", meta.IPAddress)
	}

	_, _, err := f.svc.Login(context.Background(), "ana@example.com", "correct-horse", false, meta)
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if len(f.audit.byAction(domain.ActionLoginThrottled)) != 1 {
		t.Fatalf("throttled attempt not audited")
	}
}

func TestAuthService_LoginSuccessResetsThrottle(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "correct-horse", true)
	meta := domain.ClientMeta{IPAddress: "10.0.0.1"}

	f.throttle.RecordFailure(context.Background(), "ana@example.com", meta.IPAddress)
	f.throttle.RecordFailure(context.Background(), "ana@example.com", meta.IPAddress)

	if _, _, err := f.svc.Login(context.Background(), "ana@example.com", "correct-horse", false, meta); err != nil {
		t.Fatalf("login: %v", err)
	}
	if f.throttle.failures["ana@example.com"+meta.IPAddress] != 0 {
		t.Fatalf("failure counter not reset after successful login")
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:     "new@example.com",
		Password:  "long-enough-pw",
		FirstName: "Novo",
	}, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Level.Name != domain.LevelMusician {
		t.Fatalf("default level = %q, want %q", user.Level.Name, domain.LevelMusician)
	}
	if !user.Active {
		t.Fatalf("new account not active")
	}
	if user.PasswordHash == "long-enough-pw" || !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Fatalf("password stored without bcrypt hashing")
	}

	if _, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:     "new@example.com",
		Password:  "long-enough-pw",
		FirstName: "Dup",
	}, domain.ClientMeta{}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("duplicate email: expected ErrUserExists, got %v", err)
	}

	if _, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:     "short@example.com",
		Password:  "short",
		FirstName: "S",
	}, domain.ClientMeta{}); !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Fatalf("short password: expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAuthService_ChangePasswordRevokesAllSessions(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "old-password-1", true)
	meta := domain.ClientMeta{IPAddress: "10.0.0.1"}

	s1, user, err := f.svc.Login(context.Background(), "ana@example.com", "old-password-1", false, meta)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	s2, _, err := f.svc.Login(context.Background(), "ana@example.com", "old-password-1", false, meta)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := f.svc.ChangePassword(context.Background(), user, "old-password-1", "new-password-2", meta); err != nil {
		t.Fatalf("change password: %v", err)
	}

	for _, token := range []string{s1.Token, s2.Token} {
		stored, err := f.sessions.FindByToken(context.Background(), token)
		if err != nil {
			t.Fatalf("session row vanished: %v", err)
		}
		if stored.Active {
			t.Fatalf("session still active after password change")
		}
	}

	// Old password no longer works, new one does.
	if _, _, err := f.svc.Login(context.Background(), "ana@example.com", "old-password-1", false, meta); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "ana@example.com", "new-password-2", false, meta); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestAuthService_ChangePasswordWrongCurrent(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ana@example.com", "old-password-1", true)

	err := f.svc.ChangePassword(context.Background(), user, "not-the-password", "new-password-2", domain.ClientMeta{})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	entries := f.audit.byAction(domain.ActionPasswordChanged)
	if len(entries) != 1 || entries[0].Success {
		t.Fatalf("expected one failed password_changed entry, got %+v", entries)
	}
}

func TestAuthService_PasswordResetRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "old-password-1", true)

	token, err := f.svc.ForgotPassword(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if token == "" {
		t.Fatalf("no token for known email")
	}

	if err := f.svc.ResetPassword(context.Background(), token, "new-password-2", domain.ClientMeta{}); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "ana@example.com", "new-password-2", false, domain.ClientMeta{}); err != nil {
		t.Fatalf("new password rejected after reset: %v", err)
	}
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	token, err := f.svc.ForgotPassword(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if token != "" {
		t.Fatalf("unknown email must not yield a token")
	}
}

func TestAuthService_ResetPasswordBadToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "old-password-1", true)

	if err := f.svc.ResetPassword(context.Background(), "garbage.token.value", "new-password-2", domain.ClientMeta{}); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "old-password-1", true)

	// Issue the token two hours in the past so it is already expired.
	f.svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := f.svc.ForgotPassword(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	f.svc.now = time.Now

	if err := f.svc.ResetPassword(context.Background(), token, "new-password-2", domain.ClientMeta{}); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for expired token, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "correct-horse", true)

	session, user, err := f.svc.Login(context.Background(), "ana@example.com", "correct-horse", false, domain.ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.svc.Logout(context.Background(), session.Token, user, domain.ClientMeta{}); err != nil {
		t.Fatalf("logout: %v", err)
	}

	stored, err := f.sessions.FindByToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("session row vanished: %v", err)
	}
	if stored.Active {
		t.Fatalf("session still active after logout")
	}
	if len(f.audit.byAction(domain.ActionLogout)) != 1 {
		t.Fatalf("logout not audited")
	}
}
