package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

const (
	minPasswordLen   = 8
	resetTokenTTL    = time.Hour
	resetTokenIssuer = "admin-portal"
)

// AuthService implements credential verification, registration and the
// password lifecycle on top of the session manager and audit logger.
type AuthService struct {
	users       ports.UserRepository
	rbac        ports.RBACRepository
	sessions    ports.SessionManager
	audit       ports.AuditLogger
	throttle    ports.LoginThrottle
	resetSecret []byte
	now         func() time.Time
	log         zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	rbac ports.RBACRepository,
	sessions ports.SessionManager,
	audit ports.AuditLogger,
	throttle ports.LoginThrottle,
	resetSecret string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		rbac:        rbac,
		sessions:    sessions,
		audit:       audit,
		throttle:    throttle,
		resetSecret: []byte(resetSecret),
		now:         time.Now,
		log:         log,
	}
}

// HashPassword produces a salted bcrypt hash; the salt is embedded in the
// output so no separate salt storage is needed.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// verifyPassword reports whether plaintext matches the stored hash. A
// malformed stored hash fails closed and is logged as a local comparison
// failure rather than propagated.
func (s *AuthService) verifyPassword(plaintext, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		s.log.Warn().Err(err).Msg("password comparison failed on malformed hash")
	}
	return false
}

func (s *AuthService) Login(ctx context.Context, email, password string, remember bool, meta domain.ClientMeta) (*domain.Session, *domain.User, error) {
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil && s.throttle.TooManyFailures(ctx, email, meta.IPAddress) {
		s.recordAuth(ctx, nil, domain.ActionLoginThrottled, meta, false, "rate limited")
		return nil, nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same outcome as a wrong password: no signal distinguishes
			// "no such user" from "bad password".
			s.recordAuth(ctx, nil, domain.ActionLoginFailed, meta, false, "unknown email")
			if s.throttle != nil {
				s.throttle.RecordFailure(ctx, email, meta.IPAddress)
			}
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if !s.verifyPassword(password, user.PasswordHash) {
		s.recordAuth(ctx, user, domain.ActionLoginFailed, meta, false, "wrong password")
		if s.throttle != nil {
			s.throttle.RecordFailure(ctx, email, meta.IPAddress)
		}
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		s.recordAuth(ctx, user, domain.ActionLoginFailed, meta, false, "account inactive")
		return nil, nil, domain.ErrAccountInactive
	}

	session, err := s.sessions.Create(ctx, user, remember, meta)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}
	user.LastLogin = &now

	if s.throttle != nil {
		s.throttle.Reset(ctx, email, meta.IPAddress)
	}
	s.recordAuth(ctx, user, domain.ActionLoginSuccess, meta, true, "")
	return session, user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string, user *domain.User, meta domain.ClientMeta) error {
	if _, err := s.sessions.Invalidate(ctx, token); err != nil {
		return err
	}
	s.recordAuth(ctx, user, domain.ActionLogout, meta, true, "")
	return nil
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput, meta domain.ClientMeta) (*domain.User, error) {
	if in.Email == "" || in.FirstName == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.ErrPasswordTooShort
	}

	level, err := s.rbac.FindLevelByName(ctx, domain.LevelMusician)
	if err != nil {
		return nil, fmt.Errorf("resolve default level: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		PasswordHash: hash,
		Level:        *level,
		ChurchCode:   in.ChurchCode,
		ChurchName:   in.ChurchName,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.recordAuth(ctx, created, domain.ActionUserRegistered, meta, true, "")
	return created, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string, meta domain.ClientMeta) error {
	if !s.verifyPassword(current, user.PasswordHash) {
		s.recordAuth(ctx, user, domain.ActionPasswordChanged, meta, false, "current password mismatch")
		return domain.ErrInvalidCredentials
	}
	if len(next) < minPasswordLen {
		return domain.ErrPasswordTooShort
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// Every session is revoked, the current one included; the caller must
	// log in again with the new password.
	if err := s.sessions.InvalidateAll(ctx, user.ID); err != nil {
		return err
	}

	s.recordAuth(ctx, user, domain.ActionPasswordChanged, meta, true, "")
	return nil
}

// ForgotPassword issues a signed single-purpose reset token. Unknown emails
// succeed silently with an empty token so account existence is not leaked.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"iss":     resetTokenIssuer,
		"purpose": "password_reset",
		"iat":     now.Unix(),
		"exp":     now.Add(resetTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.resetSecret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, next string, meta domain.ClientMeta) error {
	userID, err := s.parseResetToken(token)
	if err != nil {
		return domain.ErrInvalidResetToken
	}
	if len(next) < minPasswordLen {
		return domain.ErrPasswordTooShort
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.sessions.InvalidateAll(ctx, user.ID); err != nil {
		return err
	}

	s.recordAuth(ctx, user, domain.ActionPasswordReset, meta, true, "")
	return nil
}

func (s *AuthService) parseResetToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.resetSecret, nil
	}, jwt.WithIssuer(resetTokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidResetToken
	}
	if purpose, _ := claims["purpose"].(string); purpose != "password_reset" {
		return "", domain.ErrInvalidResetToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidResetToken
	}
	return sub, nil
}

func (s *AuthService) recordAuth(ctx context.Context, user *domain.User, action string, meta domain.ClientMeta, success bool, errMsg string) {
	entry := domain.AccessLog{
		Action:       action,
		Module:       "auth",
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		Success:      success,
		ErrorMessage: errMsg,
		CreatedAt:    s.now().UTC(),
	}
	if user != nil {
		id := user.ID
		entry.UserID = &id
	}
	s.audit.Record(ctx, entry)
}
