package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/regionalitapevi/admin-portal/internal/api/metrics"
	apimw "github.com/regionalitapevi/admin-portal/internal/api/middleware"
	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

// AuthHandler exposes the authentication endpoints: login, logout, who-am-I
// and the password lifecycle.
type AuthHandler struct {
	auth         ports.AuthService
	authorizer   ports.Authorizer
	cookieSecure bool
}

func NewAuthHandler(auth ports.AuthService, authorizer ports.Authorizer, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		authorizer:   authorizer,
		cookieSecure: cookieSecure,
	}
}

type loginRequest struct {
	Email      string `json:"email" form:"email" validate:"required,email"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type loginResponse struct {
	Success   bool         `json:"success"`
	Error     string       `json:"error,omitempty"`
	User      *domain.User `json:"user,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// Login verifies credentials and sets the session cookie. Failures use a
// {success:false, error} envelope with a generic message: unknown email and
// wrong password are indistinguishable.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{Success: false, Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{Success: false, Error: err.Error()})
	}

	session, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, req.RememberMe, apimw.ClientMeta(c))
	if err != nil {
		return h.loginError(c, err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.setSessionCookie(c, session.Token, time.Until(session.ExpiresAt))
	return c.JSON(http.StatusOK, loginResponse{Success: true, User: user, ExpiresAt: &session.ExpiresAt})
}

func (h *AuthHandler) loginError(c echo.Context, err error) error {
	status := http.StatusUnauthorized
	msg := "invalid email or password"
	result := "invalid_credentials"

	switch err {
	case domain.ErrInvalidCredentials:
		// defaults
	case domain.ErrAccountInactive:
		status, msg, result = http.StatusForbidden, "account inactive, contact an administrator", "inactive"
	case domain.ErrTooManyAttempts:
		status, msg, result = http.StatusTooManyRequests, "too many attempts, try again later", "throttled"
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err // unexpected: let the central error handler log it
	}

	metrics.LoginsTotal.WithLabelValues(result).Inc()
	return c.JSON(status, loginResponse{Success: false, Error: msg})
}

// Logout invalidates the current session and clears the cookie. Always
// succeeds from the client's point of view.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := apimw.BearerToken(c)
	if token != "" {
		if err := h.auth.Logout(c.Request().Context(), token, apimw.UserFrom(c), apimw.ClientMeta(c)); err != nil {
			return err
		}
	}
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type meResponse struct {
	User        *domain.User `json:"user"`
	AccessLevel string       `json:"access_level"`
	Permissions []string     `json:"permissions"`
}

// Me returns the authenticated identity's profile, level name and full
// granted permission set.
func (h *AuthHandler) Me(c echo.Context) error {
	user := apimw.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

	perms, err := h.authorizer.ListPermissions(c.Request().Context(), user.Identity())
	if err != nil {
		return err
	}
	if perms == nil {
		perms = []string{}
	}
	return c.JSON(http.StatusOK, meResponse{User: user, AccessLevel: user.Level.Name, Permissions: perms})
}

type registerRequest struct {
	Email      string `json:"email" form:"email" validate:"required,email"`
	Password   string `json:"password" form:"password" validate:"required,min=8"`
	FirstName  string `json:"first_name" form:"first_name" validate:"required"`
	LastName   string `json:"last_name" form:"last_name"`
	Phone      string `json:"phone" form:"phone"`
	ChurchCode string `json:"church_code" form:"church_code"`
	ChurchName string `json:"church_name" form:"church_name"`
}

// Register creates an account at the default access level.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		ChurchCode: req.ChurchCode,
		ChurchName: req.ChurchName,
	}, apimw.ClientMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "user": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// ChangePassword re-verifies the current password, stores the new hash and
// revokes every session of the user, the current one included.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user := apimw.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.auth.ChangePassword(c.Request().Context(), user, req.CurrentPassword, req.NewPassword, apimw.ClientMeta(c)); err != nil {
		return err
	}

	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "password changed, please log in again"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ForgotPassword issues a reset token. The response is identical for known
// and unknown emails so account existence is not leaked; token delivery
// happens out of band.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "if the email exists, reset instructions have been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token" form:"token" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=8"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword, apimw.ClientMeta(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "password reset, please log in"})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     apimw.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     apimw.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
