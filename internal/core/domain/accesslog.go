package domain

import "time"

// Access log actions emitted by the auth subsystem. Request-path entries use
// the synthesized "<METHOD>_<STATUS>" form instead.
const (
	ActionLoginSuccess     = "login_success"
	ActionLoginFailed      = "login_failed"
	ActionLoginThrottled   = "login_throttled"
	ActionLogout           = "logout"
	ActionPasswordChanged  = "password_changed"
	ActionPasswordReset    = "password_reset"
	ActionUserRegistered   = "user_registered"
	ActionPermissionDenied = "permission_denied"
)

// AccessLog is an append-only record of an access attempt or permission
// decision. Entries are never mutated or deleted. UserID is nil for anonymous
// attempts (e.g. a failed login against an unknown email).
type AccessLog struct {
	ID           int64     `json:"id"`
	UserID       *string   `json:"user_id,omitempty"`
	Action       string    `json:"action"`
	Module       string    `json:"module,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
