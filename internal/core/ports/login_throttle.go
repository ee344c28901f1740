package ports

import "context"

// LoginThrottle limits repeated failed logins per (email, client IP) window.
// The throttle is advisory: implementations fail open when their backing
// store is unavailable, since the credential check itself remains the
// authority.
type LoginThrottle interface {
	TooManyFailures(ctx context.Context, email, ip string) bool
	RecordFailure(ctx context.Context, email, ip string)
	Reset(ctx context.Context, email, ip string)
}
