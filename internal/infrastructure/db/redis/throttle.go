package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultWindow      = 15 * time.Minute
	defaultMaxFailures = 5
)

// LoginThrottle counts failed logins per (email, client IP) in a fixed
// window backed by Redis. Key format: login_fail:<email>:<ip>.
//
// The throttle is advisory and fails open: if Redis is unreachable the
// check reports no limit and the failure is logged, since the credential
// verification against the datastore remains the authority.
type LoginThrottle struct {
	client      *redis.Client
	window      time.Duration
	maxFailures int
	log         zerolog.Logger
}

func NewLoginThrottle(client *redis.Client, log zerolog.Logger) *LoginThrottle {
	return &LoginThrottle{
		client:      client,
		window:      defaultWindow,
		maxFailures: defaultMaxFailures,
		log:         log,
	}
}

func (t *LoginThrottle) TooManyFailures(ctx context.Context, email, ip string) bool {
	n, err := t.client.Get(ctx, t.key(email, ip)).Int()
	if err != nil {
		if err != redis.Nil {
			t.log.Warn().Err(err).Msg("login throttle read failed, failing open")
		}
		return false
	}
	return n >= t.maxFailures
}

func (t *LoginThrottle) RecordFailure(ctx context.Context, email, ip string) {
	key := t.key(email, ip)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		t.log.Warn().Err(err).Msg("login throttle increment failed")
	}
}

func (t *LoginThrottle) Reset(ctx context.Context, email, ip string) {
	if err := t.client.Del(ctx, t.key(email, ip)).Err(); err != nil {
		t.log.Warn().Err(err).Msg("login throttle reset failed")
	}
}

func (t *LoginThrottle) key(email, ip string) string {
	return fmt.Sprintf("login_fail:%s:%s", strings.ToLower(email), ip)
}
