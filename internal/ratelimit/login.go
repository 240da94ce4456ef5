package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// ErrTooManyAttempts is returned once a login key exhausts its window.
var ErrTooManyAttempts = common.NewAppError("TOO_MANY_ATTEMPTS", "too many login attempts, try again later", http.StatusTooManyRequests, nil)

// LoginGuard throttles credential checks per realm, email and client IP.
type LoginGuard struct {
	Window Window
}

func loginKey(realm, email, ip string) string {
	return realm + ":" + strings.ToLower(strings.TrimSpace(email)) + ":" + ip
}

// Check counts one attempt. Redis failures fail open so an outage does not
// lock everyone out.
func (g LoginGuard) Check(ctx context.Context, realm, email, ip string) (time.Time, error) {
	d, err := g.Window.Allow(ctx, loginKey(realm, email, ip))
	if err != nil {
		return time.Time{}, nil
	}
	if !d.Allowed {
		return d.ResetAt, ErrTooManyAttempts
	}
	return d.ResetAt, nil
}

// Succeeded clears the attempt history after a valid login.
func (g LoginGuard) Succeeded(ctx context.Context, realm, email, ip string) {
	_ = g.Window.Reset(ctx, loginKey(realm, email, ip))
}
