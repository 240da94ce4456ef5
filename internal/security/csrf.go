package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

const (
	CSRFCookie = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRF protects cookie-authenticated mutations using the double-submit
// technique. Requests carrying none of the SessionCookies pass through, since
// without ambient credentials there is nothing to forge.
type CSRF struct {
	SessionCookies []string
}

// NewCSRFToken returns a random token suitable for the csrf cookie.
func NewCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Middleware enforces that unsafe requests echo the csrf cookie in the header.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}
		if !c.hasSession(r) {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(CSRFHeader))
		cookie, err := r.Cookie(CSRFCookie)
		if token == "" || err != nil || cookie.Value == "" {
			common.JSONError(w, http.StatusForbidden, "CSRF_INVALID", "missing csrf token", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) != 1 {
			common.JSONError(w, http.StatusForbidden, "CSRF_INVALID", "invalid csrf token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c CSRF) hasSession(r *http.Request) bool {
	for _, name := range c.SessionCookies {
		if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
			return true
		}
	}
	return false
}
