package common

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ClientIP attempts to determine the real client IP address from the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); ip != "" {
		if first := strings.TrimSpace(strings.Split(ip, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// CookieOptions are the attributes shared by every cookie the API sets.
type CookieOptions struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// Set writes a cookie; a zero expiry makes it a session cookie.
func (o CookieOptions) Set(w http.ResponseWriter, name, value string, expires time.Time, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   o.Domain,
		Path:     "/",
		Expires:  expires,
		HttpOnly: httpOnly,
		Secure:   o.Secure,
		SameSite: o.sameSite(),
	})
}

// Clear expires a cookie immediately.
func (o CookieOptions) Clear(w http.ResponseWriter, name string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   o.Domain,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   o.Secure,
		SameSite: o.sameSite(),
	})
}

func (o CookieOptions) sameSite() http.SameSite {
	if o.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return o.SameSite
}

// PathUUID parses a UUID route parameter. Malformed ids are reported as a 404
// for resource and ok is false.
func PathUUID(w http.ResponseWriter, r *http.Request, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		WriteError(w, NotFound(resource))
		return uuid.Nil, false
	}
	return id, true
}
