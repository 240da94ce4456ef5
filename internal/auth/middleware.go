package auth

import (
	"net/http"
	"strings"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

// Middleware attaches the session principal of one realm to requests.
type Middleware struct {
	Sessions *Sessions
	Realm    Realm
}

// Optional attaches the principal when a valid session is present and
// otherwise lets the request through anonymously.
func (m Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := m.token(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		p, _, err := m.Sessions.Parse(r.Context(), m.Realm, raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		obs.SetPrincipal(w, p)
		next.ServeHTTP(w, r.WithContext(common.WithPrincipal(r.Context(), p)))
	})
}

// Require rejects requests without a valid session for the realm.
func (m Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _, err := m.Sessions.Parse(r.Context(), m.Realm, m.token(r))
		if err != nil {
			common.WriteError(w, err)
			return
		}
		obs.SetPrincipal(w, p)
		next.ServeHTTP(w, r.WithContext(common.WithPrincipal(r.Context(), p)))
	})
}

func (m Middleware) token(r *http.Request) string {
	return extractToken(r, m.Realm)
}

// extractToken reads a bearer token or the realm's session cookie.
func extractToken(r *http.Request, realm Realm) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := r.Cookie(realm.Cookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
