package common

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdemReplaysStoredResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls int32
	h := Idem{R: client, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"call": n}})
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		req.Header.Set("Idempotency-Key", "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code)
	second := send()
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestIdemReleasesKeyOnServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fail := true
	h := Idem{R: client, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "boom", nil)
			return
		}
		JSON(w, http.StatusOK, map[string]any{"data": "ok"})
	}))

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Idempotency-Key", "k")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	fail = false
	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Idempotency-Key", "k")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIdemPassThroughWithoutHeader(t *testing.T) {
	var calls int
	h := Idem{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	require.Equal(t, 2, calls)
}

func newIdemClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// echoEmail answers with the email from the request body, like an order
// response carrying the caller's contact details.
func echoEmail(calls *int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var in struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
			JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email is required", nil)
			return
		}
		Data(w, http.StatusCreated, map[string]string{"email": in.Email})
	})
}

func idemRequest(key, body string, mutate func(*http.Request) *http.Request) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", key)
	if mutate != nil {
		req = mutate(req)
	}
	return req
}

func asCustomer(id string) func(*http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		return r.WithContext(WithPrincipal(r.Context(), Principal{ID: id, Kind: PrincipalCustomer}))
	}
}

func TestIdemKeysAreScopedToTheCaller(t *testing.T) {
	var calls int32
	h := Idem{R: newIdemClient(t), TTL: time.Minute, ScopeCookie: "cart_id"}.Middleware(echoEmail(&calls))

	alice := httptest.NewRecorder()
	h.ServeHTTP(alice, idemRequest("1", `{"email":"alice@example.com"}`, asCustomer("alice")))
	require.Equal(t, http.StatusCreated, alice.Code)

	bob := httptest.NewRecorder()
	h.ServeHTTP(bob, idemRequest("1", `{"email":"bob@example.com"}`, asCustomer("bob")))
	require.Equal(t, http.StatusCreated, bob.Code)
	require.Contains(t, bob.Body.String(), "bob@example.com")
	require.NotContains(t, bob.Body.String(), "alice@example.com")

	guest := httptest.NewRecorder()
	h.ServeHTTP(guest, idemRequest("1", `{"email":"carol@example.com"}`, func(r *http.Request) *http.Request {
		r.AddCookie(&http.Cookie{Name: "cart_id", Value: "cart-carol"})
		return r
	}))
	require.Equal(t, http.StatusCreated, guest.Code)
	require.Contains(t, guest.Body.String(), "carol@example.com")
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestIdemRejectsKeyReuseWithDifferentBody(t *testing.T) {
	var calls int32
	h := Idem{R: newIdemClient(t), TTL: time.Minute}.Middleware(echoEmail(&calls))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idemRequest("k", `{"email":"alice@example.com"}`, asCustomer("alice")))
	require.Equal(t, http.StatusCreated, first.Code)

	reused := httptest.NewRecorder()
	h.ServeHTTP(reused, idemRequest("k", `{"email":"other@example.com"}`, asCustomer("alice")))
	require.Equal(t, http.StatusUnprocessableEntity, reused.Code)
	require.Contains(t, reused.Body.String(), "IDEMPOTENCY_KEY_REUSED")

	same := httptest.NewRecorder()
	h.ServeHTTP(same, idemRequest("k", `{"email":"alice@example.com"}`, asCustomer("alice")))
	require.Equal(t, http.StatusCreated, same.Code)
	require.Equal(t, "true", same.Header().Get("Idempotent-Replay"))
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestIdemReleasesKeyOnClientError(t *testing.T) {
	var calls int32
	h := Idem{R: newIdemClient(t), TTL: time.Minute}.Middleware(echoEmail(&calls))

	rejected := httptest.NewRecorder()
	h.ServeHTTP(rejected, idemRequest("k", `{}`, nil))
	require.Equal(t, http.StatusUnprocessableEntity, rejected.Code)

	fixed := httptest.NewRecorder()
	h.ServeHTTP(fixed, idemRequest("k", `{"email":"alice@example.com"}`, nil))
	require.Equal(t, http.StatusCreated, fixed.Code)
	require.Empty(t, fixed.Header().Get("Idempotent-Replay"))
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestIdemReleasesKeyOnNonJSONResponse(t *testing.T) {
	var calls int32
	h := Idem{R: newIdemClient(t), TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, "plain text")
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, idemRequest("k", "", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "plain text", rec.Body.String())
	}
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}
