package common

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const idemPending = "pending"

// Idem provides an Idempotency-Key middleware backed by Redis. The first request
// with a key runs the handler and stores a successful response; replays within
// TTL with the same body get it back, replays with another body get 422, and
// replays while the first is still running get 409. Keys are scoped to the
// caller: the session principal, else the ScopeCookie value, else the client IP.
type Idem struct {
	R           redis.UniversalClient
	TTL         time.Duration
	ScopeCookie string
}

type storedResponse struct {
	Status   int             `json:"status"`
	BodyHash string          `json:"body_hash"`
	Body     json.RawMessage `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

func (i Idem) scope(r *http.Request) string {
	if p, ok := PrincipalFrom(r.Context()); ok {
		return string(p.Kind) + ":" + p.ID
	}
	if i.ScopeCookie != "" {
		if c, err := r.Cookie(i.ScopeCookie); err == nil && c.Value != "" {
			return "cookie:" + c.Value
		}
	}
	return "ip:" + ClientIP(r)
}

// idemKey scopes a client key to the caller and route so one key cannot
// replay another caller's or another endpoint's response.
func (i Idem) idemKey(r *http.Request, header string) string {
	sum := sha256.Sum256([]byte(i.scope(r) + " " + r.Method + " " + r.URL.Path + " " + header))
	return "idem:" + hex.EncodeToString(sum[:])
}

// readBody buffers the request body and returns its SHA-256, leaving the
// body readable for the handler.
func readBody(r *http.Request) (string, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		_ = r.Body.Close()
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		bodyHash, err := readBody(r)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", nil)
				return
			}
			JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unreadable request body", nil)
			return
		}
		ctx := r.Context()
		key := i.idemKey(r, header)
		ok, err := i.R.SetNX(ctx, key, idemPending, i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", nil)
			return
		}
		if !ok {
			i.replay(ctx, w, key, bodyHash)
			return
		}

		cw := &captureWriter{ResponseWriter: w}
		completed := false
		defer func() {
			if !completed {
				// let the client retry after a panic
				_ = i.R.Del(context.Background(), key).Err()
			}
		}()
		next.ServeHTTP(cw, r)
		completed = true

		if cw.status == 0 {
			cw.status = http.StatusOK
		}
		// failed requests leave no side effects, so the client may correct and retry
		body := bytes.TrimSpace(cw.buf.Bytes())
		if cw.status >= 400 || !json.Valid(body) {
			_ = i.R.Del(context.Background(), key).Err()
			return
		}
		payload, err := json.Marshal(storedResponse{Status: cw.status, BodyHash: bodyHash, Body: json.RawMessage(body)})
		if err != nil {
			_ = i.R.Del(context.Background(), key).Err()
			return
		}
		_ = i.R.Set(context.Background(), key, payload, i.TTL).Err()
	})
}

func (i Idem) replay(ctx context.Context, w http.ResponseWriter, key, bodyHash string) {
	raw, err := i.R.Get(ctx, key).Bytes()
	if err != nil || string(raw) == idemPending {
		JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "request with this idempotency key is in progress", nil)
		return
	}
	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
		return
	}
	if stored.BodyHash != bodyHash {
		JSONError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "idempotency key was used with a different request body", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replay", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
