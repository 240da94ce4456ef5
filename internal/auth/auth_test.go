package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/ratelimit"
	"github.com/aryanbrs/packklite-sub001/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testParams = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type memoryStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]dbgen.Customer
	admins    map[uuid.UUID]dbgen.Admin
}

func newMemoryStore() *memoryStore {
	return &memoryStore{customers: map[uuid.UUID]dbgen.Customer{}, admins: map[uuid.UUID]dbgen.Admin{}}
}

func uniqueErr(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (m *memoryStore) CreateCustomer(_ context.Context, arg dbgen.CreateCustomerParams) (dbgen.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Email == arg.Email {
			return dbgen.Customer{}, uniqueErr("customers_email_key")
		}
	}
	row := dbgen.Customer{ID: uuid.New(), Email: arg.Email, Name: arg.Name, Phone: arg.Phone, Company: arg.Company,
		PasswordHash: arg.PasswordHash, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.customers[row.ID] = row
	return row, nil
}

func (m *memoryStore) GetCustomerByEmail(_ context.Context, email string) (dbgen.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return dbgen.Customer{}, pgx.ErrNoRows
}

func (m *memoryStore) GetCustomerByID(_ context.Context, id uuid.UUID) (dbgen.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return dbgen.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *memoryStore) CountAdmins(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.admins)), nil
}

func (m *memoryStore) CreateAdmin(_ context.Context, arg dbgen.CreateAdminParams) (dbgen.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == arg.Email {
			return dbgen.Admin{}, uniqueErr("admins_email_key")
		}
	}
	row := dbgen.Admin{ID: uuid.New(), Email: arg.Email, Name: arg.Name, PasswordHash: arg.PasswordHash,
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.admins[row.ID] = row
	return row, nil
}

func (m *memoryStore) DeleteAdmin(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[id]; !ok {
		return 0, nil
	}
	delete(m.admins, id)
	return 1, nil
}

func (m *memoryStore) GetAdminByEmail(_ context.Context, email string) (dbgen.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return dbgen.Admin{}, pgx.ErrNoRows
}

func (m *memoryStore) GetAdminByID(_ context.Context, id uuid.UUID) (dbgen.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return dbgen.Admin{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *memoryStore) ListAdmins(context.Context) ([]dbgen.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dbgen.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryStore) UpdateAdminPassword(_ context.Context, arg dbgen.UpdateAdminPasswordParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[arg.ID]
	if !ok {
		return 0, nil
	}
	a.PasswordHash = arg.PasswordHash
	m.admins[arg.ID] = a
	return 1, nil
}

type fixture struct {
	store    *memoryStore
	sessions *Sessions
	service  *Service
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T, maxAttempts int) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sessions, err := NewSessions(SessionConfig{Secret: testSecret, TTL: time.Hour, Redis: rdb})
	require.NoError(t, err)
	store := newMemoryStore()
	guard := &ratelimit.LoginGuard{Window: ratelimit.Window{Client: rdb, Prefix: "login", Max: maxAttempts, Period: time.Minute}}
	svc := NewService(ServiceConfig{Store: store, Sessions: sessions, Guard: guard, Params: testParams, Logger: zerolog.Nop()})
	return &fixture{store: store, sessions: sessions, service: svc, redis: mr}
}

func (f *fixture) seedAdmin(t *testing.T, email, password string) Admin {
	t.Helper()
	a, err := f.service.CreateAdmin(context.Background(), CreateAdminInput{Name: "Ops", Email: email, Password: password})
	require.NoError(t, err)
	return a
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}

func TestNewSessionsRejectsShortSecret(t *testing.T) {
	_, err := NewSessions(SessionConfig{Secret: "short"})
	require.Error(t, err)
}

func TestSessionRealmsAreDisjoint(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	tok, err := f.sessions.Issue(CustomerRealm, "c-1", "buyer@example.com")
	require.NoError(t, err)

	p, exp, err := f.sessions.Parse(ctx, CustomerRealm, tok.Value)
	require.NoError(t, err)
	require.Equal(t, "c-1", p.ID)
	require.Equal(t, common.PrincipalCustomer, p.Kind)
	require.Equal(t, "buyer@example.com", p.Email)
	require.Equal(t, tok.ID, p.TokenID)
	require.WithinDuration(t, tok.ExpiresAt, exp, time.Second)

	_, _, err = f.sessions.Parse(ctx, AdminRealm, tok.Value)
	requireAppError(t, err, "UNAUTHORIZED")
}

func TestSessionRejectsTamperedAndForeignTokens(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	tok, err := f.sessions.Issue(AdminRealm, "a-1", "ops@example.com")
	require.NoError(t, err)
	parts := strings.Split(tok.Value, ".")
	require.Len(t, parts, 3)

	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, _, err = f.sessions.Parse(ctx, AdminRealm, tampered)
	require.Error(t, err)

	other, err := NewSessions(SessionConfig{Secret: strings.Repeat("z", 32)})
	require.NoError(t, err)
	foreign, err := other.Issue(AdminRealm, "a-1", "ops@example.com")
	require.NoError(t, err)
	_, _, err = f.sessions.Parse(ctx, AdminRealm, foreign.Value)
	require.Error(t, err)

	_, _, err = f.sessions.Parse(ctx, AdminRealm, "not-a-token")
	require.Error(t, err)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()
	s, err := NewSessions(SessionConfig{Secret: testSecret, TTL: time.Minute, Now: func() time.Time { return now }})
	require.NoError(t, err)
	tok, err := s.Issue(CustomerRealm, "c-1", "")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, _, err = s.Parse(context.Background(), CustomerRealm, tok.Value)
	require.Error(t, err)
}

func TestRevokeDenylistsUntilExpiry(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	tok, err := f.sessions.Issue(CustomerRealm, "c-1", "")
	require.NoError(t, err)
	require.NoError(t, f.sessions.Revoke(ctx, tok.ID, tok.ExpiresAt))

	_, _, err = f.sessions.Parse(ctx, CustomerRealm, tok.Value)
	requireAppError(t, err, "UNAUTHORIZED")

	ttl := f.redis.TTL(revokedPrefix + tok.ID)
	require.Greater(t, ttl, 59*time.Minute)
	require.LessOrEqual(t, ttl, time.Hour+time.Minute)
}

func TestRegisterAndLoginCustomer(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	c, tok, err := f.service.Register(ctx, RegisterInput{Name: " Buyer ", Email: "Buyer@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", c.Email)
	require.Equal(t, "Buyer", c.Name)
	require.NotEmpty(t, tok.Value)

	_, _, err = f.service.Register(ctx, RegisterInput{Name: "Again", Email: "buyer@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrEmailTaken)

	got, _, err := f.service.LoginCustomer(ctx, LoginInput{Email: "BUYER@example.com", Password: "correct horse"}, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	_, _, err = f.service.LoginCustomer(ctx, LoginInput{Email: "buyer@example.com", Password: "wrong"}, "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.service.LoginCustomer(ctx, LoginInput{Email: "nobody@example.com", Password: "wrong"}, "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginThrottled(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.seedAdmin(t, "ops@example.com", "a long admin password")

	for range 2 {
		_, _, err := f.service.LoginAdmin(ctx, LoginInput{Email: "ops@example.com", Password: "nope"}, "10.0.0.9")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, _, err := f.service.LoginAdmin(ctx, LoginInput{Email: "ops@example.com", Password: "a long admin password"}, "10.0.0.9")
	requireAppError(t, err, "TOO_MANY_ATTEMPTS")

	// Another address is counted separately.
	_, _, err = f.service.LoginAdmin(ctx, LoginInput{Email: "ops@example.com", Password: "a long admin password"}, "10.0.0.10")
	require.NoError(t, err)
}

func TestDeleteAdminGuards(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	first := f.seedAdmin(t, "first@example.com", "a long admin password")
	firstID := uuid.MustParse(first.ID)

	err := f.service.DeleteAdmin(ctx, firstID, firstID)
	require.ErrorIs(t, err, ErrDeleteSelf)

	err = f.service.DeleteAdmin(ctx, uuid.New(), firstID)
	require.ErrorIs(t, err, ErrLastAdmin)

	second := f.seedAdmin(t, "second@example.com", "another admin password")
	require.NoError(t, f.service.DeleteAdmin(ctx, uuid.MustParse(second.ID), firstID))

	admins, err := f.service.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.Equal(t, second.ID, admins[0].ID)

	err = f.service.DeleteAdmin(ctx, uuid.MustParse(second.ID), uuid.New())
	requireAppError(t, err, "NOT_FOUND")
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	a := f.seedAdmin(t, "ops@example.com", "a long admin password")
	id := uuid.MustParse(a.ID)

	err := f.service.ChangePassword(ctx, id, ChangePasswordInput{CurrentPassword: "wrong password", NewPassword: "a brand new password"})
	requireAppError(t, err, "VALIDATION_ERROR")

	require.NoError(t, f.service.ChangePassword(ctx, id, ChangePasswordInput{CurrentPassword: "a long admin password", NewPassword: "a brand new password"}))
	_, _, err = f.service.LoginAdmin(ctx, LoginInput{Email: "ops@example.com", Password: "a brand new password"}, "10.0.0.1")
	require.NoError(t, err)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCustomerSessionFlow(t *testing.T) {
	f := newFixture(t, 5)
	h := &Handler{Service: f.service}
	mw := Middleware{Sessions: f.sessions, Realm: CustomerRealm}
	me := mw.Require(http.HandlerFunc(h.Me))

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"name":"Buyer","email":"buyer@example.com","password":"correct horse"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	session := cookieNamed(rec, CustomerRealm.Cookie)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	csrf := cookieNamed(rec, security.CSRFCookie)
	require.NotNil(t, csrf)
	assert.False(t, csrf.HttpOnly)
	assert.NotEmpty(t, csrf.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	me.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"email":"buyer@example.com"`)

	// A customer cookie presented under the admin cookie name is still refused.
	adminMe := Middleware{Sessions: f.sessions, Realm: AdminRealm}.Require(http.HandlerFunc(h.AdminMe))
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: AdminRealm.Cookie, Value: session.Value})
	rec = httptest.NewRecorder()
	adminMe.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := cookieNamed(rec, CustomerRealm.Cookie)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	me.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalMiddlewareIgnoresBadTokens(t *testing.T) {
	f := newFixture(t, 5)
	var seen bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, seen = common.CustomerID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware{Sessions: f.sessions, Realm: CustomerRealm}.Optional(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, seen)

	tok, err := f.sessions.Issue(CustomerRealm, uuid.NewString(), "")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.True(t, seen)
}

func TestAdminLoginHandlerThrottleStatus(t *testing.T) {
	f := newFixture(t, 1)
	f.seedAdmin(t, "ops@example.com", "a long admin password")
	h := &Handler{Service: f.service}

	body := `{"email":"ops@example.com","password":"wrong password"}`
	rec := httptest.NewRecorder()
	h.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/auth/login", strings.NewReader(body)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/auth/login", strings.NewReader(body)))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "TOO_MANY_ATTEMPTS")
}
