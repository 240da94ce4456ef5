package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/db"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/ratelimit"
)

var (
	ErrInvalidCredentials = common.NewAppError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, nil)
	ErrEmailTaken         = common.NewAppError("EMAIL_TAKEN", "an account with this email already exists", http.StatusConflict, nil)
	ErrLastAdmin          = common.NewAppError("LAST_ADMIN", "the last admin account cannot be deleted", http.StatusConflict, nil)
	ErrDeleteSelf         = common.NewAppError("DELETE_SELF", "you cannot delete your own account", http.StatusConflict, nil)
)

// Store is the subset of queries the account service needs.
type Store interface {
	CreateCustomer(ctx context.Context, arg dbgen.CreateCustomerParams) (dbgen.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (dbgen.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (dbgen.Customer, error)
	CountAdmins(ctx context.Context) (int64, error)
	CreateAdmin(ctx context.Context, arg dbgen.CreateAdminParams) (dbgen.Admin, error)
	DeleteAdmin(ctx context.Context, id uuid.UUID) (int64, error)
	GetAdminByEmail(ctx context.Context, email string) (dbgen.Admin, error)
	GetAdminByID(ctx context.Context, id uuid.UUID) (dbgen.Admin, error)
	ListAdmins(ctx context.Context) ([]dbgen.Admin, error)
	UpdateAdminPassword(ctx context.Context, arg dbgen.UpdateAdminPasswordParams) (int64, error)
}

// Customer is the public view of a customer account.
type Customer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Admin is the public view of an admin account.
type Admin struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func customerFromRow(c dbgen.Customer) Customer {
	return Customer{ID: c.ID.String(), Email: c.Email, Name: c.Name, Phone: c.Phone, Company: c.Company, CreatedAt: c.CreatedAt}
}

func adminFromRow(a dbgen.Admin) Admin {
	return Admin{ID: a.ID.String(), Email: a.Email, Name: a.Name, CreatedAt: a.CreatedAt}
}

// RegisterInput is the customer sign-up payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Company  string `json:"company" validate:"omitempty,max=200"`
}

// LoginInput is shared by both realms.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// CreateAdminInput creates another back-office account.
type CreateAdminInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=12,max=128"`
}

// ChangePasswordInput updates the caller's own admin password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required,max=128"`
	NewPassword     string `json:"new_password" validate:"required,min=12,max=128,nefield=CurrentPassword"`
}

// ServiceConfig configures NewService.
type ServiceConfig struct {
	Store    Store
	Sessions *Sessions
	// Guard throttles logins. A nil guard disables throttling.
	Guard  *ratelimit.LoginGuard
	Params *argon2id.Params
	Logger zerolog.Logger
}

// Service implements registration, login and admin account management.
type Service struct {
	store    Store
	sessions *Sessions
	guard    *ratelimit.LoginGuard
	params   *argon2id.Params
	log      zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Params == nil {
		cfg.Params = argon2id.DefaultParams
	}
	return &Service{
		store:    cfg.Store,
		sessions: cfg.Sessions,
		guard:    cfg.Guard,
		params:   cfg.Params,
		log:      cfg.Logger,
	}
}

// Sessions exposes the token issuer used by the middleware.
func (s *Service) Sessions() *Sessions { return s.sessions }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Customer, Token, error) {
	hash, err := argon2id.CreateHash(in.Password, s.params)
	if err != nil {
		return Customer{}, Token{}, common.Internal(err)
	}
	row, err := s.store.CreateCustomer(ctx, dbgen.CreateCustomerParams{
		Email:        normalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Company:      strings.TrimSpace(in.Company),
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "customers_email_key") {
			return Customer{}, Token{}, ErrEmailTaken
		}
		return Customer{}, Token{}, common.Internal(err)
	}
	tok, err := s.sessions.Issue(CustomerRealm, row.ID.String(), row.Email)
	if err != nil {
		return Customer{}, Token{}, common.Internal(err)
	}
	s.log.Info().Str("customer_id", row.ID.String()).Msg("customer registered")
	return customerFromRow(row), tok, nil
}

// LoginCustomer verifies customer credentials and issues a session.
func (s *Service) LoginCustomer(ctx context.Context, in LoginInput, ip string) (Customer, Token, error) {
	email := normalizeEmail(in.Email)
	if err := s.checkGuard(ctx, CustomerRealm, email, ip); err != nil {
		return Customer{}, Token{}, err
	}
	row, err := s.store.GetCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, Token{}, ErrInvalidCredentials
		}
		return Customer{}, Token{}, common.Internal(err)
	}
	if err := s.verify(in.Password, row.PasswordHash); err != nil {
		return Customer{}, Token{}, err
	}
	s.loginSucceeded(ctx, CustomerRealm, email, ip)
	tok, err := s.sessions.Issue(CustomerRealm, row.ID.String(), row.Email)
	if err != nil {
		return Customer{}, Token{}, common.Internal(err)
	}
	return customerFromRow(row), tok, nil
}

// LoginAdmin verifies admin credentials and issues an admin session.
func (s *Service) LoginAdmin(ctx context.Context, in LoginInput, ip string) (Admin, Token, error) {
	email := normalizeEmail(in.Email)
	if err := s.checkGuard(ctx, AdminRealm, email, ip); err != nil {
		return Admin{}, Token{}, err
	}
	row, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, Token{}, ErrInvalidCredentials
		}
		return Admin{}, Token{}, common.Internal(err)
	}
	if err := s.verify(in.Password, row.PasswordHash); err != nil {
		s.log.Warn().Str("admin_email", email).Str("ip", ip).Msg("admin login failed")
		return Admin{}, Token{}, err
	}
	s.loginSucceeded(ctx, AdminRealm, email, ip)
	tok, err := s.sessions.Issue(AdminRealm, row.ID.String(), row.Email)
	if err != nil {
		return Admin{}, Token{}, common.Internal(err)
	}
	s.log.Info().Str("admin_id", row.ID.String()).Msg("admin signed in")
	return adminFromRow(row), tok, nil
}

// Logout revokes the session token if it is still valid for realm.
func (s *Service) Logout(ctx context.Context, realm Realm, raw string) error {
	p, exp, err := s.sessions.Parse(ctx, realm, raw)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, p.TokenID, exp); err != nil {
		return common.Internal(err)
	}
	return nil
}

// Customer returns the customer account for id.
func (s *Service) Customer(ctx context.Context, id uuid.UUID) (Customer, error) {
	row, err := s.store.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, common.ErrUnauthorized
		}
		return Customer{}, common.Internal(err)
	}
	return customerFromRow(row), nil
}

// Admin returns the admin account for id.
func (s *Service) Admin(ctx context.Context, id uuid.UUID) (Admin, error) {
	row, err := s.store.GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, common.ErrUnauthorized
		}
		return Admin{}, common.Internal(err)
	}
	return adminFromRow(row), nil
}

// ListAdmins returns every admin account.
func (s *Service) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, common.Internal(err)
	}
	out := make([]Admin, 0, len(rows))
	for _, row := range rows {
		out = append(out, adminFromRow(row))
	}
	return out, nil
}

// CreateAdmin adds an admin account.
func (s *Service) CreateAdmin(ctx context.Context, in CreateAdminInput) (Admin, error) {
	hash, err := argon2id.CreateHash(in.Password, s.params)
	if err != nil {
		return Admin{}, common.Internal(err)
	}
	row, err := s.store.CreateAdmin(ctx, dbgen.CreateAdminParams{
		Email:        normalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "admins_email_key") {
			return Admin{}, ErrEmailTaken
		}
		return Admin{}, common.Internal(err)
	}
	return adminFromRow(row), nil
}

// DeleteAdmin removes id on behalf of actor. An admin cannot delete itself
// and the last remaining admin is kept.
func (s *Service) DeleteAdmin(ctx context.Context, actor, id uuid.UUID) error {
	if actor == id {
		return ErrDeleteSelf
	}
	if _, err := s.store.GetAdminByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFound("admin")
		}
		return common.Internal(err)
	}
	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return common.Internal(err)
	}
	if count <= 1 {
		return ErrLastAdmin
	}
	n, err := s.store.DeleteAdmin(ctx, id)
	if err != nil {
		return common.Internal(err)
	}
	if n == 0 {
		return common.NotFound("admin")
	}
	s.log.Info().Str("admin_id", id.String()).Str("actor_id", actor.String()).Msg("admin deleted")
	return nil
}

// ChangePassword replaces the admin's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, in ChangePasswordInput) error {
	row, err := s.store.GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrUnauthorized
		}
		return common.Internal(err)
	}
	if err := s.verify(in.CurrentPassword, row.PasswordHash); err != nil {
		return common.InvalidField("current_password", "is incorrect")
	}
	hash, err := argon2id.CreateHash(in.NewPassword, s.params)
	if err != nil {
		return common.Internal(err)
	}
	if _, err := s.store.UpdateAdminPassword(ctx, dbgen.UpdateAdminPasswordParams{ID: id, PasswordHash: hash}); err != nil {
		return common.Internal(fmt.Errorf("update admin password: %w", err))
	}
	return nil
}

func (s *Service) verify(password, hash string) error {
	ok, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return common.Internal(err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Service) checkGuard(ctx context.Context, realm Realm, email, ip string) error {
	if s.guard == nil {
		return nil
	}
	resetAt, err := s.guard.Check(ctx, string(realm.Kind), email, ip)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return appErr.WithDetails(map[string]any{"retry_at": resetAt.UTC()})
		}
		return err
	}
	return nil
}

func (s *Service) loginSucceeded(ctx context.Context, realm Realm, email, ip string) {
	if s.guard != nil {
		s.guard.Succeeded(ctx, string(realm.Kind), email, ip)
	}
}
