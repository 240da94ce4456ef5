package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/redis/go-redis/v9"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

const (
	claimType  = "typ"
	claimEmail = "email"

	defaultIssuer = "packklite"
	revokedPrefix = "auth:revoked:"
)

// Realm binds a principal kind to its cookie and token audience.
type Realm struct {
	Kind     common.PrincipalKind
	Cookie   string
	Audience string
}

var (
	CustomerRealm = Realm{Kind: common.PrincipalCustomer, Cookie: "pk_session", Audience: "packklite-customer"}
	AdminRealm    = Realm{Kind: common.PrincipalAdmin, Cookie: "pk_admin_session", Audience: "packklite-admin"}
)

var errInvalidToken = common.NewAppError("UNAUTHORIZED", "missing or invalid session", http.StatusUnauthorized, nil)

// Token is a signed session token together with its identity and expiry.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// SessionConfig configures NewSessions.
type SessionConfig struct {
	Secret    string
	TTL       time.Duration
	Issuer    string
	ClockSkew time.Duration
	// Redis holds the revocation denylist. A nil client disables revocation checks.
	Redis redis.UniversalClient
	Now   func() time.Time
}

// Sessions issues and verifies HS256 session tokens for both realms.
type Sessions struct {
	secret    []byte
	ttl       time.Duration
	issuer    string
	clockSkew time.Duration
	signer    jwa.SignatureAlgorithm
	rdb       redis.UniversalClient
	now       func() time.Time
}

// NewSessions validates cfg and returns a Sessions.
func NewSessions(cfg SessionConfig) (*Sessions, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("auth: session secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Sessions{
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TTL,
		issuer:    cfg.Issuer,
		clockSkew: cfg.ClockSkew,
		signer:    jwa.HS256,
		rdb:       cfg.Redis,
		now:       cfg.Now,
	}, nil
}

func (s *Sessions) validator(realm Realm) TokenValidator {
	return TokenValidator{
		Issuer:    s.issuer,
		Audience:  realm.Audience,
		Type:      string(realm.Kind),
		ClockSkew: s.clockSkew,
		Algorithm: s.signer,
	}
}

// Issue signs a new session token for subject in realm.
func (s *Sessions) Issue(realm Realm, subject, email string) (Token, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	jti := uuid.NewString()
	tok, err := jwt.NewBuilder().
		Subject(subject).
		Issuer(s.issuer).
		Audience([]string{realm.Audience}).
		JwtID(jti).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim(claimType, string(realm.Kind)).
		Claim(claimEmail, email).
		Build()
	if err != nil {
		return Token{}, err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: string(signed), ID: jti, ExpiresAt: expiresAt}, nil
}

// Parse verifies raw against realm and the denylist, returning the principal
// and the token expiry.
func (s *Sessions) Parse(ctx context.Context, realm Realm, raw string) (common.Principal, time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return common.Principal{}, time.Time{}, errInvalidToken
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return common.Principal{}, time.Time{}, errInvalidToken
	}
	if algorithm != s.signer {
		return common.Principal{}, time.Time{}, errInvalidToken
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret), jwt.WithValidate(false))
	if err != nil {
		return common.Principal{}, time.Time{}, errInvalidToken
	}
	if err := s.validator(realm).Validate(parsed, algorithm, s.now()); err != nil {
		return common.Principal{}, time.Time{}, errInvalidToken
	}
	revoked, err := s.isRevoked(ctx, parsed.JwtID())
	if err != nil {
		return common.Principal{}, time.Time{}, common.Internal(err)
	}
	if revoked {
		return common.Principal{}, time.Time{}, errInvalidToken
	}
	var email string
	if v, ok := parsed.Get(claimEmail); ok {
		email, _ = v.(string)
	}
	return common.Principal{
		ID:      parsed.Subject(),
		Kind:    realm.Kind,
		Email:   email,
		TokenID: parsed.JwtID(),
	}, parsed.Expiration(), nil
}

// Revoke denylists jti until expiresAt.
func (s *Sessions) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now()) + s.clockSkew
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Sessions) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" || alg == jwa.NoSignature {
			return "", errors.New("auth: token has no usable algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
