// Package auth validates bearer tokens and decides whether an identity may
// perform an operation.
package auth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is a coarse permission label carried in the token's roles claim
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

var (
	ErrMissingToken      = errors.New("missing authorization token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrInsufficientRole  = errors.New("insufficient permissions")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrMissingSigningKey = errors.New("jwt secret is not configured")
)

// Config carries the signing secret and lifetime of issued tokens
type Config struct {
	Secret string
	Expiry time.Duration
}

// Identity is the authenticated caller extracted from a validated token
type Identity struct {
	UserID   string
	Username string
	Roles    []Role
}

// HasAnyRole reports whether the identity carries at least one of roles
func (i *Identity) HasAnyRole(roles ...Role) bool {
	for _, held := range i.Roles {
		for _, want := range roles {
			if held == want {
				return true
			}
		}
	}
	return false
}

// Authenticator verifies and issues HMAC-signed access tokens
type Authenticator struct {
	secret []byte
	expiry time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator bound to cfg
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSigningKey
	}

	return &Authenticator{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{
				jwt.SigningMethodHS256.Alg(),
				jwt.SigningMethodHS384.Alg(),
				jwt.SigningMethodHS512.Alg(),
			}),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

// Authenticate verifies the raw token and validates the shape of its claims.
// Every failure is an authentication failure, including a validly signed
// token that carries no roles.
func (a *Authenticator) Authenticate(raw string) (*Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	token, err := a.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	sub, ok := subject(claims["sub"])
	if !ok {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}

	username, _ := claims["username"].(string)
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: missing username", ErrInvalidClaims)
	}

	roles, ok := extractRoles(claims["roles"])
	if !ok || len(roles) == 0 {
		return nil, fmt.Errorf("%w: missing roles", ErrInvalidClaims)
	}

	return &Identity{UserID: sub, Username: username, Roles: roles}, nil
}

// subject accepts string subjects and integral numeric ones
func subject(value interface{}) (string, bool) {
	switch typed := value.(type) {
	case string:
		if strings.TrimSpace(typed) == "" {
			return "", false
		}
		return typed, true
	case float64:
		// integral and representable as int64
		if typed != math.Trunc(typed) || math.Abs(typed) >= 1<<63 {
			return "", false
		}
		return strconv.FormatInt(int64(typed), 10), true
	default:
		return "", false
	}
}

func extractRoles(value interface{}) ([]Role, bool) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, false
	}

	roles := make([]Role, 0, len(items))
	for _, item := range items {
		text, ok := item.(string)
		if !ok {
			return nil, false
		}
		roles = append(roles, Role(text))
	}
	return roles, true
}

// Authorize applies a route's role policy. No required roles admits any
// authenticated identity; otherwise the role sets must intersect.
func Authorize(identity *Identity, required []Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if len(required) == 0 {
		return nil
	}
	if identity.HasAnyRole(required...) {
		return nil
	}
	return ErrInsufficientRole
}

// Issue signs an access token for the given subject
func (a *Authenticator) Issue(sub, username string, roles []Role) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.expiry)

	roleClaims := make([]string, len(roles))
	for i, role := range roles {
		roleClaims[i] = string(role)
	}

	claims := jwt.MapClaims{
		"sub":      sub,
		"username": username,
		"roles":    roleClaims,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
		"jti":      uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseBearer extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func ParseBearer(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return raw, true
}
