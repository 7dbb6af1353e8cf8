package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes the two token variants the service issues.
type Kind int

const (
	// KindAccess tokens are short-lived and authorize API calls.
	KindAccess Kind = iota
	// KindRefresh tokens are longer-lived and can only be exchanged
	// for new access tokens.
	KindRefresh
)

func (k Kind) String() string {
	if k == KindRefresh {
		return "refresh"
	}
	return "access"
}

// verification leeway for clock skew between issuer and verifier
const leeway = time.Second

// Codec errors. Verify failures map onto exactly one of these.
var (
	ErrEmptyClaims  = errors.New("tokens: subject claims cannot be empty")
	ErrExpired      = errors.New("tokens: token has expired")
	ErrBadSignature = errors.New("tokens: signature verification failed")
	ErrMalformed    = errors.New("tokens: token is malformed")
)

// UserClaims is the subject payload embedded in every token.
type UserClaims struct {
	UID   string `json:"user_uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Claims is the full signed payload. The jti (RegisteredClaims.ID) is the
// revocation key; Refresh marks the token kind on the wire.
type Claims struct {
	jwt.RegisteredClaims
	User    UserClaims `json:"user"`
	Refresh bool       `json:"refresh"`
}

// Kind derives the token kind from the wire-level refresh flag.
func (c *Claims) Kind() Kind {
	if c.Refresh {
		return KindRefresh
	}
	return KindAccess
}

// Codec creates and validates signed, time-bound session tokens.
// The signing key and access TTL are fixed at construction and read-only
// afterwards.
type Codec struct {
	secret    []byte
	accessTTL time.Duration
}

// NewCodec builds a codec signing with HS256. accessTTL is the default
// lifetime applied when Issue is called with ttl <= 0.
func NewCodec(secret string, accessTTL time.Duration) *Codec {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &Codec{secret: []byte(secret), accessTTL: accessTTL}
}

// Issue creates a signed token embedding the user claims, a fresh random
// token id, iat/exp timestamps and the refresh flag. A non-positive ttl
// falls back to the codec's default access-token lifetime; refresh tokens
// are expected to pass their (longer) ttl explicitly.
func (c *Codec) Issue(user UserClaims, kind Kind, ttl time.Duration) (string, error) {
	if user.UID == "" && user.Email == "" {
		return "", ErrEmptyClaims
	}
	if ttl <= 0 {
		ttl = c.accessTTL
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		User:    user,
		Refresh: kind == KindRefresh,
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jt.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("tokens: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. On success the decoded claims
// (including jti and refresh flag) are returned. Failures are classified:
// ErrExpired past exp (beyond leeway), ErrBadSignature on signature
// mismatch, ErrMalformed for anything structurally invalid.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(leeway))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return &claims, nil
}

// RemainingLifetime reports how long the claims stay valid from now on.
// Zero is returned for already-expired claims or claims without exp.
func (c *Claims) RemainingLifetime() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := time.Until(c.ExpiresAt.Time)
	if d < 0 {
		return 0
	}
	return d
}
