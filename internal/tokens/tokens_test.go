package tokens

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-32-bytes-should-be-long-enough"

func testCodec() *Codec {
	return NewCodec(testSecret, time.Hour)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := testCodec()
	user := UserClaims{UID: "user-123", Email: "test@example.com", Role: "user"}

	raw, err := c.Issue(user, KindAccess, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := c.Verify(raw)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.User != user {
		t.Fatalf("unexpected user claims: got=%+v want=%+v", claims.User, user)
	}
	if claims.Refresh {
		t.Fatalf("access token must not carry the refresh flag")
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti to be set")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatalf("expected iat and exp to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("default access ttl = %v, want 1h", got)
	}
}

func TestIssue_RefreshKind(t *testing.T) {
	c := testCodec()
	raw, err := c.Issue(UserClaims{UID: "u1", Email: "a@x.com"}, KindRefresh, 48*time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	claims, err := c.Verify(raw)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !claims.Refresh || claims.Kind() != KindRefresh {
		t.Fatalf("expected refresh token, got kind=%v", claims.Kind())
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 48*time.Hour {
		t.Fatalf("refresh ttl = %v, want 48h", got)
	}
}

func TestIssue_EmptyClaims(t *testing.T) {
	c := testCodec()
	if _, err := c.Issue(UserClaims{}, KindAccess, 0); !errors.Is(err, ErrEmptyClaims) {
		t.Fatalf("expected ErrEmptyClaims, got %v", err)
	}
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	c := testCodec()
	user := UserClaims{UID: "u1", Email: "a@x.com"}
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		raw, err := c.Issue(user, KindAccess, 0)
		if err != nil {
			t.Fatalf("Issue error: %v", err)
		}
		claims, err := c.Verify(raw)
		if err != nil {
			t.Fatalf("Verify error: %v", err)
		}
		if seen[claims.ID] {
			t.Fatalf("duplicate jti: %s", claims.ID)
		}
		seen[claims.ID] = true
	}
}

func TestVerify_Expired(t *testing.T) {
	// craft a token whose exp is past even after the 1s leeway
	now := time.Now().UTC().Add(-time.Minute)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Second)),
			ID:        "expired-jti",
		},
		User: UserClaims{UID: "u1", Email: "a@x.com"},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	_, err = testCodec().Verify(raw)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerify_WithinLeeway(t *testing.T) {
	// expired a few hundred ms ago: still inside the 1s leeway window
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-300 * time.Millisecond)),
			ID:        "leeway-jti",
		},
		User: UserClaims{UID: "u1", Email: "a@x.com"},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := testCodec().Verify(raw); err != nil {
		t.Fatalf("expected token inside leeway to verify, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := testCodec().Issue(UserClaims{UID: "u3", Email: "bob@example.com"}, KindAccess, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	other := NewCodec("different-secret-xxxxxxxxxxxxxxxx", time.Hour)
	if _, err := other.Verify(raw); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	c := testCodec()
	for _, raw := range []string{"", "not.a.jwt", "garbage"} {
		if _, err := c.Verify(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q): expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestVerify_AlgNoneRejected(t *testing.T) {
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"user":{"user_uid":"u-none"},"exp":9999999999}`))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := testCodec().Verify(tok); err == nil {
		t.Fatalf("expected Verify to reject alg=none token")
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	c := testCodec()
	raw, err := c.Issue(UserClaims{UID: "user-t", Email: "t@example.com"}, KindAccess, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	payloadStr := strings.Replace(string(payloadBytes), "user-t", "attacker", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(payloadStr))
	if _, err := c.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature for tampered token, got %v", err)
	}
}

func TestRemainingLifetime(t *testing.T) {
	c := testCodec()
	raw, err := c.Issue(UserClaims{UID: "u1", Email: "a@x.com"}, KindAccess, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	claims, err := c.Verify(raw)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	left := claims.RemainingLifetime()
	if left <= 59*time.Minute || left > time.Hour {
		t.Fatalf("remaining lifetime = %v, want just under 1h", left)
	}

	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	if got := past.RemainingLifetime(); got != 0 {
		t.Fatalf("remaining lifetime of expired claims = %v, want 0", got)
	}
}
