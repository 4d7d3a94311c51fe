// Package auth provides credential hashing, bearer-token issuance and the
// HTTP guard that turns a bearer token into an authenticated identity.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client POSTs /api/auth/register or /api/auth/login with email+password
// 2. Server verifies the password (bcrypt) and issues a signed JWT
// 3. Client sends "Authorization: Bearer <jwt>" on protected calls
// 4. RequireAuth verifies the JWT and stores the Identity in the request context
// 5. The realtime stream accepts the same token (header or ?token= query)
//
// WHY JWT?
// JWT (JSON Web Token) is stateless: the server doesn't need to store session
// data. Everything needed (userID, email, expiry) is inside the signed token.
// The signature ensures nobody can tamper with it without the secret key.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"userID","email":"a@b.c","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The server can verify the signature without any DB lookup, just the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = time.Hour

	issuer = "video-share"
)

// ErrTokenInvalid covers every reason a token is rejected: bad signature,
// expired, malformed, wrong issuer or missing claims. Callers never need to
// distinguish them because the client always sees the same 401.
var ErrTokenInvalid = errors.New("auth: invalid token")

// Claims is what a caller asks to be embedded in a new token.
type Claims struct {
	UserID string
	Email  string
}

// Identity is what a verified token proves about its bearer.
// It lives on the request context for the duration of one request.
type Identity struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations: keep it safe, rotate it
// periodically in production.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: DefaultTokenTTL, now: time.Now}, nil
}

// tokenClaims is the JWT payload. It embeds jwt.RegisteredClaims which
// includes standard fields like Issuer, Subject, ExpiresAt, IssuedAt.
//
// "sub" and "userId" both carry the internal user ID; "email" is a private
// claim so the realtime stream can label listeners without a DB round-trip.
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a token for the given claims with the default lifetime (1h).
//
// Signing algorithm: HS256 (HMAC-SHA256)
// - Symmetric: same key for signing and verifying
// - Fast and simple, good for single-server deployments
func (s *TokenService) Issue(c Claims) (string, error) {
	return s.IssueWithTTL(c, s.ttl)
}

// IssueWithTTL signs a token with a custom lifetime.
// Used in tests (negative TTL → already expired) and by operators who want
// shorter sessions.
func (s *TokenService) IssueWithTTL(c Claims, ttl time.Duration) (string, error) {
	if c.UserID == "" || c.Email == "" {
		return "", fmt.Errorf("auth: cannot issue token without user id and email")
	}

	now := s.now()
	tc := tokenClaims{
		UserID: c.UserID,
		Email:  c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a JWT string and returns the Identity it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "video-share" (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// ALGORITHM CONFUSION ATTACK:
// Without checking the algorithm, an attacker could send a token signed with
// "none" and the library might accept it. Passing jwt.WithValidMethods prevents this.
func (s *TokenService) Verify(tokenStr string) (*Identity, error) {
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if c.Subject == "" || c.UserID != c.Subject || c.Email == "" {
		return nil, fmt.Errorf("%w: incomplete claims", ErrTokenInvalid)
	}

	id := &Identity{UserID: c.UserID, Email: c.Email}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
