package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/harentsoaR/telecare-api/internal/models"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("JWT_SECRET is not configured")
)

type Claims struct {
	Role    models.Role `json:"role,omitempty"`
	Type    TokenKind   `json:"type"`
	Version int         `json:"ver"`
	jwt.RegisteredClaims
}

// AccountID returns the numeric subject.
func (c *Claims) AccountID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// AccountRole returns the role claim, defaulting to RoleUser for tokens
// minted before the role claim existed.
func (c *Claims) AccountRole() models.Role {
	if c.Role == "" {
		return models.RoleUser
	}
	return c.Role
}

// TokenCodec signs and verifies HS256 tokens with a process-wide secret.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &TokenCodec{secret: []byte(secret), now: time.Now}, nil
}

// Encode mints a token for the given account.
func (tc *TokenCodec) Encode(accountID int64, role models.Role, kind TokenKind, version int, ttl time.Duration) (string, error) {
	now := tc.now()
	claims := &Claims{
		Role:    role,
		Type:    kind,
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// TokenPair is the access+refresh pair handed out at login and signup.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (tc *TokenCodec) EncodePair(acc models.Account) (TokenPair, error) {
	access, err := tc.Encode(acc.AccountID(), acc.AccountRole(), TokenAccess, acc.AccountTokenVersion(), AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := tc.Encode(acc.AccountID(), acc.AccountRole(), TokenRefresh, acc.AccountTokenVersion(), RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Decode verifies the signature and expiry. An expired token yields
// ErrExpiredToken whether or not its signature is valid; every other
// failure is ErrInvalidToken wrapping the parser error.
func (tc *TokenCodec) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) && tc.expiredUnverified(tokenStr) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

// expiredUnverified reports whether the token's exp has passed without
// checking its signature. Expiry wins over a bad signature.
func (tc *TokenCodec) expiredUnverified(tokenStr string) bool {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !tc.now().Before(claims.ExpiresAt.Time)
}
