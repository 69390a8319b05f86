// Package auth issues and verifies the server's signed tokens and hashes
// passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/staffhub/internal/common"
)

// Token types carried in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the payload of both token types. Refresh tokens carry no role.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens with one shared secret. The zero
// value is unusable: every call fails with common.ErrMissingSecret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer returns an Issuer, or common.ErrMissingSecret if secret is empty.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, common.ErrMissingSecret
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccessToken mints a short-lived token bound to userID and role.
func (i *Issuer) IssueAccessToken(userID, role string) (string, error) {
	return i.sign(Claims{UserID: userID, Role: role, Type: TypeAccess}, i.accessTTL)
}

// IssueRefreshToken mints a long-lived token bound to userID only.
func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	return i.sign(Claims{UserID: userID, Type: TypeRefresh}, i.refreshTTL)
}

func (i *Issuer) sign(claims Claims, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", common.ErrMissingSecret
	}

	now := i.clock()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks signature and expiry and returns the claims. Failures are
// common.ErrTokenMalformed for input that is not a token,
// common.ErrTokenExpired for a genuine but expired token and
// common.ErrInvalidToken for everything else. No claims are returned on
// failure.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, common.ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock),
	)

	switch {
	case err == nil && token.Valid && claims.UserID != "":
		return claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, common.ErrTokenExpired
	default:
		return nil, common.ErrInvalidToken
	}
}

// VerifyRefresh is Verify restricted to refresh tokens.
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	claims, err := i.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) clock() time.Time {
	if i.now == nil {
		return time.Now()
	}
	return i.now()
}
