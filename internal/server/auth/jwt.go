// Package auth signs and verifies session tokens and hashes password
// verifiers. It has no storage of its own.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind tells access and refresh tokens apart inside the claims.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims are the registered claims plus the identity the token speaks for.
// Every token gets a fresh jti so two tokens never share a value.
type Claims struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Type   TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// Issuer mints and parses HS256 tokens. Access and refresh tokens use
// independent keys, so a token of one kind never verifies as the other.
type Issuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(accessKey, refreshKey string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess returns a signed access token for the user.
func (i *Issuer) IssueAccess(userID, email string) (string, error) {
	token, _, err := i.issue(KindAccess, userID, email, i.accessKey, i.accessTTL)
	return token, err
}

// IssueRefresh returns a signed refresh token and the moment it expires,
// which the caller persists alongside it.
func (i *Issuer) IssueRefresh(userID, email string) (string, time.Time, error) {
	return i.issue(KindRefresh, userID, email, i.refreshKey, i.refreshTTL)
}

// ParseAccess verifies an access token. Expiry yields common.ErrTokenExpired,
// anything else common.ErrInvalidToken.
func (i *Issuer) ParseAccess(token string) (*Claims, error) {
	return i.parse(token, KindAccess, i.accessKey)
}

// ParseRefresh verifies a refresh token's signature, expiry and kind.
func (i *Issuer) ParseRefresh(token string) (*Claims, error) {
	return i.parse(token, KindRefresh, i.refreshKey)
}

func (i *Issuer) issue(kind TokenKind, userID, email string, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

func (i *Issuer) parse(tokenString string, kind TokenKind, key []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Type != kind || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
