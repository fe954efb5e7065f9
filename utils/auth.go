package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims. Subject carries the user's public id.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
	Type  string   `json:"typ"`
	jwt.StandardClaims
}

// TokenPair is returned on every successful authentication.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// TokenIssuer signs and verifies access and refresh tokens with separate keys.
type TokenIssuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue generates a fresh access/refresh pair for a user.
func (ti *TokenIssuer) Issue(userID, email string, roles []string) (*TokenPair, error) {
	now := time.Now()
	access, accessExp, err := ti.sign(ti.accessKey, AccessTokenType, userID, email, roles, now, ti.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := ti.sign(ti.refreshKey, RefreshTokenType, userID, email, nil, now, ti.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

func (ti *TokenIssuer) sign(key []byte, typ, userID, email string, roles []string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expirationTime := now.Add(ttl)
	claims := &Claims{
		Email: email,
		Roles: roles,
		Type:  typ,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: expirationTime.Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}

func (ti *TokenIssuer) ParseAccess(tokenStr string) (*Claims, error) {
	return parse(tokenStr, ti.accessKey, AccessTokenType)
}

func (ti *TokenIssuer) ParseRefresh(tokenStr string) (*Claims, error) {
	return parse(tokenStr, ti.refreshKey, RefreshTokenType)
}

func parse(tokenStr string, key []byte, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashToken returns the hex SHA-256 of a token for storage at rest.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
