// Package session issues access and refresh tokens and tracks live refresh sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims are the JWT claims carried by both token types.
type Claims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned to clients after sign-in or refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds until the access token expires
}

// Manager signs tokens with an HMAC secret and records refresh sessions in a Store.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      Store
	now        func() time.Time
}

// NewManager creates a token manager.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, store Store) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

func (m *Manager) sign(userID, email, tokenType, jti string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Email: email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Issue creates a new access/refresh pair and stores the refresh session.
func (m *Manager) Issue(ctx context.Context, userID, email string) (*TokenPair, error) {
	access, err := m.sign(userID, email, TokenTypeAccess, uuid.NewString(), m.accessTTL)
	if err != nil {
		return nil, err
	}
	jti := uuid.NewString()
	refresh, err := m.sign(userID, email, TokenTypeRefresh, jti, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, jti, userID, m.refreshTTL); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL / time.Second),
	}, nil
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess validates an access token and returns its claims.
func (m *Manager) VerifyAccess(token string) (*Claims, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Rotate exchanges a live refresh token for a new pair. The presented
// session is revoked, so each refresh token works once.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (*TokenPair, string, error) {
	claims, err := m.parse(refreshToken)
	if err != nil {
		return nil, "", err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, "", ErrInvalidToken
	}
	userID, err := m.store.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, "", ErrInvalidToken
		}
		return nil, "", err
	}
	if userID != claims.Subject {
		return nil, "", ErrInvalidToken
	}
	if err := m.store.Revoke(ctx, userID, claims.ID); err != nil {
		return nil, "", err
	}
	pair, err := m.Issue(ctx, userID, claims.Email)
	if err != nil {
		return nil, "", err
	}
	return pair, userID, nil
}

// RevokeAll ends every refresh session of the user.
func (m *Manager) RevokeAll(ctx context.Context, userID string) error {
	return m.store.RevokeUser(ctx, userID)
}
