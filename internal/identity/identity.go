// Package identity wraps Firebase Authentication: ID token verification,
// account management and password sign-in through the Identity Toolkit API.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidIDToken     = errors.New("invalid or expired ID token")
	ErrUserNotFound       = errors.New("identity user not found")
)

// Identity is the verified caller behind an ID token or password sign-in.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Provider    string // firebase sign_in_provider, e.g. "password", "google.com", "apple.com"
}

// Provider talks to Firebase Auth and the Identity Toolkit.
type Provider struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

// NewProvider creates a Provider. webAPIKey authorises the Identity Toolkit
// calls used for password sign-in.
func NewProvider(ctx context.Context, authClient *auth.Client, webAPIKey string) (*Provider, error) {
	if authClient == nil {
		return nil, errors.New("firebase auth client is not initialized")
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &Provider{auth: authClient, toolkit: toolkit}, nil
}

// CreateUser registers an email/password account and returns its UID.
func (p *Provider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(false)
	record, err := p.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("create identity user: %w", err)
	}
	return record.UID, nil
}

// SignInWithPassword checks an email/password pair and returns the account UID.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := p.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		if isCredentialError(err) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("verify password: %w", err)
	}
	return resp.LocalId, nil
}

func isCredentialError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusBadRequest {
		return false
	}
	for _, code := range []string{"INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED"} {
		if strings.Contains(apiErr.Message, code) {
			return true
		}
	}
	return false
}

// VerifyIDToken validates a Firebase ID token.
func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := p.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	return identityFromToken(token), nil
}

func identityFromToken(token *auth.Token) *Identity {
	id := &Identity{UID: token.UID, Provider: token.Firebase.SignInProvider}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		id.PhotoURL = picture
	}
	return id
}

// UpdateProfile mirrors display name and photo changes onto the identity account.
// Nil arguments are left unchanged.
func (p *Provider) UpdateProfile(ctx context.Context, uid string, displayName, photoURL *string) error {
	if displayName == nil && photoURL == nil {
		return nil
	}
	params := &auth.UserToUpdate{}
	if displayName != nil {
		params = params.DisplayName(*displayName)
	}
	if photoURL != nil {
		params = params.PhotoURL(*photoURL)
	}
	if _, err := p.auth.UpdateUser(ctx, uid, params); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update identity user: %w", err)
	}
	return nil
}

func (p *Provider) UpdatePassword(ctx context.Context, uid, password string) error {
	if _, err := p.auth.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Password(password)); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update identity password: %w", err)
	}
	return nil
}

func (p *Provider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := p.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke identity refresh tokens: %w", err)
	}
	return nil
}

func (p *Provider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.auth.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete identity user: %w", err)
	}
	return nil
}
