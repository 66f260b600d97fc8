package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/identity"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/session"
)

// identityRevokeTimeout bounds the best-effort identity revocation on logout.
const identityRevokeTimeout = 10 * time.Second

// authService implements the AuthService interface.
type authService struct {
	userRepo   db.UserRepository
	identities IdentityProvider
	tokens     TokenIssuer
	background *BestEffort
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	userRepo db.UserRepository,
	identities IdentityProvider,
	tokens TokenIssuer,
	background *BestEffort,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		identities: identities,
		tokens:     tokens,
		background: background,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *authService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

func (s *authService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	pair, err := s.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens for user '%s': %w", user.ID, err)
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// stampLogin records the sign-in time. The sign-in has already succeeded,
// so a failed write is only logged.
func (s *authService) stampLogin(ctx context.Context, user *models.User) {
	now := s.now().UTC()
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"lastLogin": now}); err != nil {
		s.logger.Warn("Failed to stamp last login", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	user.LastLogin = now
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	uid, err := s.identities.CreateUser(ctx, email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create identity user: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uid,
		Email:        email,
		DisplayName:  req.DisplayName,
		AuthProvider: models.AuthProviderPassword,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user (id: %s): %w", uid, err)
	}

	s.logger.Info("User registered", zap.String("user_id", uid))
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	uid, err := s.identities.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		// An identity without a profile document cannot sign in here.
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", uid, err)
	}
	s.stampLogin(ctx, user)
	return s.issue(ctx, user)
}

// SocialLogin verifies a Firebase ID token and creates the user document the
// first time the identity signs in.
func (s *authService) SocialLogin(ctx context.Context, idToken, provider, fullName string) (*AuthResult, error) {
	ident, err := s.identities.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidIDToken) {
			return nil, fmt.Errorf("%w: %s sign-in token rejected", ErrInvalidCredentials, provider)
		}
		return nil, fmt.Errorf("failed to verify %s token: %w", provider, err)
	}

	user, err := s.userRepo.GetByID(ctx, ident.UID)
	if err == nil {
		s.stampLogin(ctx, user)
		return s.issue(ctx, user)
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", ident.UID, err)
	}

	displayName := ident.DisplayName
	if displayName == "" {
		displayName = strings.TrimSpace(fullName)
	}
	if displayName == "" {
		displayName = strings.Split(ident.Email, "@")[0]
	}
	now := s.now().UTC()
	user = &models.User{
		ID:           ident.UID,
		Email:        strings.ToLower(ident.Email),
		DisplayName:  displayName,
		PhotoURL:     ident.PhotoURL,
		AuthProvider: provider,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user (id: %s) after first %s sign-in: %w", ident.UID, provider, err)
	}
	s.logger.Info("User created from social sign-in", zap.String("user_id", user.ID), zap.String("provider", provider))
	return s.issue(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*session.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	pair, _, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) || errors.Is(err, session.ErrExpiredToken) || errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return pair, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.loadUser(ctx, userID)
}

// Logout ends every refresh session of the user. Revoking the Firebase
// refresh tokens is best-effort.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions of user '%s': %w", userID, err)
	}
	s.background.Go(ctx, "revoke_identity_tokens", identityRevokeTimeout,
		func(ctx context.Context) error {
			return s.identities.RevokeRefreshTokens(ctx, userID)
		},
		zap.String("user_id", userID),
	)
	return nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil || req.PhotoURL != nil {
		if err := s.identities.UpdateProfile(ctx, userID, req.DisplayName, req.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to update identity profile of user '%s': %w", userID, err)
		}
	}

	now := s.now().UTC()
	fields := map[string]interface{}{"updatedAt": now}
	if req.DisplayName != nil {
		fields["displayName"] = *req.DisplayName
		user.DisplayName = *req.DisplayName
	}
	if req.PhotoURL != nil {
		fields["photoURL"] = *req.PhotoURL
		user.PhotoURL = *req.PhotoURL
	}
	if p := req.Preferences; p != nil {
		if p.Theme != nil {
			user.Preferences.Theme = *p.Theme
		}
		if p.AccentColor != nil {
			user.Preferences.AccentColor = *p.AccentColor
		}
		if p.DefaultView != nil {
			user.Preferences.DefaultView = *p.DefaultView
		}
		if p.Notifications != nil {
			user.Preferences.Notifications = *p.Notifications
		}
		fields["preferences"] = user.Preferences
	}

	if err := s.userRepo.Update(ctx, userID, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to update user '%s': %w", userID, err)
	}
	user.UpdatedAt = now
	return user, nil
}

// ChangePassword re-verifies the current password before setting the new one.
func (s *authService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.identities.SignInWithPassword(ctx, user.Email, req.CurrentPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return newValidationError("currentPassword", "current password is incorrect")
		}
		return fmt.Errorf("failed to verify current password: %w", err)
	}
	if err := s.identities.UpdatePassword(ctx, userID, req.NewPassword); err != nil {
		return fmt.Errorf("failed to update password of user '%s': %w", userID, err)
	}
	return nil
}

// DeleteAccount removes the user's data in one atomic write, then the identity.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userRepo.DeleteAccountData(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to delete account data of user '%s': %w", userID, err)
	}
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		s.logger.Warn("Failed to revoke sessions of deleted user", zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.identities.DeleteUser(ctx, userID); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		return fmt.Errorf("failed to delete identity of user '%s': %w", userID, err)
	}
	s.logger.Info("Account deleted", zap.String("user_id", userID))
	return nil
}
