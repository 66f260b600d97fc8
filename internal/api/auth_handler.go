package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	authService core.AuthService
}

func NewAuthHandler(as core.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

func authPayload(res *core.AuthResult) gin.H {
	return gin.H{
		"user":         res.User,
		"token":        res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"expiresIn":    res.Tokens.ExpiresIn,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: authPayload(res)})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authPayload(res))
}

// Google handles POST /auth/google
func (h *AuthHandler) Google(c *gin.Context) {
	var req models.GoogleAuthRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.SocialLogin(c.Request.Context(), req.IDToken, models.AuthProviderGoogle, "")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authPayload(res))
}

// Apple handles POST /auth/apple
func (h *AuthHandler) Apple(c *gin.Context) {
	var req models.AppleAuthRequest
	if !bindJSON(c, &req) {
		return
	}
	fullName := ""
	if req.User != nil {
		fullName = req.User.FullName
	}
	res, err := h.authService.SocialLogin(c.Request.Context(), req.IdentityToken, models.AuthProviderApple, fullName)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authPayload(res))
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, pair)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"user": user})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Logged out successfully")
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"user": user})
}

// ChangePassword handles PUT /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), uid, req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Password changed successfully")
}

// DeleteAccount handles DELETE /auth/account
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.authService.DeleteAccount(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Account deleted successfully")
}
