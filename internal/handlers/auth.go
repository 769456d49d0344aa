package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopfront/api/internal/middleware"
	"shopfront/api/internal/models"
	"shopfront/api/internal/security"
	"shopfront/api/internal/service"
)

const (
	refreshTokenCookie = "refresh_token"
	oauthStateCookie   = "oauth_state"

	// The refresh cookie only travels to the auth endpoint family.
	refreshCookiePath = "/api/v1/auth"
)

type registerRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

type profileResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	Role        string  `json:"role"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

func toProfile(account models.Account) profileResponse {
	return profileResponse{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Role:        string(account.Role),
		AvatarURL:   account.AvatarURL,
	}
}

// Register creates the account and returns the public profile. No cookies:
// registration does not authenticate.
func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	account, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": toProfile(account)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Same body as a failed credential check so the shape of the input
		// leaks nothing about which accounts exist.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	c.JSON(http.StatusOK, gin.H{"account": toProfile(result.Account)})
}

func (h HandlerSet) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	h.setCookie(c, oauthStateCookie, state, int(h.cfg.OAuth.StateCookieTTL/time.Second), refreshCookiePath)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

func (h HandlerSet) GoogleRedirect(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "state_mismatch"})
		return
	}
	h.setCookie(c, oauthStateCookie, "", -1, refreshCookiePath)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_code"})
		return
	}

	identity, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.log.Warn().Err(err).Msg("oauth exchange failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "oauth_exchange_failed"})
		return
	}

	result, err := h.authService.ValidateOAuth(c.Request.Context(), identity)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	if h.cfg.OAuth.SuccessURL != "" {
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.OAuth.SuccessURL)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": toProfile(result.Account)})
}

// NewToken reads the encrypted refresh token from its cookie and, on
// success, resets both cookies: the refresh token rotates on every use.
func (h HandlerSet) NewToken(c *gin.Context) {
	encrypted, _ := c.Cookie(refreshTokenCookie)

	result, err := h.authService.Refresh(c.Request.Context(), encrypted)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	c.JSON(http.StatusOK, gin.H{"account": toProfile(result.Account)})
}

// Logout clears the cookies and the stored session. It succeeds regardless
// of whether a session was live.
func (h HandlerSet) Logout(c *gin.Context) {
	if accountID := h.logoutAccountID(c); accountID != "" {
		if err := h.authService.Logout(c.Request.Context(), accountID); err != nil {
			h.log.Error().Err(err).Msg("logout failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}
	}

	h.clearSessionCookies(c)
	c.Status(http.StatusNoContent)
}

// logoutAccountID resolves the account whose stored refresh hash must be
// dropped. The access token expires after minutes while the refresh token
// lives for weeks, so an idle browser's logout arrives with only the
// refresh cookie still valid; falling back to it keeps logout effective
// server-side, not just a cookie wipe.
func (h HandlerSet) logoutAccountID(c *gin.Context) string {
	if tokenStr, err := c.Cookie(middleware.AccessTokenCookie); err == nil && tokenStr != "" {
		if claims, err := h.signer.Verify(tokenStr, security.PurposeAccess); err == nil {
			return claims.AccountID
		}
	}

	encrypted, err := c.Cookie(refreshTokenCookie)
	if err != nil || encrypted == "" {
		return ""
	}
	raw, err := h.cipher.Decrypt(encrypted)
	if err != nil {
		return ""
	}
	claims, err := h.signer.Verify(raw, security.PurposeRefresh)
	if err != nil {
		return ""
	}
	return claims.AccountID
}

func (h HandlerSet) Me(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": toProfile(account)})
}

// respondAuthError maps the closed auth error set onto status codes. Every
// refresh-path failure shares one body so a caller cannot learn which check
// tripped; anything outside the set is logged and collapsed to a 500.
func (h HandlerSet) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account_not_found"})
	case errors.Is(err, service.ErrMissingToken),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidOrExpired),
		errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrRefreshTokenMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
	default:
		h.log.Error().Err(err).
			Str("request_id", c.Writer.Header().Get("X-Request-Id")).
			Msg("auth operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}

func (h HandlerSet) setSessionCookies(c *gin.Context, result service.AuthResult) {
	h.setCookie(c, middleware.AccessTokenCookie, result.AccessToken, int(h.cfg.Security.JWTAccessTTL/time.Second), "/")
	h.setCookie(c, refreshTokenCookie, result.RefreshToken, int(h.cfg.Security.JWTRefreshTTL/time.Second), refreshCookiePath)
}

func (h HandlerSet) clearSessionCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessTokenCookie, "", -1, "/")
	h.setCookie(c, refreshTokenCookie, "", -1, refreshCookiePath)
}

func (h HandlerSet) setCookie(c *gin.Context, name, value string, maxAge int, path string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, path, "", h.cfg.Environment == "production", true)
}
