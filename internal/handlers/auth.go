package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/constants"
	"github.com/yukikurage/minitrello-api/internal/dto"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/metrics"
	"github.com/yukikurage/minitrello-api/internal/middleware"
	"github.com/yukikurage/minitrello-api/internal/services"
	"github.com/yukikurage/minitrello-api/internal/utils"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	responder
	authService *services.AuthService
	metrics     *metrics.Metrics
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, m *metrics.Metrics, log *logger.Logger, frontendURL string, expose bool) *AuthHandler {
	return &AuthHandler{
		responder:   responder{log: log.WithComponent("auth"), expose: expose},
		authService: authService,
		metrics:     m,
		frontendURL: frontendURL,
	}
}

// GitHubLogin returns the GitHub consent URL and remembers the OAuth state in the session.
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	state, err := utils.GenerateState()
	if err != nil {
		apierrors.InternalError(c, "Failed to start GitHub sign-in")
		return
	}

	authURL, err := h.authService.GitHubAuthURL(state)
	if err != nil {
		h.respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyOAuth, state)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	dto.OK(c, gin.H{"authUrl": authURL})
}

// GitHubCallback finishes the OAuth flow and redirects back to the frontend with a bearer token.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.redirectSignInError(c, "no_code")
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(constants.SessionKeyOAuth).(string)
	session.Delete(constants.SessionKeyOAuth)
	_ = session.Save()

	if expected == "" || c.Query("state") != expected {
		h.log.LogSecurityEvent("oauth_state_mismatch", "", c.ClientIP(), nil)
		h.redirectSignInError(c, "invalid_state")
		return
	}

	result, err := h.authService.CompleteGitHubLogin(c.Request.Context(), code)
	if err != nil {
		h.log.WithError(err).Warn("GitHub sign-in failed")
		reason := "authentication_failed"
		switch {
		case errors.Is(err, services.ErrGitHubNotConfigured):
			reason = "github_not_configured"
		case errors.Is(err, services.ErrGitHubEmailUnavailable):
			reason = "no_email"
		}
		h.redirectSignInError(c, reason)
		return
	}

	query := url.Values{}
	query.Set("token", result.Token)
	query.Set("provider", "github")
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?"+query.Encode())
}

// GitHubToken returns the caller's stored GitHub access token.
func (h *AuthHandler) GitHubToken(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	token, login, err := h.authService.GitHubToken(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.GitHubTokenResponse{AccessToken: token, GitHubLogin: login})
}

// SendCode issues a verification code for an e-mail address.
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req dto.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.authService.SendCode(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.CodeIssued(result.Delivered)

	if result.Delivered {
		dto.Message(c, "Verification code sent to email")
		return
	}
	if result.Code != "" {
		dto.OKWithMessage(c, dto.SendCodeResponse{Code: result.Code}, "Verification code generated")
		return
	}
	dto.Message(c, "Verification code generated")
}

// VerifyCode signs the caller in with an e-mail code, creating the account on first use.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.authService.VerifyCode(c.Request.Context(), services.VerifyCodeInput{
		Email:       req.Email,
		Code:        req.Code,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.AuthResponse{Token: result.Token, User: dto.ToUserDTO(*result.User)})
}

// Signup registers a new account with an e-mail code.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), services.VerifyCodeInput{
		Email:       req.Email,
		Code:        req.Code,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.Created(c, dto.AuthResponse{Token: result.Token, User: dto.ToUserDTO(*result.User)})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToUserDTO(*user))
}

func (h *AuthHandler) redirectSignInError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/signin?error="+url.QueryEscape(reason))
}
