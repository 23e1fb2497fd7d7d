package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Coddedx/MoviePx-API/internal/auth"
	"github.com/Coddedx/MoviePx-API/internal/auth/federation"
	"github.com/Coddedx/MoviePx-API/internal/auth/password"
	"github.com/Coddedx/MoviePx-API/internal/auth/token"
	"github.com/Coddedx/MoviePx-API/internal/logger"
	"github.com/Coddedx/MoviePx-API/internal/users"
)

// Handler exposes the authentication endpoints: local registration and
// login, OAuth login initiation, and the provider callback.
type Handler struct {
	users        users.Store
	tokens       *token.Service
	federation   *federation.Service
	policy       password.Policy
	callbackPath string
}

func NewHandler(
	userStore users.Store,
	tokens *token.Service,
	fed *federation.Service,
	policy password.Policy,
	callbackPath string,
) *Handler {
	return &Handler{
		users:        userStore,
		tokens:       tokens,
		federation:   fed,
		policy:       policy,
		callbackPath: callbackPath,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.login)
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET(h.callbackPath, h.callback)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// Credential policy applies to local accounts only; violations come
	// back as a structured list for field-level guidance.
	if violations := h.policy.Check(req.Password); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "password does not meet policy",
			"violations": violations,
		})
		return
	}

	user, err := h.users.Create(c.Request.Context(), users.NewUser{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, users.ErrAlreadyRegistered) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		logger.Error("user registration failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	signed, err := h.tokens.Issue(user)
	if err != nil {
		logger.Error("token issuance failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": user.ID,
		"email":   user.Email,
		"token":   signed,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// Responses never reveal whether the email exists.
	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.Active() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	ok, err := h.users.ValidatePassword(c.Request.Context(), user.ID, req.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	signed, err := h.tokens.Issue(user)
	if err != nil {
		logger.Error("token issuance failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed})
}

func (h *Handler) oauthLogin(c *gin.Context) {
	authURL, err := h.federation.Begin(c.Request.Context(), c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown oauth provider"})
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) callback(c *gin.Context) {
	// Providers report user-denied consent and their own errors in-band.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"error": errParam,
			"desc":  c.Query("error_description"),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code or state"})
		return
	}

	result, err := h.federation.Complete(c.Request.Context(), state, code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidOAuthState):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		case errors.Is(err, auth.ErrFederationFailed):
			// Remote detail was already logged by the federation service.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		default:
			logger.Error("oauth callback failed", map[string]any{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": result.User.ID,
		"token":   result.Token,
	})
}
