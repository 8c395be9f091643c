package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authapp "github.com/orderlink/backend/internal/application/auth"
)

// AuthHandler exchanges storefront credentials for session tokens
type AuthHandler struct {
	BaseHandler
	sessions *authapp.Service
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *authapp.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/session", h.IssueSession)
}

// SessionRequest carries the shop's storefront credentials
type SessionRequest struct {
	Shop        string `json:"shop" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// SessionResponse carries the signed session token
type SessionResponse struct {
	Token string `json:"token"`
}

// IssueSession verifies the credentials and returns a session token
func (h *AuthHandler) IssueSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	token, err := h.sessions.IssueSession(c.Request.Context(), req.Shop, req.AccessToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SessionResponse{Token: token})
}
