package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/middleware"
	"github.com/vebops/store/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetHeader(middleware.TokenHeader)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Session GET /api/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, service.SessionUser(user))
}
