package handler

import (
	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/handler/middleware"
	"eventtix/registrar/internal/service"
	"eventtix/registrar/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	// Login is a username or an email address.
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req.Login, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims, actor); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}
	response.Success(c, admin)
}
