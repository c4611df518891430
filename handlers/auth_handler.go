package handlers

import (
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, Helper: h}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid JSON body", h.Helper.EmptyJsonMap())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID.(uint))
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", user)
}
