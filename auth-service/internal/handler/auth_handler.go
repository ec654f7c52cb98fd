package handler

import (
	"context"
	"net/http"

	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/gin-gonic/gin"
)

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (string, error)
	ValidateToken(context.Context, cqrs.ValidateTokenQuery) error
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (string, error)
}

// AuthHandler handles login, validation and token refresh. No command service needed.
type AuthHandler struct {
	queries AuthQuerier
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(queries AuthQuerier) *AuthHandler {
	return &AuthHandler{queries: queries}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// Validate answers 200 for a valid bearer token and 401 otherwise, with no body.
func (h *AuthHandler) Validate(c *gin.Context) {
	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}
	if err := h.queries.ValidateToken(c.Request.Context(), cqrs.ValidateTokenQuery{Token: token}); err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Status(http.StatusOK)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{
		Token: req.Token,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}
