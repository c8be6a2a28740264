// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/domain/user"
	"github.com/your-org/production-backend/internal/interfaces/http/middleware"
	"github.com/your-org/production-backend/internal/interfaces/http/response"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService *user.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *user.Service) *AuthHandler {
	return &AuthHandler{userService: svc}
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := requireJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Error(c, apperror.New(apperror.CodeUnauthenticated, "authentication required"))
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}

// ChangePassword handles password changes for the authenticated user
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Error(c, apperror.New(apperror.CodeUnauthenticated, "authentication required"))
		return
	}

	var req user.ChangePasswordRequest
	if err := requireJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Password changed successfully"})
}

// requireJSON is bindJSON with an empty body reported as invalid input
func requireJSON(c *gin.Context, dst interface{}) error {
	err := bindJSON(c, dst)
	if errors.Is(err, io.EOF) {
		return apperror.InvalidInput("request body is required")
	}
	return err
}
