// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/domain/user"
	"github.com/your-org/production-backend/internal/interfaces/http/middleware"
	"github.com/your-org/production-backend/internal/interfaces/http/response"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

// UserAdminHandler handles admin user management endpoints
type UserAdminHandler struct {
	userService  *user.Service
	adminService *user.AdminService
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(userService *user.Service, adminService *user.AdminService) *UserAdminHandler {
	return &UserAdminHandler{
		userService:  userService,
		adminService: adminService,
	}
}

// GetUsers handles GET /admin/users
func (h *UserAdminHandler) GetUsers(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperror.InvalidInput("invalid query parameters").WithDetails(err.Error()))
		return
	}

	result, err := h.adminService.GetUsers(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// CreateUser handles POST /admin/users
func (h *UserAdminHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := requireJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// UpdateUser handles PATCH /admin/users/:id
func (h *UserAdminHandler) UpdateUser(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.New(apperror.CodeUnauthenticated, "authentication required"))
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || userID == 0 {
		response.Error(c, apperror.InvalidInput("invalid user ID"))
		return
	}

	var req user.UserUpdateRequest
	if err := requireJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.adminService.UpdateUser(c.Request.Context(), actor, uint(userID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, updated)
}
