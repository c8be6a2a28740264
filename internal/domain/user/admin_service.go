// internal/domain/user/admin_service.go
package user

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"github.com/your-org/production-backend/internal/pkg/pagination"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Status string `form:"status"` // active, inactive, all
	Role   string `form:"role"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []User                `json:"users"`
	Pagination pagination.Pagination `json:"pagination"`
}

// UserUpdateRequest changes a user's role or active flag
type UserUpdateRequest struct {
	Role     *auth.Role `json:"role,omitempty"`
	IsActive *bool      `json:"isActive,omitempty"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(ctx context.Context, req *UserListRequest) (*UserListResponse, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchTerm, searchTerm)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	if req.Role != "" && req.Role != "all" {
		role := auth.Role(req.Role)
		if !role.IsValid() {
			return nil, apperror.InvalidInput("unknown role %q", req.Role)
		}
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Database(err, "count users")
	}

	users := []User{}
	if err := query.Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, apperror.Database(err, "list users")
	}

	return &UserListResponse{
		Users:      users,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// UpdateUser changes role or active flag. Admins cannot demote or deactivate themselves.
func (s *AdminService) UpdateUser(ctx context.Context, actor auth.Actor, userID uint, req *UserUpdateRequest) (*User, error) {
	updates := map[string]interface{}{}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, apperror.InvalidInput("unknown role %q", *req.Role)
		}
		if userID == actor.UserID && *req.Role != actor.Role {
			return nil, apperror.New(apperror.CodeInvalidOperation, "you cannot change your own role")
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		if userID == actor.UserID && !*req.IsActive {
			return nil, apperror.New(apperror.CodeInvalidOperation, "you cannot deactivate your own account")
		}
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, apperror.New(apperror.CodeMissingField, "nothing to update")
	}

	var user User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("user %d not found", userID)
			}
			return apperror.Database(err, "load user")
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return apperror.Database(err, "update user")
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"user_id":   userID,
		"admin_id":  actor.UserID,
		"role":      user.Role,
		"is_active": user.IsActive,
	}).Info("User updated by admin")

	return &user, nil
}
