// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// CreateUserRequest represents user creation data
type CreateUserRequest struct {
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required"`
	Name     string    `json:"name" binding:"required"`
	Role     auth.Role `json:"role"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Database(err, "load user")
	}
	if err != nil || s.passwordManager.VerifyPassword(req.Password, user.Password) != nil {
		return nil, apperror.New(apperror.CodeUnauthenticated, "invalid email or password")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.GetDisplayName(), user.Role)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to generate access token")
	}

	// Update last login
	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to record last login")
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User logged in")

	return &AuthResponse{
		User:        &user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// GetProfile gets an active user by ID
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user %d not found", userID)
	}
	if err != nil {
		return nil, apperror.Database(err, "load user")
	}
	return &user, nil
}

// CreateUser creates an account with a validated, hashed password
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, apperror.New(apperror.CodeMissingField, "email and name are required")
	}
	role := req.Role
	if role == "" {
		role = auth.RoleWorker
	}
	if !role.IsValid() {
		return nil, apperror.InvalidInput("unknown role %q", req.Role)
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.InvalidInput("%s", err.Error())
	}

	user := User{
		Email:    email,
		Password: hashedPassword,
		Name:     name,
		Role:     role,
		IsActive: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return apperror.Database(err, "check user email")
		}
		if count > 0 {
			return apperror.New(apperror.CodeDuplicate, "user with this email already exists")
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperror.Database(err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User created")

	return &user, nil
}

// ChangePassword changes user password after verifying current password
func (s *Service) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwordManager.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		return apperror.New(apperror.CodeUnauthenticated, "current password is incorrect")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.InvalidInput("%s", err.Error())
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password", hashedPassword).Error; err != nil {
		return apperror.Database(err, "update password")
	}

	logger.FromContext(ctx).WithField("user_id", userID).Info("Password changed")
	return nil
}
