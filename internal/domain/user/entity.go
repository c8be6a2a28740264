// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/your-org/production-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// User represents an operator of the production backend
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password    string     `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	Name        string     `gorm:"not null;size:100" json:"name"`
	Role        auth.Role  `gorm:"not null;size:20;default:'worker';index" json:"role"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = auth.RoleWorker
	}
	return nil
}

// Actor returns the identity recorded on audit rows
func (u *User) Actor() auth.Actor {
	return auth.Actor{UserID: u.ID, Name: u.GetDisplayName(), Role: u.Role}
}

// GetDisplayName returns the name, falling back to the email
func (u *User) GetDisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}

// Models lists every user model in migration order
func Models() []interface{} {
	return []interface{}{&User{}}
}
