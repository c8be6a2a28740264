// internal/domain/catalog/product_type_service.go
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// CreateProductTypeRequest represents product type creation data
type CreateProductTypeRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// UpdateProductTypeRequest represents product type update data
type UpdateProductTypeRequest struct {
	ID          uint    `json:"id" binding:"required"`
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListProductTypes returns all product types ordered by code
func (s *Service) ListProductTypes(ctx context.Context) ([]ProductType, error) {
	var types []ProductType
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&types).Error; err != nil {
		return nil, apperror.Database(err, "list product types")
	}
	return types, nil
}

// CreateProductType creates a product type with a unique code
func (s *Service) CreateProductType(ctx context.Context, req *CreateProductTypeRequest) (*ProductType, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" {
		return nil, apperror.New(apperror.CodeMissingField, "product type code is required")
	}
	if name == "" {
		return nil, apperror.New(apperror.CodeMissingField, "product type name is required")
	}

	pt := &ProductType{
		Code:        code,
		Name:        name,
		Color:       strings.TrimSpace(req.Color),
		Description: req.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProductTypeCodeFree(tx, code, 0); err != nil {
			return err
		}
		if err := tx.Create(pt).Error; err != nil {
			return apperror.Database(err, "create product type")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"product_type_id": pt.ID,
		"code":            pt.Code,
	}).Info("Product type created")

	return pt, nil
}

// UpdateProductType applies a partial update to a product type
func (s *Service) UpdateProductType(ctx context.Context, req *UpdateProductTypeRequest) (*ProductType, error) {
	var pt ProductType

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pt, req.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product type %d not found", req.ID)
			}
			return apperror.Database(err, "load product type")
		}

		updates := map[string]interface{}{}
		if req.Code != nil {
			code := strings.TrimSpace(*req.Code)
			if code == "" {
				return apperror.InvalidInput("product type code cannot be empty")
			}
			if code != pt.Code {
				if err := ensureProductTypeCodeFree(tx, code, pt.ID); err != nil {
					return err
				}
			}
			updates["code"] = code
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperror.InvalidInput("product type name cannot be empty")
			}
			updates["name"] = name
		}
		if req.Color != nil {
			updates["color"] = strings.TrimSpace(*req.Color)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&pt).Updates(updates).Error; err != nil {
			return apperror.Database(err, "update product type")
		}
		return tx.First(&pt, pt.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// DeleteProductType removes a product type that no series references
func (s *Service) DeleteProductType(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pt ProductType
		if err := tx.First(&pt, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product type %d not found", id)
			}
			return apperror.Database(err, "load product type")
		}

		var inUse int64
		if err := tx.Model(&ProductSeries{}).Where("product_type_id = ?", id).Count(&inUse).Error; err != nil {
			return apperror.Database(err, "count product series")
		}
		if inUse > 0 {
			return apperror.New(apperror.CodeInvalidOperation,
				"product type %s is used by %d product series", pt.Code, inUse).
				WithDetails(map[string]interface{}{"seriesCount": inUse})
		}

		if err := tx.Delete(&pt).Error; err != nil {
			return apperror.Database(err, "delete product type")
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("product_type_id", id).Info("Product type deleted")
	return nil
}

func ensureProductTypeCodeFree(tx *gorm.DB, code string, exceptID uint) error {
	var count int64
	q := tx.Model(&ProductType{}).Where("code = ?", code)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return apperror.Database(err, "check product type code")
	}
	if count > 0 {
		return apperror.New(apperror.CodeDuplicate, "product type with code '%s' already exists", code)
	}
	return nil
}
