// internal/domain/catalog/import_service.go
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/domain/formula"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// MaterialImportItem is one material row to upsert by code
type MaterialImportItem struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	SubCategory      string   `json:"subCategory"`
	Unit             string   `json:"unit"`
	CurrentStock     *float64 `json:"currentStock,omitempty"`
	SafetyStockLevel *float64 `json:"safetyStockLevel,omitempty"`
	CostPerUnit      *float64 `json:"costPerUnit,omitempty"`
	SupplierCode     string   `json:"supplierCode"`
}

// FragranceImportItem is one fragrance row to upsert by code
type FragranceImportItem struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Percentage       *float64 `json:"percentage,omitempty"`
	Unit             string   `json:"unit"`
	CurrentStock     *float64 `json:"currentStock,omitempty"`
	SafetyStockLevel *float64 `json:"safetyStockLevel,omitempty"`
	CostPerUnit      *float64 `json:"costPerUnit,omitempty"`
	SupplierCode     string   `json:"supplierCode"`
	Status           string   `json:"status"`
}

// ImportRowError reports why a row was skipped
type ImportRowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult summarizes an import batch
type ImportResult struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}

func (r *ImportResult) skip(row int, code string, err error) {
	r.Skipped++
	msg := err.Error()
	if appErr, ok := apperror.As(err); ok {
		msg = appErr.Message
	}
	r.Errors = append(r.Errors, ImportRowError{Row: row, Code: code, Message: msg})
}

// ImportMaterials upserts materials by code in one transaction.
// Current stock is only taken for new rows; existing stock changes go through inventory updates.
func (s *Service) ImportMaterials(ctx context.Context, items []MaterialImportItem) (*ImportResult, error) {
	if len(items) == 0 {
		return nil, apperror.New(apperror.CodeMissingField, "no materials to import")
	}

	result := &ImportResult{Total: len(items), Errors: []ImportRowError{}}
	suppliers := newSupplierResolver()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, item := range items {
			row := i + 1
			code := strings.TrimSpace(item.Code)
			name := strings.TrimSpace(item.Name)
			if code == "" || name == "" {
				result.skip(row, code, apperror.New(apperror.CodeMissingField, "code and name are required"))
				continue
			}
			if err := nonNegative(item.CurrentStock, item.SafetyStockLevel, item.CostPerUnit); err != nil {
				result.skip(row, code, err)
				continue
			}
			supplierID, err := suppliers.resolve(tx, item.SupplierCode)
			if err != nil {
				if apperror.HasCode(err, apperror.CodeDatabaseError) {
					return err
				}
				result.skip(row, code, err)
				continue
			}

			unit := strings.ToUpper(strings.TrimSpace(item.Unit))

			var existing Material
			err = lockForUpdate(tx).Where("code = ?", code).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if unit == "" {
					unit = s.defaultUnit()
				}
				m := Material{
					Code:        code,
					Name:        name,
					Category:    strings.TrimSpace(item.Category),
					SubCategory: strings.TrimSpace(item.SubCategory),
					Unit:        unit,
					SupplierID:  supplierID,
				}
				setIfPresent(&m.CurrentStock, item.CurrentStock)
				setIfPresent(&m.SafetyStockLevel, item.SafetyStockLevel)
				setIfPresent(&m.CostPerUnit, item.CostPerUnit)
				if err := tx.Create(&m).Error; err != nil {
					return apperror.Database(err, "create material")
				}
				result.Created++
			case err != nil:
				return apperror.Database(err, "load material")
			default:
				updates := map[string]interface{}{
					"name":         name,
					"category":     strings.TrimSpace(item.Category),
					"sub_category": strings.TrimSpace(item.SubCategory),
				}
				if unit != "" {
					updates["unit"] = unit
				}
				if supplierID != nil {
					updates["supplier_id"] = *supplierID
				}
				if item.SafetyStockLevel != nil {
					updates["safety_stock_level"] = *item.SafetyStockLevel
				}
				if item.CostPerUnit != nil {
					updates["cost_per_unit"] = *item.CostPerUnit
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return apperror.Database(err, "update material")
				}
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// category tags may have moved between materials
	s.lookup.InvalidateDiluents(ctx)

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	}).Info("Materials imported")

	return result, nil
}

// ImportFragrances upserts fragrances by code in one transaction, deriving
// PG/VG ratios from the percentage.
func (s *Service) ImportFragrances(ctx context.Context, items []FragranceImportItem) (*ImportResult, error) {
	if len(items) == 0 {
		return nil, apperror.New(apperror.CodeMissingField, "no fragrances to import")
	}

	result := &ImportResult{Total: len(items), Errors: []ImportRowError{}}
	suppliers := newSupplierResolver()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, item := range items {
			row := i + 1
			code := strings.TrimSpace(item.Code)
			name := strings.TrimSpace(item.Name)
			if code == "" || name == "" {
				result.skip(row, code, apperror.New(apperror.CodeMissingField, "code and name are required"))
				continue
			}
			if err := nonNegative(item.CurrentStock, item.SafetyStockLevel, item.CostPerUnit); err != nil {
				result.skip(row, code, err)
				continue
			}

			var ratios *formula.Ratios
			if item.Percentage != nil {
				r, err := formula.CalculateRatios(*item.Percentage)
				if err != nil {
					result.skip(row, code, err)
					continue
				}
				ratios = &r
			}

			var status ItemStatus
			if raw := strings.TrimSpace(item.Status); raw != "" {
				status = ItemStatus(strings.ToLower(raw))
				if !status.IsValid() {
					result.skip(row, code, apperror.InvalidInput("invalid status %q", item.Status))
					continue
				}
			}

			supplierID, err := suppliers.resolve(tx, item.SupplierCode)
			if err != nil {
				if apperror.HasCode(err, apperror.CodeDatabaseError) {
					return err
				}
				result.skip(row, code, err)
				continue
			}

			unit := strings.ToUpper(strings.TrimSpace(item.Unit))

			var existing Fragrance
			err = lockForUpdate(tx).Where("code = ?", code).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if unit == "" {
					unit = s.defaultUnit()
				}
				if status == "" {
					status = StatusActive
				}
				f := Fragrance{
					Code:       code,
					Name:       name,
					Unit:       unit,
					Status:     status,
					SupplierID: supplierID,
				}
				if ratios != nil {
					f.Percentage, f.PGRatio, f.VGRatio = ratios.Percentage, ratios.PG, ratios.VG
				}
				setIfPresent(&f.CurrentStock, item.CurrentStock)
				setIfPresent(&f.SafetyStockLevel, item.SafetyStockLevel)
				setIfPresent(&f.CostPerUnit, item.CostPerUnit)
				if err := tx.Create(&f).Error; err != nil {
					return apperror.Database(err, "create fragrance")
				}
				result.Created++
			case err != nil:
				return apperror.Database(err, "load fragrance")
			default:
				updates := map[string]interface{}{"name": name}
				if ratios != nil {
					updates["percentage"] = ratios.Percentage
					updates["pg_ratio"] = ratios.PG
					updates["vg_ratio"] = ratios.VG
				}
				if unit != "" {
					updates["unit"] = unit
				}
				if status != "" {
					updates["status"] = status
				}
				if supplierID != nil {
					updates["supplier_id"] = *supplierID
				}
				if item.SafetyStockLevel != nil {
					updates["safety_stock_level"] = *item.SafetyStockLevel
				}
				if item.CostPerUnit != nil {
					updates["cost_per_unit"] = *item.CostPerUnit
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return apperror.Database(err, "update fragrance")
				}
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	}).Info("Fragrances imported")

	return result, nil
}

func (s *Service) defaultUnit() string {
	if s.config != nil && s.config.Production.DefaultUnit != "" {
		return s.config.Production.DefaultUnit
	}
	return "KG"
}

// supplierResolver memoizes supplier code lookups within one import
type supplierResolver struct {
	ids map[string]uint
}

func newSupplierResolver() *supplierResolver {
	return &supplierResolver{ids: map[string]uint{}}
}

func (r *supplierResolver) resolve(tx *gorm.DB, code string) (*uint, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	if id, ok := r.ids[code]; ok {
		return &id, nil
	}
	id, err := supplierIDByCode(tx, code)
	if err != nil {
		return nil, err
	}
	r.ids[code] = *id
	return id, nil
}

func nonNegative(values ...*float64) error {
	for _, v := range values {
		if v != nil && *v < 0 {
			return apperror.New(apperror.CodeOutOfRange, "numeric fields cannot be negative")
		}
	}
	return nil
}

func setIfPresent(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
