// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/formula"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// Service handles fragrance, material and product type business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	lookup *Lookup
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config, lookup *Lookup) *Service {
	if lookup == nil {
		lookup = NewLookup(db, nil)
	}
	return &Service{
		db:     db,
		config: cfg,
		lookup: lookup,
	}
}

// UpdateFragranceRequest is a partial fragrance update addressed by code
type UpdateFragranceRequest struct {
	Code             string   `json:"code" binding:"required"`
	Name             *string  `json:"name,omitempty"`
	Percentage       *float64 `json:"percentage,omitempty"`
	PGRatio          *float64 `json:"pgRatio,omitempty"`
	VGRatio          *float64 `json:"vgRatio,omitempty"`
	Unit             *string  `json:"unit,omitempty"`
	CostPerUnit      *float64 `json:"costPerUnit,omitempty"`
	SafetyStockLevel *float64 `json:"safetyStockLevel,omitempty"`
	SupplierCode     *string  `json:"supplierCode,omitempty"`
	Status           *string  `json:"status,omitempty"`
}

// RatioDiagnosis is the ratio check result for one fragrance
type RatioDiagnosis struct {
	ID                uint    `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Percentage        float64 `json:"percentage"`
	PGRatio           float64 `json:"pgRatio"`
	VGRatio           float64 `json:"vgRatio"`
	ExpectedPGRatio   float64 `json:"expectedPgRatio"`
	ExpectedVGRatio   float64 `json:"expectedVgRatio"`
	Mismatch          bool    `json:"mismatch"`
	InvalidPercentage bool    `json:"invalidPercentage"`
}

// RatioReport summarizes a ratio diagnosis over all fragrances
type RatioReport struct {
	Total             int              `json:"total"`
	Correct           int              `json:"correct"`
	Mismatched        int              `json:"mismatched"`
	InvalidPercentage int              `json:"invalidPercentage"`
	Items             []RatioDiagnosis `json:"items"`
}

// RatioFixResult is the outcome of FixAllFragranceRatios
type RatioFixResult struct {
	Checked int              `json:"checked"`
	Fixed   int              `json:"fixed"`
	Skipped int              `json:"skipped"`
	Changes []RatioDiagnosis `json:"changes"`
	Invalid []RatioDiagnosis `json:"invalid"`
}

// StatusIssue describes a fragrance with a questionable status
type StatusIssue struct {
	ID     uint   `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Issue  string `json:"issue"`
	// ProductCodes lists active products still using a deprecated fragrance
	ProductCodes []string `json:"productCodes,omitempty"`
}

// StatusReport summarizes fragrance status health
type StatusReport struct {
	Total    int            `json:"total"`
	Counts   map[string]int `json:"counts"`
	Invalid  []StatusIssue  `json:"invalid"`
	Warnings []StatusIssue  `json:"warnings"`
}

// StatusFix is one status rewrite
type StatusFix struct {
	Code string `json:"code"`
	From string `json:"from"`
	To   string `json:"to"`
}

// StatusFixResult is the outcome of FixFragranceStatus
type StatusFixResult struct {
	Checked int         `json:"checked"`
	Fixed   int         `json:"fixed"`
	Changes []StatusFix `json:"changes"`
}

// UpdateFragranceByCode applies a partial update to the fragrance with the given code.
// A percentage change recomputes the PG/VG ratios.
func (s *Service) UpdateFragranceByCode(ctx context.Context, req *UpdateFragranceRequest) (*Fragrance, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, apperror.New(apperror.CodeMissingField, "fragrance code is required")
	}

	var fragrance Fragrance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", code).First(&fragrance).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("fragrance %s not found", code)
			}
			return apperror.Database(err, "load fragrance")
		}

		updates := map[string]interface{}{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperror.InvalidInput("fragrance name cannot be empty")
			}
			updates["name"] = name
		}

		switch {
		case req.Percentage != nil:
			ratios, err := formula.CalculateRatios(*req.Percentage)
			if err != nil {
				return err
			}
			updates["percentage"] = ratios.Percentage
			updates["pg_ratio"] = ratios.PG
			updates["vg_ratio"] = ratios.VG
		case req.PGRatio != nil || req.VGRatio != nil:
			pg, vg := fragrance.PGRatio, fragrance.VGRatio
			if req.PGRatio != nil {
				pg = *req.PGRatio
			}
			if req.VGRatio != nil {
				vg = *req.VGRatio
			}
			if pg < 0 || vg < 0 || !formula.SumsToHundred(fragrance.Percentage, pg, vg) {
				return apperror.New(apperror.CodeOutOfRange,
					"percentage %.2f + pg %.2f + vg %.2f must equal 100", fragrance.Percentage, pg, vg)
			}
			updates["pg_ratio"] = pg
			updates["vg_ratio"] = vg
		}

		if req.Unit != nil {
			updates["unit"] = strings.ToUpper(strings.TrimSpace(*req.Unit))
		}
		if req.CostPerUnit != nil {
			if *req.CostPerUnit < 0 {
				return apperror.New(apperror.CodeOutOfRange, "cost per unit cannot be negative")
			}
			updates["cost_per_unit"] = *req.CostPerUnit
		}
		if req.SafetyStockLevel != nil {
			if *req.SafetyStockLevel < 0 {
				return apperror.New(apperror.CodeOutOfRange, "safety stock level cannot be negative")
			}
			updates["safety_stock_level"] = *req.SafetyStockLevel
		}
		if req.Status != nil {
			status := ItemStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
			if !status.IsValid() {
				return apperror.InvalidInput("invalid fragrance status %q", *req.Status)
			}
			updates["status"] = status
		}
		if req.SupplierCode != nil {
			supplierID, err := supplierIDByCode(tx, *req.SupplierCode)
			if err != nil {
				return err
			}
			updates["supplier_id"] = supplierID
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&fragrance).Updates(updates).Error; err != nil {
			return apperror.Database(err, "update fragrance")
		}
		return tx.Preload("Supplier").First(&fragrance, fragrance.ID).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"fragrance_code": fragrance.Code,
		"percentage":     fragrance.Percentage,
		"pg_ratio":       fragrance.PGRatio,
		"vg_ratio":       fragrance.VGRatio,
	}).Info("Fragrance updated")

	return &fragrance, nil
}

// DiagnoseFragranceRatios compares every stored ratio with the calculated one
func (s *Service) DiagnoseFragranceRatios(ctx context.Context) (*RatioReport, error) {
	var fragrances []Fragrance
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&fragrances).Error; err != nil {
		return nil, apperror.Database(err, "list fragrances")
	}

	report := &RatioReport{Total: len(fragrances), Items: make([]RatioDiagnosis, 0, len(fragrances))}
	for i := range fragrances {
		d := diagnoseRatio(&fragrances[i])
		switch {
		case d.InvalidPercentage:
			report.InvalidPercentage++
		case d.Mismatch:
			report.Mismatched++
		default:
			report.Correct++
		}
		report.Items = append(report.Items, d)
	}
	return report, nil
}

// FixAllFragranceRatios rewrites every mismatched ratio in one transaction.
// Fragrances with an invalid percentage are reported and left untouched.
func (s *Service) FixAllFragranceRatios(ctx context.Context) (*RatioFixResult, error) {
	result := &RatioFixResult{Changes: []RatioDiagnosis{}, Invalid: []RatioDiagnosis{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fragrances []Fragrance
		if err := lockForUpdate(tx).Order("code ASC").Find(&fragrances).Error; err != nil {
			return apperror.Database(err, "list fragrances")
		}
		result.Checked = len(fragrances)

		for i := range fragrances {
			d := diagnoseRatio(&fragrances[i])
			if d.InvalidPercentage {
				result.Skipped++
				result.Invalid = append(result.Invalid, d)
				continue
			}
			if !d.Mismatch {
				continue
			}
			err := tx.Model(&fragrances[i]).Updates(map[string]interface{}{
				"pg_ratio": d.ExpectedPGRatio,
				"vg_ratio": d.ExpectedVGRatio,
			}).Error
			if err != nil {
				return apperror.Database(err, "update fragrance ratios")
			}
			result.Fixed++
			result.Changes = append(result.Changes, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"checked": result.Checked,
		"fixed":   result.Fixed,
		"skipped": result.Skipped,
	}).Info("Fragrance ratios fixed")

	return result, nil
}

// DiagnoseFragranceStatus reports invalid statuses and deprecated fragrances still in use
func (s *Service) DiagnoseFragranceStatus(ctx context.Context) (*StatusReport, error) {
	db := s.db.WithContext(ctx)

	var fragrances []Fragrance
	if err := db.Order("code ASC").Find(&fragrances).Error; err != nil {
		return nil, apperror.Database(err, "list fragrances")
	}

	report := &StatusReport{
		Total:    len(fragrances),
		Counts:   map[string]int{},
		Invalid:  []StatusIssue{},
		Warnings: []StatusIssue{},
	}

	for _, f := range fragrances {
		report.Counts[string(f.Status)]++
		if !f.Status.IsValid() {
			issue := "status is empty"
			if f.Status != "" {
				issue = "status is not one of active, standby, deprecated"
			}
			report.Invalid = append(report.Invalid, StatusIssue{
				ID: f.ID, Code: f.Code, Name: f.Name, Status: string(f.Status), Issue: issue,
			})
			continue
		}
		if f.Status != StatusDeprecated {
			continue
		}

		var codes []string
		err := db.Model(&Product{}).
			Where("fragrance_id = ? AND status = ?", f.ID, StatusActive).
			Order("code ASC").
			Pluck("code", &codes).Error
		if err != nil {
			return nil, apperror.Database(err, "find products using fragrance")
		}
		if len(codes) > 0 {
			report.Warnings = append(report.Warnings, StatusIssue{
				ID: f.ID, Code: f.Code, Name: f.Name, Status: string(f.Status),
				Issue:        "deprecated fragrance is still used by active products",
				ProductCodes: codes,
			})
		}
	}

	return report, nil
}

// FixFragranceStatus normalizes status values. Values that remain invalid become
// active when a product references the fragrance, standby otherwise.
func (s *Service) FixFragranceStatus(ctx context.Context) (*StatusFixResult, error) {
	result := &StatusFixResult{Changes: []StatusFix{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fragrances []Fragrance
		if err := lockForUpdate(tx).Order("code ASC").Find(&fragrances).Error; err != nil {
			return apperror.Database(err, "list fragrances")
		}
		result.Checked = len(fragrances)

		var referenced []uint
		if err := tx.Model(&Product{}).
			Where("fragrance_id IS NOT NULL").
			Distinct().
			Pluck("fragrance_id", &referenced).Error; err != nil {
			return apperror.Database(err, "list referenced fragrances")
		}
		inUse := make(map[uint]bool, len(referenced))
		for _, id := range referenced {
			inUse[id] = true
		}

		for i := range fragrances {
			f := &fragrances[i]
			if f.Status.IsValid() {
				continue
			}
			next := ItemStatus(strings.ToLower(strings.TrimSpace(string(f.Status))))
			if !next.IsValid() {
				next = StatusStandby
				if inUse[f.ID] {
					next = StatusActive
				}
			}
			from := string(f.Status)
			if err := tx.Model(f).Update("status", next).Error; err != nil {
				return apperror.Database(err, "update fragrance status")
			}
			result.Fixed++
			result.Changes = append(result.Changes, StatusFix{Code: f.Code, From: from, To: string(next)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"checked": result.Checked,
		"fixed":   result.Fixed,
	}).Info("Fragrance statuses fixed")

	return result, nil
}

func diagnoseRatio(f *Fragrance) RatioDiagnosis {
	d := RatioDiagnosis{
		ID:         f.ID,
		Code:       f.Code,
		Name:       f.Name,
		Percentage: f.Percentage,
		PGRatio:    f.PGRatio,
		VGRatio:    f.VGRatio,
	}
	// a zero percentage means the formula was never filled in
	if f.Percentage <= 0 {
		d.InvalidPercentage = true
		return d
	}
	expected, err := formula.CalculateRatios(f.Percentage)
	if err != nil {
		d.InvalidPercentage = true
		return d
	}
	d.ExpectedPGRatio = expected.PG
	d.ExpectedVGRatio = expected.VG
	d.Mismatch = !formula.RatiosMatch(f.PGRatio, f.VGRatio, expected)
	return d
}

func supplierIDByCode(tx *gorm.DB, code string) (*uint, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var supplier Supplier
	if err := tx.Where("code = ?", code).First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("supplier %s not found", code)
		}
		return nil, apperror.Database(err, "load supplier")
	}
	return &supplier.ID, nil
}
