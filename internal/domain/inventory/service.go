// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/bom"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/domain/formula"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"github.com/your-org/production-backend/internal/pkg/metrics"
	"github.com/your-org/production-backend/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// StocktakeTolerance is the largest variance a count may show without adjusting stock
	StocktakeTolerance = 0.01

	// MaxBatchItems bounds a single stocktake or update batch
	MaxBatchItems = 500

	stockPlaces = 3
)

var stocktakeTolerance = decimal.NewFromFloat(StocktakeTolerance)

// Service handles inventory business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// StocktakeItem is one physical count
type StocktakeItem struct {
	ItemType    ItemType `json:"itemType"`
	ItemID      uint     `json:"itemId"`
	ActualStock *float64 `json:"actualStock"`
}

// StocktakeRequest represents a stocktake batch
type StocktakeRequest struct {
	Items  []StocktakeItem `json:"items" binding:"required"`
	Reason string          `json:"reason"`
	Note   string          `json:"note"`
	Atomic bool            `json:"atomic"`
}

// UpdateItem is one signed stock change
type UpdateItem struct {
	ItemType ItemType `json:"itemType"`
	ItemID   uint     `json:"itemId"`
	Delta    *float64 `json:"delta"`
	Reason   string   `json:"reason"`
}

// UnifiedUpdateRequest represents a batch of signed stock changes
type UnifiedUpdateRequest struct {
	Items  []UpdateItem `json:"items" binding:"required"`
	Reason string       `json:"reason"`
	Note   string       `json:"note"`
	Atomic bool         `json:"atomic"`
}

// ItemError is the failure of a single batch item
type ItemError struct {
	Code    apperror.Code `json:"code"`
	Message string        `json:"message"`
}

// ItemResult is the outcome for a single batch item
type ItemResult struct {
	ItemType      ItemType   `json:"itemType"`
	ItemID        uint       `json:"itemId"`
	ItemCode      string     `json:"itemCode,omitempty"`
	ItemName      string     `json:"itemName,omitempty"`
	PreviousStock float64    `json:"previousStock"`
	NewStock      float64    `json:"newStock"`
	Variance      float64    `json:"variance"`
	Adjusted      bool       `json:"adjusted"`
	Success       bool       `json:"success"`
	Error         *ItemError `json:"error,omitempty"`
}

// BatchResult summarizes a stocktake or unified update
type BatchResult struct {
	RecordID      uint         `json:"recordId"`
	Processed     int          `json:"processed"`
	Adjusted      int          `json:"adjusted"`
	SuccessCount  int          `json:"successCount"`
	FailureCount  int          `json:"failureCount"`
	TotalVariance float64      `json:"totalVariance"`
	Items         []ItemResult `json:"items"`
}

// LowStockItem is an item at or below its safety stock level
type LowStockItem struct {
	ItemType         ItemType `json:"itemType"`
	ItemID           uint     `json:"itemId"`
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Unit             string   `json:"unit"`
	CurrentStock     float64  `json:"currentStock"`
	SafetyStockLevel float64  `json:"safetyStockLevel"`
	Shortfall        float64  `json:"shortfall"`
}

// ListRecordsRequest represents audit record filters
type ListRecordsRequest struct {
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	RecordType RecordType `json:"recordType"`
}

// RecordListResponse represents audit records with pagination
type RecordListResponse struct {
	Records    []InventoryRecord     `json:"records"`
	Pagination pagination.Pagination `json:"pagination"`
}

// ListMovementsRequest represents movement filters
type ListMovementsRequest struct {
	ItemType ItemType `json:"itemType"`
	ItemID   uint     `json:"itemId"`
	Page     int      `json:"page"`
	Limit    int      `json:"limit"`
}

// MovementListResponse represents movements with pagination
type MovementListResponse struct {
	Movements  []InventoryMovement   `json:"movements"`
	Pagination pagination.Pagination `json:"pagination"`
}

// batchLine is a request item normalized across both batch kinds
type batchLine struct {
	itemType ItemType
	itemID   uint
	value    *float64
	reason   string
}

// planFunc computes the stock after applying line to previous
type planFunc func(line batchLine, previous float64) (newStock float64, adjusted bool, err *apperror.Error)

type batchOp struct {
	name         string
	recordType   RecordType
	movementType MovementType
	plan         planFunc
}

type stockRow struct {
	code  string
	name  string
	stock float64
}

type pendingWrite struct {
	line     batchLine
	row      *stockRow
	previous float64
	next     float64
}

// PerformStocktake reconciles recorded stock with physical counts.
// Counts within StocktakeTolerance leave the stock untouched.
func (s *Service) PerformStocktake(ctx context.Context, actor auth.Actor, req *StocktakeRequest) (*BatchResult, error) {
	lines := make([]batchLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = batchLine{itemType: item.ItemType, itemID: item.ItemID, value: item.ActualStock}
	}

	op := batchOp{
		name:         "stocktake",
		recordType:   RecordTypeStocktake,
		movementType: MovementTypeStocktake,
		plan:         planStocktake,
	}
	return s.apply(ctx, actor, op, lines, defaultString(req.Reason, "stocktake"), req.Note, req.Atomic)
}

// UnifiedInventoryUpdate applies signed deltas, clamping stock at zero
func (s *Service) UnifiedInventoryUpdate(ctx context.Context, actor auth.Actor, req *UnifiedUpdateRequest) (*BatchResult, error) {
	reason := defaultString(req.Reason, "manual adjustment")
	lines := make([]batchLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = batchLine{
			itemType: item.ItemType,
			itemID:   item.ItemID,
			value:    item.Delta,
			reason:   defaultString(item.Reason, reason),
		}
	}

	op := batchOp{
		name:         "unified_update",
		recordType:   RecordTypeUnifiedUpdate,
		movementType: MovementTypeAdjustment,
		plan:         planDelta,
	}
	return s.apply(ctx, actor, op, lines, reason, req.Note, req.Atomic)
}

func planStocktake(line batchLine, previous float64) (float64, bool, *apperror.Error) {
	if line.value == nil {
		return 0, false, apperror.New(apperror.CodeMissingField, "actualStock is required")
	}
	actual := *line.value
	if math.IsNaN(actual) || math.IsInf(actual, 0) || actual < 0 {
		return 0, false, apperror.New(apperror.CodeOutOfRange, "actual stock must be a non-negative number")
	}
	variance := decimal.NewFromFloat(actual).Sub(decimal.NewFromFloat(previous)).Abs()
	if variance.LessThanOrEqual(stocktakeTolerance) {
		return previous, false, nil
	}
	return formula.RoundTo(actual, stockPlaces), true, nil
}

func planDelta(line batchLine, previous float64) (float64, bool, *apperror.Error) {
	if line.value == nil {
		return 0, false, apperror.New(apperror.CodeMissingField, "delta is required")
	}
	delta := *line.value
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, false, apperror.InvalidInput("delta must be a finite number")
	}
	next := formula.RoundTo(previous+delta, stockPlaces)
	if next < 0 {
		next = 0
	}
	return next, true, nil
}

func (s *Service) apply(ctx context.Context, actor auth.Actor, op batchOp, lines []batchLine, reason, note string, atomic bool) (*BatchResult, error) {
	if len(lines) == 0 {
		return nil, apperror.New(apperror.CodeMissingField, "items are required")
	}
	if len(lines) > MaxBatchItems {
		return nil, apperror.New(apperror.CodeOutOfRange, "a batch may contain at most %d items", MaxBatchItems)
	}

	log := logger.FromContext(ctx)
	result := &BatchResult{Processed: len(lines), Items: make([]ItemResult, 0, len(lines))}
	var writes []pendingWrite

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Read every referenced row before writing anything
		rows, err := loadRows(tx, lines)
		if err != nil {
			return err
		}

		for _, line := range lines {
			item := ItemResult{ItemType: line.itemType, ItemID: line.itemID}

			row, itemErr := lookupRow(rows, line)
			if itemErr == nil {
				item.ItemCode, item.ItemName = row.code, row.name
				item.PreviousStock = row.stock

				var next float64
				var adjusted bool
				next, adjusted, itemErr = op.plan(line, row.stock)
				if itemErr == nil {
					item.NewStock = next
					item.Variance = formula.RoundTo(next-row.stock, stockPlaces)
					item.Adjusted = adjusted
					item.Success = true
					if op.recordType == RecordTypeStocktake && line.value != nil {
						item.Variance = formula.RoundTo(*line.value-row.stock, stockPlaces)
					}
					if adjusted {
						writes = append(writes, pendingWrite{line: line, row: row, previous: row.stock, next: next})
						row.stock = next
					}
				}
			}

			if itemErr != nil {
				item.Error = &ItemError{Code: itemErr.Code, Message: itemErr.Message}
				result.FailureCount++
			} else {
				result.SuccessCount++
				if item.Adjusted {
					result.Adjusted++
				}
			}
			result.Items = append(result.Items, item)
		}

		for _, w := range writes {
			result.TotalVariance += w.next - w.previous
		}
		result.TotalVariance = formula.RoundTo(result.TotalVariance, stockPlaces)

		if atomic && result.FailureCount > 0 {
			return apperror.New(apperror.CodeInvalidOperation,
				"%d of %d items failed, nothing was applied", result.FailureCount, result.Processed).
				WithDetails(map[string]interface{}{"items": result.Items})
		}

		record := InventoryRecord{
			RecordType:    op.recordType,
			Reason:        reason,
			Note:          note,
			OperatorID:    actor.UserID,
			OperatorName:  actor.Name,
			TotalItems:    result.Processed,
			AdjustedItems: result.Adjusted,
			SuccessCount:  result.SuccessCount,
			FailureCount:  result.FailureCount,
			TotalVariance: result.TotalVariance,
			Details:       make([]InventoryRecordDetail, 0, len(result.Items)),
		}
		for _, item := range result.Items {
			d := InventoryRecordDetail{
				ItemType:      item.ItemType,
				ItemID:        item.ItemID,
				ItemCode:      item.ItemCode,
				ItemName:      item.ItemName,
				PreviousStock: item.PreviousStock,
				NewStock:      item.NewStock,
				Variance:      item.Variance,
				Adjusted:      item.Adjusted,
				Success:       item.Success,
			}
			if item.Error != nil {
				d.Error = truncate(item.Error.Message, 255)
			}
			record.Details = append(record.Details, d)
		}
		if err := tx.Create(&record).Error; err != nil {
			return apperror.Database(err, "create inventory record")
		}
		result.RecordID = record.ID

		for _, w := range writes {
			if err := tx.Model(stockModel(w.line.itemType)).
				Where("id = ?", w.line.itemID).
				Update("current_stock", w.next).Error; err != nil {
				return apperror.Database(err, "update stock")
			}

			movement := InventoryMovement{
				ItemType:       w.line.itemType,
				ItemID:         w.line.itemID,
				ItemCode:       w.row.code,
				ItemName:       w.row.name,
				MovementType:   op.movementType,
				Reason:         truncate(defaultString(w.line.reason, reason), 255),
				QuantityChange: formula.RoundTo(w.next-w.previous, stockPlaces),
				PreviousStock:  w.previous,
				NewStock:       w.next,
				ReferenceType:  string(op.recordType),
				ReferenceID:    &record.ID,
				OperatorID:     actor.UserID,
				OperatorName:   actor.Name,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return apperror.Database(err, "create inventory movement")
			}
		}
		return nil
	})

	if result.FailureCount > 0 {
		metrics.InventoryItemFailuresTotal.WithLabelValues(op.name).Add(float64(result.FailureCount))
	}
	if err != nil {
		log.WithError(err).WithField("operation", op.name).Warn("Inventory batch rolled back")
		return nil, err
	}

	for _, w := range writes {
		metrics.InventoryAdjustmentsTotal.WithLabelValues(op.name, string(w.line.itemType)).Inc()
	}

	log.WithFields(logrus.Fields{
		"operation":      op.name,
		"record_id":      result.RecordID,
		"processed":      result.Processed,
		"adjusted":       result.Adjusted,
		"failures":       result.FailureCount,
		"total_variance": result.TotalVariance,
		"operator_id":    actor.UserID,
	}).Info("Inventory batch applied")

	return result, nil
}

// loadRows locks and reads every referenced row, one query per item type
func loadRows(tx *gorm.DB, lines []batchLine) (map[string]*stockRow, error) {
	ids := map[ItemType][]uint{}
	for _, line := range lines {
		if line.itemType.IsValid() && line.itemID != 0 {
			ids[line.itemType] = append(ids[line.itemType], line.itemID)
		}
	}

	rows := make(map[string]*stockRow)

	if fIDs := ids[bom.ItemTypeFragrance]; len(fIDs) > 0 {
		var fragrances []catalog.Fragrance
		if err := forUpdate(tx).Where("id IN ?", fIDs).Find(&fragrances).Error; err != nil {
			return nil, apperror.Database(err, "load fragrances")
		}
		for _, f := range fragrances {
			rows[rowKey(bom.ItemTypeFragrance, f.ID)] = &stockRow{code: f.Code, name: f.Name, stock: f.CurrentStock}
		}
	}

	if mIDs := ids[bom.ItemTypeMaterial]; len(mIDs) > 0 {
		var materials []catalog.Material
		if err := forUpdate(tx).Where("id IN ?", mIDs).Find(&materials).Error; err != nil {
			return nil, apperror.Database(err, "load materials")
		}
		for _, m := range materials {
			rows[rowKey(bom.ItemTypeMaterial, m.ID)] = &stockRow{code: m.Code, name: m.Name, stock: m.CurrentStock}
		}
	}

	return rows, nil
}

// forUpdate starts a fresh locked chain. Chains are not reusable across queries.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func lookupRow(rows map[string]*stockRow, line batchLine) (*stockRow, *apperror.Error) {
	if !line.itemType.IsValid() {
		return nil, apperror.InvalidInput("unknown item type %q", line.itemType)
	}
	if line.itemID == 0 {
		return nil, apperror.New(apperror.CodeMissingField, "itemId is required")
	}
	row, ok := rows[rowKey(line.itemType, line.itemID)]
	if !ok {
		return nil, apperror.NotFound("%s %d not found", line.itemType, line.itemID)
	}
	return row, nil
}

// GetLowStockItems lists fragrances and materials at or below their safety stock level
func (s *Service) GetLowStockItems(ctx context.Context) ([]LowStockItem, error) {
	db := s.db.WithContext(ctx)
	items := []LowStockItem{}

	var fragrances []catalog.Fragrance
	if err := db.Where("safety_stock_level > 0 AND current_stock <= safety_stock_level").
		Find(&fragrances).Error; err != nil {
		return nil, apperror.Database(err, "list low stock fragrances")
	}
	for _, f := range fragrances {
		items = append(items, lowStock(bom.ItemTypeFragrance, f.ID, f.Code, f.Name, f.Unit, f.CurrentStock, f.SafetyStockLevel))
	}

	var materials []catalog.Material
	if err := db.Where("safety_stock_level > 0 AND current_stock <= safety_stock_level").
		Find(&materials).Error; err != nil {
		return nil, apperror.Database(err, "list low stock materials")
	}
	for _, m := range materials {
		items = append(items, lowStock(bom.ItemTypeMaterial, m.ID, m.Code, m.Name, m.Unit, m.CurrentStock, m.SafetyStockLevel))
	}

	// largest shortfall first
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Shortfall != items[j].Shortfall {
			return items[i].Shortfall > items[j].Shortfall
		}
		return items[i].Code < items[j].Code
	})
	return items, nil
}

// ListInventoryRecords returns audit records, newest first, with their details
func (s *Service) ListInventoryRecords(ctx context.Context, req *ListRecordsRequest) (*RecordListResponse, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&InventoryRecord{})
	if req.RecordType != "" {
		if !req.RecordType.IsValid() {
			return nil, apperror.InvalidInput("unknown record type %q", req.RecordType)
		}
		query = query.Where("record_type = ?", req.RecordType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Database(err, "count inventory records")
	}

	var records []InventoryRecord
	if err := query.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, apperror.Database(err, "list inventory records")
	}

	return &RecordListResponse{
		Records:    records,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// ListInventoryMovements returns movements, newest first, optionally for one item
func (s *Service) ListInventoryMovements(ctx context.Context, req *ListMovementsRequest) (*MovementListResponse, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&InventoryMovement{})
	if req.ItemType != "" {
		if !req.ItemType.IsValid() {
			return nil, apperror.InvalidInput("unknown item type %q", req.ItemType)
		}
		query = query.Where("item_type = ?", req.ItemType)
	}
	if req.ItemID != 0 {
		if req.ItemType == "" {
			return nil, apperror.New(apperror.CodeMissingField, "itemType is required when itemId is set")
		}
		query = query.Where("item_id = ?", req.ItemID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Database(err, "count inventory movements")
	}

	var movements []InventoryMovement
	if err := query.Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, apperror.Database(err, "list inventory movements")
	}

	return &MovementListResponse{
		Movements:  movements,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

func lowStock(t ItemType, id uint, code, name, unit string, current, safety float64) LowStockItem {
	return LowStockItem{
		ItemType:         t,
		ItemID:           id,
		Code:             code,
		Name:             name,
		Unit:             unit,
		CurrentStock:     current,
		SafetyStockLevel: safety,
		Shortfall:        formula.RoundTo(safety-current, stockPlaces),
	}
}

func stockModel(t ItemType) interface{} {
	if t == bom.ItemTypeFragrance {
		return &catalog.Fragrance{}
	}
	return &catalog.Material{}
}

func rowKey(t ItemType, id uint) string {
	return fmt.Sprintf("%s:%d", t, id)
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
