// internal/domain/workorder/service.go
package workorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/bom"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"github.com/your-org/production-backend/internal/pkg/metrics"
	"github.com/your-org/production-backend/internal/pkg/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxCommentLength = 1000
	codeAttempts     = 3
)

// Service handles work order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	lookup *catalog.Lookup
	now    func() time.Time
}

// NewService creates a new work order service
func NewService(db *gorm.DB, cfg *config.Config, lookup *catalog.Lookup) *Service {
	if lookup == nil {
		lookup = catalog.NewLookup(db, nil)
	}
	return &Service{
		db:     db,
		config: cfg,
		lookup: lookup,
		now:    time.Now,
	}
}

// CreateWorkOrderRequest represents work order creation data
type CreateWorkOrderRequest struct {
	ProductID      uint    `json:"productId" binding:"required"`
	TargetQuantity float64 `json:"targetQuantity" binding:"required"`
	Status         Status  `json:"status"`
}

// ListWorkOrdersRequest represents work order filters
type ListWorkOrdersRequest struct {
	Status    Status `json:"status"`
	ProductID uint   `json:"productId"`
	Search    string `json:"search"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// WorkOrderListResponse represents work orders with pagination
type WorkOrderListResponse struct {
	WorkOrders []WorkOrder           `json:"workOrders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// UsageUpdate sets the used quantity of one BOM item
type UsageUpdate struct {
	BOMItemID    uint     `json:"bomItemId"`
	UsedQuantity *float64 `json:"usedQuantity"`
}

// StatusChangeResult is a status change plus any completion warnings
type StatusChangeResult struct {
	WorkOrder *WorkOrder     `json:"workOrder"`
	From      Status         `json:"from"`
	To        Status         `json:"to"`
	Warnings  []bom.Shortage `json:"warnings"`
}

// TimeRecordRequest represents time record creation data
type TimeRecordRequest struct {
	Personnel string `json:"personnel" binding:"required"`
	WorkDate  string `json:"workDate" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Notes     string `json:"notes"`
}

// CreateWorkOrder snapshots the product formula and builds the initial BOM
func (s *Service) CreateWorkOrder(ctx context.Context, actor auth.Actor, req *CreateWorkOrderRequest) (*WorkOrder, error) {
	if err := validQuantity(req.TargetQuantity, false); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = StatusForecast
	}
	if status != StatusForecast && status != StatusInProgress {
		return nil, apperror.InvalidInput("a new work order must start as %s or %s", StatusForecast, StatusInProgress)
	}

	product, err := s.lookup.LoadProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	snap, err := catalog.Snapshot(product)
	if err != nil {
		return nil, err
	}
	cat, err := s.lookup.ResolveCatalog(ctx, snap)
	if err != nil {
		return nil, err
	}
	lines, err := bom.Build(snap, req.TargetQuantity, cat, nil)
	if err != nil {
		return nil, err
	}

	wo := &WorkOrder{
		Code:           s.generateCode(),
		ProductID:      product.ID,
		Snapshot:       datatypes.NewJSONType(snap),
		TargetQuantity: req.TargetQuantity,
		Unit:           s.defaultUnit(),
		Status:         status,
		CreatedBy:      actor.UserID,
		CreatedByName:  actor.Name,
		BOMItems:       itemsFromLines(lines),
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		if attempt > 0 {
			wo.Code = s.generateCode()
			wo.ID = 0
			for i := range wo.BOMItems {
				wo.BOMItems[i].ID = 0
			}
		}
		err = s.db.WithContext(ctx).Create(wo).Error
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperror.New(apperror.CodeDuplicate, "could not allocate a unique work order code")
	}
	if err != nil {
		return nil, apperror.Database(err, "create work order")
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"work_order_id":   wo.ID,
		"code":            wo.Code,
		"product_code":    snap.ProductCode,
		"target_quantity": wo.TargetQuantity,
		"bom_items":       len(lines),
	}).Info("Work order created")

	return s.GetWorkOrder(ctx, wo.ID)
}

// GetWorkOrder loads a work order with its BOM, time records and comments
func (s *Service) GetWorkOrder(ctx context.Context, id uint) (*WorkOrder, error) {
	var wo WorkOrder
	err := s.db.WithContext(ctx).
		Preload("BOMItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("TimeRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("work_date ASC, start_time ASC, id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&wo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("work order %d not found", id)
	}
	if err != nil {
		return nil, apperror.Database(err, "load work order")
	}
	return &wo, nil
}

// ListWorkOrders retrieves work orders with filtering and pagination
func (s *Service) ListWorkOrders(ctx context.Context, req *ListWorkOrdersRequest) (*WorkOrderListResponse, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&WorkOrder{})
	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, apperror.InvalidInput("unknown work order status %q", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.ProductID != 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Database(err, "count work orders")
	}

	workOrders := []WorkOrder{}
	if err := query.Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&workOrders).Error; err != nil {
		return nil, apperror.Database(err, "list work orders")
	}

	return &WorkOrderListResponse{
		WorkOrders: workOrders,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// UpdateTargetQuantity rescales the BOM, keeping recorded usage
func (s *Service) UpdateTargetQuantity(ctx context.Context, id uint, target float64) (*WorkOrder, error) {
	if err := validQuantity(target, false); err != nil {
		return nil, err
	}

	current, err := s.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := current.Snapshot.Data()
	cat, err := s.lookup.ResolveCatalog(ctx, snap)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wo, err := lockWorkOrder(tx, id)
		if err != nil {
			return err
		}
		if !wo.Status.IsEditable() {
			return apperror.New(apperror.CodeInvalidOperation, "work order %s is warehoused and cannot be edited", wo.Code)
		}
		lines, err := bom.Build(snap, target, cat, wo.Lines())
		if err != nil {
			return err
		}
		if err := syncBOM(tx, wo, lines); err != nil {
			return err
		}
		if err := tx.Model(wo).Update("target_quantity", target).Error; err != nil {
			return apperror.Database(err, "update target quantity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"work_order_id":   id,
		"target_quantity": target,
	}).Info("Work order target updated")

	return s.GetWorkOrder(ctx, id)
}

// UpdateActualQuantity records the produced quantity
func (s *Service) UpdateActualQuantity(ctx context.Context, id uint, actual float64) (*WorkOrder, error) {
	if err := validQuantity(actual, true); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wo, err := lockWorkOrder(tx, id)
		if err != nil {
			return err
		}
		if !wo.Status.IsEditable() {
			return apperror.New(apperror.CodeInvalidOperation, "work order %s is warehoused and cannot be edited", wo.Code)
		}
		if err := tx.Model(wo).Update("actual_quantity", actual).Error; err != nil {
			return apperror.Database(err, "update actual quantity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetWorkOrder(ctx, id)
}

// ReloadBOM rebuilds the BOM from the stored snapshot, or from the product's
// current formula when refreshSnapshot is set, re-reading every stock level.
func (s *Service) ReloadBOM(ctx context.Context, id uint, refreshSnapshot bool) (*WorkOrder, error) {
	current, err := s.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsEditable() {
		return nil, apperror.New(apperror.CodeInvalidOperation, "work order %s is warehoused and cannot be edited", current.Code)
	}

	snap := current.Snapshot.Data()
	if refreshSnapshot {
		product, err := s.lookup.LoadProduct(ctx, current.ProductID)
		if err != nil {
			return nil, err
		}
		if snap, err = catalog.Snapshot(product); err != nil {
			return nil, err
		}
	}
	cat, err := s.lookup.ResolveCatalog(ctx, snap)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wo, err := lockWorkOrder(tx, id)
		if err != nil {
			return err
		}
		if !wo.Status.IsEditable() {
			return apperror.New(apperror.CodeInvalidOperation, "work order %s is warehoused and cannot be edited", wo.Code)
		}
		lines, err := bom.Build(snap, wo.TargetQuantity, cat, wo.Lines())
		if err != nil {
			return err
		}
		if err := syncBOM(tx, wo, lines); err != nil {
			return err
		}
		if refreshSnapshot {
			if err := tx.Model(wo).Update("product_snapshot", datatypes.NewJSONType(snap)).Error; err != nil {
				return apperror.Database(err, "update product snapshot")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"work_order_id":    id,
		"refresh_snapshot": refreshSnapshot,
	}).Info("Work order BOM reloaded")

	return s.GetWorkOrder(ctx, id)
}

// UpdateUsedQuantities records material consumption on BOM items
func (s *Service) UpdateUsedQuantities(ctx context.Context, id uint, updates []UsageUpdate) (*WorkOrder, error) {
	if len(updates) == 0 {
		return nil, apperror.New(apperror.CodeMissingField, "usage updates are required")
	}
	for _, u := range updates {
		if u.UsedQuantity == nil {
			return nil, apperror.New(apperror.CodeMissingField, "usedQuantity is required for BOM item %d", u.BOMItemID)
		}
		if err := validQuantity(*u.UsedQuantity, true); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wo, err := lockWorkOrder(tx, id)
		if err != nil {
			return err
		}
		if !wo.Status.IsEditable() {
			return apperror.New(apperror.CodeInvalidOperation, "work order %s is warehoused and cannot be edited", wo.Code)
		}

		owned := make(map[uint]bool, len(wo.BOMItems))
		for _, item := range wo.BOMItems {
			owned[item.ID] = true
		}
		for _, u := range updates {
			if !owned[u.BOMItemID] {
				return apperror.NotFound("BOM item %d not found on work order %s", u.BOMItemID, wo.Code)
			}
			if err := tx.Model(&BOMItem{}).
				Where("id = ? AND work_order_id = ?", u.BOMItemID, wo.ID).
				Update("used_quantity", *u.UsedQuantity).Error; err != nil {
				return apperror.Database(err, "update used quantity")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetWorkOrder(ctx, id)
}

// ChangeStatus moves a work order through its lifecycle. Completion requires
// recorded usage and reports shortages as warnings. Stock is not debited.
func (s *Service) ChangeStatus(ctx context.Context, actor auth.Actor, id uint, to Status) (*StatusChangeResult, error) {
	result := &StatusChangeResult{To: to, Warnings: []bom.Shortage{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wo, err := lockWorkOrder(tx, id)
		if err != nil {
			return err
		}
		result.From = wo.Status
		if err := CanTransition(wo.Status, to); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": to}
		now := s.now().UTC()

		switch to {
		case StatusCompleted:
			if err := refreshStock(tx, wo.BOMItems); err != nil {
				return err
			}
			warnings, err := CheckCompletion(wo.Lines())
			if err != nil {
				return err
			}
			result.Warnings = warnings
			updates["has_shortage"] = len(warnings) > 0
			updates["completed_at"] = now
		case StatusWarehoused:
			updates["warehoused_at"] = now
		case StatusForecast, StatusInProgress:
			updates["completed_at"] = nil
		}

		if err := tx.Model(wo).Updates(updates).Error; err != nil {
			return apperror.Database(err, "update work order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkOrderTransitionsTotal.WithLabelValues(string(result.From), string(to)).Inc()
	if len(result.Warnings) > 0 {
		metrics.WorkOrderShortagesTotal.Inc()
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"work_order_id": id,
		"from":          result.From,
		"to":            to,
		"shortages":     len(result.Warnings),
		"user_id":       actor.UserID,
	}).Info("Work order status changed")

	wo, err := s.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	result.WorkOrder = wo
	return result, nil
}

// AddComment adds a comment. Comments stay writable in every status.
func (s *Service) AddComment(ctx context.Context, actor auth.Actor, id uint, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.New(apperror.CodeMissingField, "comment text is required")
	}
	if len([]rune(text)) > maxCommentLength {
		return nil, apperror.New(apperror.CodeOutOfRange, "comment cannot exceed %d characters", maxCommentLength)
	}
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}

	comment := &Comment{
		WorkOrderID:   id,
		Text:          text,
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Name,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, apperror.Database(err, "create comment")
	}
	return comment, nil
}

// DeleteComment removes a comment. Workers may only delete their own.
func (s *Service) DeleteComment(ctx context.Context, actor auth.Actor, id, commentID uint) error {
	var comment Comment
	err := s.db.WithContext(ctx).Where("id = ? AND work_order_id = ?", commentID, id).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("comment %d not found on work order %d", commentID, id)
	}
	if err != nil {
		return apperror.Database(err, "load comment")
	}
	if comment.CreatedBy != actor.UserID && !actor.Role.AtLeast(auth.RoleForeman) {
		return apperror.New(apperror.CodePermissionDenied, "only the author or a foreman can delete this comment")
	}
	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return apperror.Database(err, "delete comment")
	}
	return nil
}

// AddTimeRecord books labour against a work order
func (s *Service) AddTimeRecord(ctx context.Context, actor auth.Actor, id uint, req *TimeRecordRequest) (*TimeRecord, error) {
	personnel := strings.TrimSpace(req.Personnel)
	if personnel == "" {
		return nil, apperror.New(apperror.CodeMissingField, "personnel is required")
	}
	if !validWorkDate(req.WorkDate) {
		return nil, apperror.InvalidInput("work date %q must be YYYY-MM-DD", req.WorkDate)
	}
	hours, overtime, err := WorkedHours(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	record := &TimeRecord{
		WorkOrderID:   id,
		Personnel:     personnel,
		WorkDate:      strings.TrimSpace(req.WorkDate),
		StartTime:     strings.TrimSpace(req.StartTime),
		EndTime:       strings.TrimSpace(req.EndTime),
		Hours:         hours,
		OvertimeHours: overtime,
		Notes:         req.Notes,
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Name,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wo, err := lockWorkOrder(tx, id)
		if err != nil {
			return err
		}
		if !wo.Status.IsEditable() {
			return apperror.New(apperror.CodeInvalidOperation, "work order %s is warehoused and cannot be edited", wo.Code)
		}
		if err := tx.Create(record).Error; err != nil {
			return apperror.Database(err, "create time record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteTimeRecord removes a time record from an editable work order
func (s *Service) DeleteTimeRecord(ctx context.Context, id, recordID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wo, err := lockWorkOrder(tx, id)
		if err != nil {
			return err
		}
		if !wo.Status.IsEditable() {
			return apperror.New(apperror.CodeInvalidOperation, "work order %s is warehoused and cannot be edited", wo.Code)
		}
		res := tx.Where("id = ? AND work_order_id = ?", recordID, id).Delete(&TimeRecord{})
		if res.Error != nil {
			return apperror.Database(res.Error, "delete time record")
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("time record %d not found on work order %s", recordID, wo.Code)
		}
		return nil
	})
}

func (s *Service) ensureExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&WorkOrder{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperror.Database(err, "load work order")
	}
	if count == 0 {
		return apperror.NotFound("work order %d not found", id)
	}
	return nil
}

// generateCode returns PREFIX-YYYYMMDD-XXXXXX
func (s *Service) generateCode() string {
	prefix := "WO"
	if s.config != nil && s.config.Production.WorkOrderCodePrefix != "" {
		prefix = s.config.Production.WorkOrderCodePrefix
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, s.now().Format("20060102"), suffix)
}

func (s *Service) defaultUnit() string {
	if s.config != nil && s.config.Production.DefaultUnit != "" {
		return s.config.Production.DefaultUnit
	}
	return "KG"
}

func lockWorkOrder(tx *gorm.DB, id uint) (*WorkOrder, error) {
	var wo WorkOrder
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).First(&wo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("work order %d not found", id)
	}
	if err != nil {
		return nil, apperror.Database(err, "load work order")
	}
	if err := tx.Where("work_order_id = ?", id).Order("sort_order ASC, id ASC").Find(&wo.BOMItems).Error; err != nil {
		return nil, apperror.Database(err, "load BOM items")
	}
	return &wo, nil
}

// syncBOM writes lines over the existing items, matching rows by line key so
// BOM item ids stay stable across rebuilds.
func syncBOM(tx *gorm.DB, wo *WorkOrder, lines []bom.Line) error {
	existing := make(map[string]BOMItem, len(wo.BOMItems))
	for _, item := range wo.BOMItems {
		existing[item.Line().Key()] = item
	}

	keep := make(map[uint]bool, len(lines))
	for i, item := range itemsFromLines(lines) {
		item.WorkOrderID = wo.ID
		if prev, ok := existing[lines[i].Key()]; ok && !keep[prev.ID] {
			item.ID = prev.ID
			keep[prev.ID] = true
			if err := tx.Save(&item).Error; err != nil {
				return apperror.Database(err, "update BOM item")
			}
			continue
		}
		if err := tx.Create(&item).Error; err != nil {
			return apperror.Database(err, "create BOM item")
		}
	}

	var stale []uint
	for _, item := range wo.BOMItems {
		if !keep[item.ID] {
			stale = append(stale, item.ID)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("id IN ?", stale).Delete(&BOMItem{}).Error; err != nil {
			return apperror.Database(err, "delete BOM items")
		}
	}
	return nil
}

// refreshStock re-reads current stock for every resolved item and stores it on the rows
func refreshStock(tx *gorm.DB, items []BOMItem) error {
	ids := map[bom.ItemType][]uint{}
	for _, item := range items {
		if item.ItemID != nil {
			ids[item.ItemType] = append(ids[item.ItemType], *item.ItemID)
		}
	}

	stock := map[string]float64{}
	type row struct {
		ID           uint
		CurrentStock float64
	}
	for itemType, list := range ids {
		var model interface{} = &catalog.Material{}
		if itemType == bom.ItemTypeFragrance {
			model = &catalog.Fragrance{}
		}
		var rows []row
		if err := tx.Model(model).Select("id, current_stock").Where("id IN ?", list).Scan(&rows).Error; err != nil {
			return apperror.Database(err, "refresh stock levels")
		}
		for _, r := range rows {
			stock[fmt.Sprintf("%s:%d", itemType, r.ID)] = r.CurrentStock
		}
	}

	for i := range items {
		item := &items[i]
		if item.ItemID == nil {
			continue
		}
		current, ok := stock[item.Line().Key()]
		if !ok {
			// the row was deleted after the BOM was built
			current = 0
		}
		if current == item.CurrentStock {
			continue
		}
		item.CurrentStock = current
		if err := tx.Model(&BOMItem{}).Where("id = ?", item.ID).Update("current_stock", current).Error; err != nil {
			return apperror.Database(err, "update BOM stock")
		}
	}
	return nil
}

func itemsFromLines(lines []bom.Line) []BOMItem {
	items := make([]BOMItem, len(lines))
	for i, l := range lines {
		items[i] = BOMItem{
			ItemType:     l.ItemType,
			ItemID:       l.ItemID,
			Code:         l.Code,
			Name:         l.Name,
			Category:     l.Category,
			Quantity:     l.Quantity,
			UsedQuantity: l.UsedQuantity,
			Unit:         l.Unit,
			Ratio:        l.Ratio,
			CurrentStock: l.CurrentStock,
			SortOrder:    i,
		}
	}
	return items
}

func validQuantity(v float64, allowZero bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperror.InvalidInput("quantity must be a finite number")
	}
	if v < 0 || (!allowZero && v == 0) {
		if allowZero {
			return apperror.New(apperror.CodeOutOfRange, "quantity cannot be negative")
		}
		return apperror.InvalidInput("quantity must be greater than 0")
	}
	return nil
}
