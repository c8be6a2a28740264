// internal/domain/workorder/entity.go
package workorder

import (
	"time"

	"github.com/your-org/production-backend/internal/domain/bom"
	"gorm.io/datatypes"
)

// Status represents the work order status
type Status string

const (
	StatusForecast   Status = "forecast"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusWarehoused Status = "warehoused"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusForecast, StatusInProgress, StatusCompleted, StatusWarehoused:
		return true
	}
	return false
}

// WorkOrder is a production job for one product
type WorkOrder struct {
	ID             uint                             `gorm:"primaryKey" json:"id"`
	Code           string                           `gorm:"uniqueIndex;not null;size:30" json:"code"`
	ProductID      uint                             `gorm:"not null;index" json:"productId"`
	Snapshot       datatypes.JSONType[bom.Snapshot] `gorm:"column:product_snapshot" json:"productSnapshot"`
	TargetQuantity float64                          `gorm:"not null" json:"targetQuantity"`
	ActualQuantity float64                          `gorm:"default:0" json:"actualQuantity"`
	Unit           string                           `gorm:"size:20;default:'KG'" json:"unit"`
	Status         Status                           `gorm:"not null;size:20;index" json:"status"`
	HasShortage    bool                             `gorm:"default:false" json:"hasShortage"`
	CompletedAt    *time.Time                       `json:"completedAt,omitempty"`
	WarehousedAt   *time.Time                       `json:"warehousedAt,omitempty"`
	CreatedBy      uint                             `gorm:"index" json:"createdBy"`
	CreatedByName  string                           `gorm:"size:100" json:"createdByName"`
	CreatedAt      time.Time                        `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time                        `json:"updatedAt"`

	// Relationships
	BOMItems    []BOMItem    `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"bomItems"`
	TimeRecords []TimeRecord `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"timeRecords"`
	Comments    []Comment    `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"comments"`
}

// Lines returns the BOM as builder lines
func (w *WorkOrder) Lines() []bom.Line {
	lines := make([]bom.Line, len(w.BOMItems))
	for i, item := range w.BOMItems {
		lines[i] = item.Line()
	}
	return lines
}

// BOMItem is one required material of a work order
type BOMItem struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	WorkOrderID  uint         `gorm:"not null;index" json:"workOrderId"`
	ItemType     bom.ItemType `gorm:"not null;size:20" json:"itemType"`
	ItemID       *uint        `gorm:"index" json:"itemId"`
	Code         string       `gorm:"size:50" json:"code"`
	Name         string       `gorm:"size:100" json:"name"`
	Category     bom.Category `gorm:"size:20" json:"category"`
	Quantity     float64      `json:"quantity"`
	UsedQuantity float64      `json:"usedQuantity"`
	Unit         string       `gorm:"size:20" json:"unit"`
	Ratio        float64      `json:"ratio"`
	CurrentStock float64      `json:"currentStock"`
	SortOrder    int          `json:"sortOrder"`
}

// TableName overrides the default table name
func (BOMItem) TableName() string {
	return "work_order_bom_items"
}

// Line converts the row to a builder line
func (b BOMItem) Line() bom.Line {
	return bom.Line{
		ItemType:     b.ItemType,
		ItemID:       b.ItemID,
		Code:         b.Code,
		Name:         b.Name,
		Category:     b.Category,
		Quantity:     b.Quantity,
		UsedQuantity: b.UsedQuantity,
		Unit:         b.Unit,
		Ratio:        b.Ratio,
		CurrentStock: b.CurrentStock,
	}
}

// TimeRecord is a block of labour booked against a work order
type TimeRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WorkOrderID   uint      `gorm:"not null;index" json:"workOrderId"`
	Personnel     string    `gorm:"not null;size:100" json:"personnel"`
	WorkDate      string    `gorm:"not null;size:10" json:"workDate"`
	StartTime     string    `gorm:"not null;size:5" json:"startTime"`
	EndTime       string    `gorm:"not null;size:5" json:"endTime"`
	Hours         float64   `json:"hours"`
	OvertimeHours float64   `json:"overtimeHours"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedBy     uint      `json:"createdBy"`
	CreatedByName string    `gorm:"size:100" json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName overrides the default table name
func (TimeRecord) TableName() string {
	return "work_order_time_records"
}

// Comment is a note left on a work order
type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WorkOrderID   uint      `gorm:"not null;index" json:"workOrderId"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	CreatedBy     uint      `gorm:"index" json:"createdBy"`
	CreatedByName string    `gorm:"size:100" json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName overrides the default table name
func (Comment) TableName() string {
	return "work_order_comments"
}

// Models lists every work order model in migration order
func Models() []interface{} {
	return []interface{}{
		&WorkOrder{},
		&BOMItem{},
		&TimeRecord{},
		&Comment{},
	}
}
