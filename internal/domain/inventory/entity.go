// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"github.com/your-org/production-backend/internal/domain/bom"
)

// ItemType identifies the stock table an inventory row lives in
type ItemType = bom.ItemType

// MovementType represents the type of inventory movement
type MovementType string

const (
	MovementTypeStocktake  MovementType = "stocktake"
	MovementTypeAdjustment MovementType = "adjustment"
)

// RecordType represents the kind of batch an audit record covers
type RecordType string

const (
	RecordTypeStocktake     RecordType = "stocktake"
	RecordTypeUnifiedUpdate RecordType = "unified_update"
)

// IsValid reports whether the record type is known
func (t RecordType) IsValid() bool {
	return t == RecordTypeStocktake || t == RecordTypeUnifiedUpdate
}

// InventoryMovement tracks a single stock change. Rows are never updated.
type InventoryMovement struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ItemType       ItemType     `gorm:"not null;size:20;index:idx_movement_item" json:"itemType"`
	ItemID         uint         `gorm:"not null;index:idx_movement_item" json:"itemId"`
	ItemCode       string       `gorm:"size:50" json:"itemCode"`
	ItemName       string       `gorm:"size:100" json:"itemName"`
	MovementType   MovementType `gorm:"not null;size:20;index" json:"movementType"`
	Reason         string       `gorm:"size:255" json:"reason"`
	QuantityChange float64      `gorm:"not null" json:"quantityChange"`
	PreviousStock  float64      `gorm:"not null" json:"previousStock"`
	NewStock       float64      `gorm:"not null" json:"newStock"`
	ReferenceType  string       `gorm:"size:30" json:"referenceType,omitempty"`
	ReferenceID    *uint        `gorm:"index" json:"referenceId,omitempty"`
	OperatorID     uint         `gorm:"index" json:"operatorId"`
	OperatorName   string       `gorm:"size:100" json:"operatorName"`
	CreatedAt      time.Time    `gorm:"index" json:"createdAt"`
}

// InventoryRecord is the parent audit record of one stocktake or update batch
type InventoryRecord struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	RecordType    RecordType `gorm:"not null;size:20;index" json:"recordType"`
	Reason        string     `gorm:"size:255" json:"reason"`
	Note          string     `gorm:"type:text" json:"note"`
	OperatorID    uint       `gorm:"index" json:"operatorId"`
	OperatorName  string     `gorm:"size:100" json:"operatorName"`
	TotalItems    int        `json:"totalItems"`
	AdjustedItems int        `json:"adjustedItems"`
	SuccessCount  int        `json:"successCount"`
	FailureCount  int        `json:"failureCount"`
	TotalVariance float64    `json:"totalVariance"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Relationships
	Details []InventoryRecordDetail `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

// InventoryRecordDetail is one line of an audit record
type InventoryRecordDetail struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	RecordID      uint     `gorm:"not null;index" json:"recordId"`
	ItemType      ItemType `gorm:"size:20" json:"itemType"`
	ItemID        uint     `json:"itemId"`
	ItemCode      string   `gorm:"size:50" json:"itemCode"`
	ItemName      string   `gorm:"size:100" json:"itemName"`
	PreviousStock float64  `json:"previousStock"`
	NewStock      float64  `json:"newStock"`
	Variance      float64  `json:"variance"`
	Adjusted      bool     `json:"adjusted"`
	Success       bool     `json:"success"`
	Error         string   `gorm:"size:255" json:"error,omitempty"`
}

// Models lists every inventory model in migration order
func Models() []interface{} {
	return []interface{}{
		&InventoryRecord{},
		&InventoryRecordDetail{},
		&InventoryMovement{},
	}
}
