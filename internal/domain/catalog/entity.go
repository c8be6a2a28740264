// internal/domain/catalog/entity.go
package catalog

import (
	"strings"
	"time"
)

// ItemStatus represents the lifecycle status of a fragrance or product
type ItemStatus string

const (
	StatusActive     ItemStatus = "active"
	StatusStandby    ItemStatus = "standby"
	StatusDeprecated ItemStatus = "deprecated"
)

// IsValid reports whether the status is one of the known values
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusStandby, StatusDeprecated:
		return true
	}
	return false
}

// Diluent and nicotine tags carried by Material.Category or Material.SubCategory
const (
	TagPG       = "PG"
	TagVG       = "VG"
	TagNicotine = "nicotine"
)

// Supplier represents a vendor of materials and fragrances
type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Contact   string    `gorm:"size:100" json:"contact"`
	Phone     string    `gorm:"size:30" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fragrance represents a flavour concentrate and its diluent formula
type Fragrance struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Code             string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name             string     `gorm:"not null;size:100" json:"name"`
	Percentage       float64    `gorm:"default:0" json:"percentage"`
	PGRatio          float64    `gorm:"column:pg_ratio;default:0" json:"pgRatio"`
	VGRatio          float64    `gorm:"column:vg_ratio;default:0" json:"vgRatio"`
	CurrentStock     float64    `gorm:"default:0" json:"currentStock"`
	SafetyStockLevel float64    `gorm:"default:0" json:"safetyStockLevel"`
	Unit             string     `gorm:"size:20;default:'KG'" json:"unit"`
	CostPerUnit      float64    `gorm:"default:0" json:"costPerUnit"`
	SupplierID       *uint      `gorm:"index" json:"supplierId,omitempty"`
	Status           ItemStatus `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	// Relationships
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// Material represents a raw material or packaging item
type Material struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Code             string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name             string    `gorm:"not null;size:100" json:"name"`
	Category         string    `gorm:"size:50;index" json:"category"`
	SubCategory      string    `gorm:"size:50;index" json:"subCategory"`
	CurrentStock     float64   `gorm:"default:0" json:"currentStock"`
	SafetyStockLevel float64   `gorm:"default:0" json:"safetyStockLevel"`
	Unit             string    `gorm:"size:20" json:"unit"`
	CostPerUnit      float64   `gorm:"default:0" json:"costPerUnit"`
	SupplierID       *uint     `gorm:"index" json:"supplierId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Relationships
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// HasTag reports whether the material's category or sub-category equals tag, ignoring case
func (m *Material) HasTag(tag string) bool {
	return strings.EqualFold(strings.TrimSpace(m.Category), tag) ||
		strings.EqualFold(strings.TrimSpace(m.SubCategory), tag)
}

// ProductType groups product series
type ProductType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Color       string    `gorm:"size:20" json:"color"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductSeries is a product line sharing common materials
type ProductSeries struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name          string    `gorm:"not null;size:100" json:"name"`
	ProductTypeID *uint     `gorm:"index" json:"productTypeId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Relationships
	ProductType     *ProductType `gorm:"foreignKey:ProductTypeID" json:"productType,omitempty"`
	CommonMaterials []Material   `gorm:"many2many:series_common_materials" json:"commonMaterials,omitempty"`
}

// Product is a sellable liquid produced from a fragrance
type Product struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name        string     `gorm:"not null;size:100" json:"name"`
	SeriesID    *uint      `gorm:"index" json:"seriesId,omitempty"`
	FragranceID *uint      `gorm:"index" json:"fragranceId,omitempty"`
	NicotineMg  float64    `gorm:"default:0" json:"nicotineMg"`
	Status      ItemStatus `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relationships
	Series            *ProductSeries `gorm:"foreignKey:SeriesID" json:"series,omitempty"`
	Fragrance         *Fragrance     `gorm:"foreignKey:FragranceID" json:"fragrance,omitempty"`
	SpecificMaterials []Material     `gorm:"many2many:product_specific_materials" json:"specificMaterials,omitempty"`
}

// Models lists every catalog model in migration order
func Models() []interface{} {
	return []interface{}{
		&Supplier{},
		&Fragrance{},
		&Material{},
		&ProductType{},
		&ProductSeries{},
		&Product{},
	}
}
