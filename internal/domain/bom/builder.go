// Package bom builds the bill of materials for a production run from a
// product's formula snapshot.
package bom

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/your-org/production-backend/internal/domain/formula"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

// NicotineDivisor converts target KG times nicotine mg into KG of nicotine base
const NicotineDivisor = 250.0

// quantityPlaces is the rounding precision for computed quantities (grams on a KG scale)
const quantityPlaces = 3

const defaultUnit = "KG"

// ItemType identifies which stock table a line draws from
type ItemType string

const (
	ItemTypeFragrance ItemType = "fragrance"
	ItemTypeMaterial  ItemType = "material"
)

// IsValid reports whether the item type is known
func (t ItemType) IsValid() bool {
	return t == ItemTypeFragrance || t == ItemTypeMaterial
}

// Category is the role a line plays in the formula
type Category string

const (
	CategoryFragrance Category = "fragrance"
	CategoryPG        Category = "pg"
	CategoryVG        Category = "vg"
	CategoryNicotine  Category = "nicotine"
	CategorySpecific  Category = "specific"
	CategoryCommon    Category = "common"
	CategoryOther     Category = "other"
)

var categoryPriority = map[Category]int{
	CategoryFragrance: 0,
	CategoryPG:        1,
	CategoryVG:        2,
	CategoryNicotine:  3,
	CategorySpecific:  4,
	CategoryCommon:    5,
	CategoryOther:     6,
}

func priorityOf(c Category) int {
	if p, ok := categoryPriority[c]; ok {
		return p
	}
	return categoryPriority[CategoryOther]
}

// Snapshot is the denormalized product and fragrance formula a BOM is built from
type Snapshot struct {
	ProductID     uint    `json:"productId"`
	ProductCode   string  `json:"productCode"`
	ProductName   string  `json:"productName"`
	SeriesName    string  `json:"seriesName,omitempty"`
	FragranceID   uint    `json:"fragranceId"`
	FragranceCode string  `json:"fragranceCode"`
	FragranceName string  `json:"fragranceName"`
	Percentage    float64 `json:"percentage"`
	PGRatio       float64 `json:"pgRatio"`
	VGRatio       float64 `json:"vgRatio"`
	NicotineMg    float64 `json:"nicotineMg"`
}

// StockItem is a resolved inventory row with its current stock
type StockItem struct {
	Type         ItemType
	ID           uint
	Code         string
	Name         string
	Unit         string
	CurrentStock float64
}

// Catalog holds the inventory rows a BOM may reference
type Catalog struct {
	Fragrance *StockItem
	PG        *StockItem
	VG        *StockItem
	Nicotine  *StockItem
	Specific  []StockItem
	Common    []StockItem
}

// Line is one required material
type Line struct {
	ItemType     ItemType `json:"itemType"`
	ItemID       *uint    `json:"itemId,omitempty"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Quantity     float64  `json:"quantity"`
	UsedQuantity float64  `json:"usedQuantity"`
	Unit         string   `json:"unit"`
	Ratio        float64  `json:"ratio"`
	CurrentStock float64  `json:"currentStock"`
}

// Key is the canonical identity of the line, stable across rebuilds
func (l Line) Key() string {
	if l.ItemID != nil {
		return fmt.Sprintf("%s:%d", l.ItemType, *l.ItemID)
	}
	return fmt.Sprintf("%s:%s", l.Category, l.Code)
}

// Shortage describes a line whose usage exceeds the stock on hand
type Shortage struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	CurrentStock float64 `json:"currentStock"`
	UsedQuantity float64 `json:"usedQuantity"`
	Missing      float64 `json:"missing"`
}

// Build returns the ordered bill of materials for targetQty KG.
// Used quantities from prior are carried over by Key.
func Build(snap Snapshot, targetQty float64, cat Catalog, prior []Line) ([]Line, error) {
	if math.IsNaN(targetQty) || math.IsInf(targetQty, 0) || targetQty <= 0 {
		return nil, apperror.InvalidInput("target quantity must be greater than 0")
	}
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	used := make(map[string]float64, len(prior))
	for _, l := range prior {
		used[l.Key()] = l.UsedQuantity
	}

	lines := make([]Line, 0, 4+len(cat.Specific)+len(cat.Common))
	seen := make(map[string]bool)
	add := func(l Line) {
		k := l.Key()
		if seen[k] {
			return
		}
		seen[k] = true
		l.UsedQuantity = used[k]
		lines = append(lines, l)
	}

	add(fragranceLine(snap, targetQty, cat.Fragrance))
	add(diluentLine(CategoryPG, "PG", cat.PG, scaled(targetQty, snap.PGRatio), snap.PGRatio))
	add(diluentLine(CategoryVG, "VG", cat.VG, scaled(targetQty, snap.VGRatio), snap.VGRatio))

	if snap.NicotineMg > 0 {
		qty := formula.RoundTo(targetQty*snap.NicotineMg/NicotineDivisor, quantityPlaces)
		add(diluentLine(CategoryNicotine, "NICOTINE", cat.Nicotine, qty, 0))
	}

	for _, item := range cat.Specific {
		add(materialLine(CategorySpecific, item))
	}
	for _, item := range cat.Common {
		add(materialLine(CategoryCommon, item))
	}

	Sort(lines)
	return lines, nil
}

// Sort orders lines by category priority, then name, then code
func Sort(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		pi, pj := priorityOf(lines[i].Category), priorityOf(lines[j].Category)
		if pi != pj {
			return pi < pj
		}
		ni, nj := strings.ToLower(lines[i].Name), strings.ToLower(lines[j].Name)
		if ni != nj {
			return ni < nj
		}
		return lines[i].Code < lines[j].Code
	})
}

// HasUsage reports whether any line recorded a used quantity
func HasUsage(lines []Line) bool {
	for _, l := range lines {
		if l.UsedQuantity > 0 {
			return true
		}
	}
	return false
}

// Shortages lists lines where current stock minus used quantity is negative
func Shortages(lines []Line) []Shortage {
	var out []Shortage
	for _, l := range lines {
		remaining := l.CurrentStock - l.UsedQuantity
		if remaining < 0 {
			out = append(out, Shortage{
				Code:         l.Code,
				Name:         l.Name,
				CurrentStock: l.CurrentStock,
				UsedQuantity: l.UsedQuantity,
				Missing:      formula.RoundTo(-remaining, quantityPlaces),
			})
		}
	}
	return out
}

func validateSnapshot(snap Snapshot) error {
	if snap.FragranceID == 0 && strings.TrimSpace(snap.FragranceCode) == "" && strings.TrimSpace(snap.FragranceName) == "" {
		return apperror.New(apperror.CodeMissingField, "product has no fragrance formula data")
	}
	if snap.Percentage <= 0 {
		return apperror.New(apperror.CodeOutOfRange,
			"fragrance %s has no valid percentage (%v), fix the formula before calculating materials", snap.FragranceCode, snap.Percentage)
	}
	if snap.PGRatio < 0 || snap.VGRatio < 0 {
		return apperror.New(apperror.CodeOutOfRange, "fragrance %s has negative PG/VG ratios", snap.FragranceCode)
	}
	return nil
}

func scaled(target, ratio float64) float64 {
	return formula.RoundTo(target*ratio/100, quantityPlaces)
}

func fragranceLine(snap Snapshot, target float64, item *StockItem) Line {
	l := Line{
		ItemType: ItemTypeFragrance,
		Code:     snap.FragranceCode,
		Name:     snap.FragranceName,
		Category: CategoryFragrance,
		Quantity: scaled(target, snap.Percentage),
		Ratio:    snap.Percentage,
		Unit:     defaultUnit,
	}
	if snap.FragranceID != 0 {
		id := snap.FragranceID
		l.ItemID = &id
	}
	if item != nil {
		id := item.ID
		l.ItemID = &id
		l.CurrentStock = item.CurrentStock
		if item.Unit != "" {
			l.Unit = item.Unit
		}
		if l.Code == "" {
			l.Code = item.Code
		}
		if l.Name == "" {
			l.Name = item.Name
		}
	}
	return l
}

func diluentLine(cat Category, tag string, item *StockItem, qty, ratio float64) Line {
	l := Line{
		ItemType: ItemTypeMaterial,
		Code:     tag,
		Name:     tag,
		Category: cat,
		Quantity: qty,
		Ratio:    ratio,
		Unit:     defaultUnit,
	}
	if item != nil {
		id := item.ID
		l.ItemID = &id
		l.Code = item.Code
		l.Name = item.Name
		l.CurrentStock = item.CurrentStock
		if item.Unit != "" {
			l.Unit = item.Unit
		}
	}
	return l
}

func materialLine(cat Category, item StockItem) Line {
	id := item.ID
	unit := item.Unit
	if unit == "" {
		unit = defaultUnit
	}
	return Line{
		ItemType:     ItemTypeMaterial,
		ItemID:       &id,
		Code:         item.Code,
		Name:         item.Name,
		Category:     cat,
		Unit:         unit,
		CurrentStock: item.CurrentStock,
	}
}
