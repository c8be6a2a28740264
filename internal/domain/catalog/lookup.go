package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/your-org/production-backend/internal/domain/bom"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

const diluentCacheKey = "catalog:diluents:v1"

// Cache is the JSON cache used for catalog lookups
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type nopCache struct{}

func (nopCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) SetJSON(context.Context, string, any) error         { return nil }
func (nopCache) Delete(context.Context, ...string) error            { return nil }

// NopCache returns a cache that never stores anything
func NopCache() Cache { return nopCache{} }

// diluentIDs caches which material carries each diluent tag
type diluentIDs struct {
	PG       *uint `json:"pg,omitempty"`
	VG       *uint `json:"vg,omitempty"`
	Nicotine *uint `json:"nicotine,omitempty"`
}

// Lookup resolves products and inventory rows into BOM inputs
type Lookup struct {
	db    *gorm.DB
	cache Cache
}

// NewLookup creates a catalog lookup. A nil cache disables caching.
func NewLookup(db *gorm.DB, cache Cache) *Lookup {
	if cache == nil {
		cache = NopCache()
	}
	return &Lookup{db: db, cache: cache}
}

// LoadProduct loads a product with its fragrance and series
func (l *Lookup) LoadProduct(ctx context.Context, productID uint) (*Product, error) {
	var product Product
	err := l.db.WithContext(ctx).
		Preload("Fragrance").
		Preload("Series").
		First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("product %d not found", productID)
	}
	if err != nil {
		return nil, apperror.Database(err, "load product")
	}
	return &product, nil
}

// Snapshot captures the product and its current fragrance formula
func Snapshot(product *Product) (bom.Snapshot, error) {
	if product.Fragrance == nil {
		return bom.Snapshot{}, apperror.New(apperror.CodeMissingField, "product %s has no fragrance assigned", product.Code)
	}
	snap := bom.Snapshot{
		ProductID:     product.ID,
		ProductCode:   product.Code,
		ProductName:   product.Name,
		FragranceID:   product.Fragrance.ID,
		FragranceCode: product.Fragrance.Code,
		FragranceName: product.Fragrance.Name,
		Percentage:    product.Fragrance.Percentage,
		PGRatio:       product.Fragrance.PGRatio,
		VGRatio:       product.Fragrance.VGRatio,
		NicotineMg:    product.NicotineMg,
	}
	if product.Series != nil {
		snap.SeriesName = product.Series.Name
	}
	return snap, nil
}

// ResolveCatalog reads every inventory row a BOM for snap may reference,
// with fresh current stock.
func (l *Lookup) ResolveCatalog(ctx context.Context, snap bom.Snapshot) (bom.Catalog, error) {
	var cat bom.Catalog
	db := l.db.WithContext(ctx)

	if snap.FragranceID != 0 {
		var f Fragrance
		err := db.First(&f, snap.FragranceID).Error
		switch {
		case err == nil:
			cat.Fragrance = fragranceItem(&f)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return cat, apperror.Database(err, "load fragrance")
		}
	}

	ids, err := l.diluents(ctx)
	if err != nil {
		return cat, err
	}
	if cat.PG, err = l.materialItem(ctx, ids.PG); err != nil {
		return cat, err
	}
	if cat.VG, err = l.materialItem(ctx, ids.VG); err != nil {
		return cat, err
	}
	if cat.Nicotine, err = l.materialItem(ctx, ids.Nicotine); err != nil {
		return cat, err
	}

	if snap.ProductID != 0 {
		var product Product
		err := db.Preload("SpecificMaterials").
			Preload("Series.CommonMaterials").
			First(&product, snap.ProductID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return cat, apperror.Database(err, "load product materials")
		}
		for i := range product.SpecificMaterials {
			cat.Specific = append(cat.Specific, materialStock(&product.SpecificMaterials[i]))
		}
		if product.Series != nil {
			for i := range product.Series.CommonMaterials {
				cat.Common = append(cat.Common, materialStock(&product.Series.CommonMaterials[i]))
			}
		}
	}

	return cat, nil
}

// InvalidateDiluents drops the cached diluent lookup
func (l *Lookup) InvalidateDiluents(ctx context.Context) {
	if err := l.cache.Delete(ctx, diluentCacheKey); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("failed to invalidate diluent cache")
	}
}

func (l *Lookup) diluents(ctx context.Context) (diluentIDs, error) {
	var ids diluentIDs
	log := logger.FromContext(ctx)

	if hit, err := l.cache.GetJSON(ctx, diluentCacheKey, &ids); err != nil {
		log.WithError(err).Warn("diluent cache read failed")
	} else if hit {
		return ids, nil
	}

	var materials []Material
	err := l.db.WithContext(ctx).
		Where("LOWER(category) IN ? OR LOWER(sub_category) IN ?",
			[]string{"pg", "vg", "nicotine"}, []string{"pg", "vg", "nicotine"}).
		Order("id ASC").
		Find(&materials).Error
	if err != nil {
		return ids, apperror.Database(err, "look up diluent materials")
	}

	// lowest id wins when several materials share a tag
	sort.SliceStable(materials, func(i, j int) bool { return materials[i].ID < materials[j].ID })
	for i := range materials {
		m := &materials[i]
		id := m.ID
		switch {
		case ids.PG == nil && m.HasTag(TagPG):
			ids.PG = &id
		case ids.VG == nil && m.HasTag(TagVG):
			ids.VG = &id
		case ids.Nicotine == nil && m.HasTag(TagNicotine):
			ids.Nicotine = &id
		}
	}

	if err := l.cache.SetJSON(ctx, diluentCacheKey, ids); err != nil {
		log.WithError(err).Warn("diluent cache write failed")
	}
	return ids, nil
}

func (l *Lookup) materialItem(ctx context.Context, id *uint) (*bom.StockItem, error) {
	if id == nil {
		return nil, nil
	}
	var m Material
	err := l.db.WithContext(ctx).First(&m, *id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// stale cache entry
		l.InvalidateDiluents(ctx)
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Database(err, fmt.Sprintf("load material %d", *id))
	}
	item := materialStock(&m)
	return &item, nil
}

func fragranceItem(f *Fragrance) *bom.StockItem {
	return &bom.StockItem{
		Type:         bom.ItemTypeFragrance,
		ID:           f.ID,
		Code:         f.Code,
		Name:         f.Name,
		Unit:         f.Unit,
		CurrentStock: f.CurrentStock,
	}
}

func materialStock(m *Material) bom.StockItem {
	return bom.StockItem{
		Type:         bom.ItemTypeMaterial,
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Unit:         m.Unit,
		CurrentStock: m.CurrentStock,
	}
}
