package inventory

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/production-backend/internal/domain/bom"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var foreman = auth.Actor{UserID: 3, Name: "Lin", Role: auth.RoleForeman}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(catalog.Models()...))
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func seedMaterial(t *testing.T, db *gorm.DB, code string, stock, safety float64) catalog.Material {
	t.Helper()
	m := catalog.Material{Code: code, Name: "Material " + code, Unit: "KG", CurrentStock: stock, SafetyStockLevel: safety}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func seedFragrance(t *testing.T, db *gorm.DB, code string, stock, safety float64) catalog.Fragrance {
	t.Helper()
	f := catalog.Fragrance{Code: code, Name: "Fragrance " + code, Unit: "KG", Percentage: 30, PGRatio: 30, VGRatio: 40, CurrentStock: stock, SafetyStockLevel: safety}
	require.NoError(t, db.Create(&f).Error)
	return f
}

func stockOf(t *testing.T, db *gorm.DB, model interface{}, id uint) float64 {
	t.Helper()
	var stocks []float64
	require.NoError(t, db.Model(model).Where("id = ?", id).Pluck("current_stock", &stocks).Error)
	require.Len(t, stocks, 1)
	return stocks[0]
}

func f64(v float64) *float64 { return &v }

func TestPerformStocktake(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	steady := seedMaterial(t, db, "M-STEADY", 100, 0)
	short := seedMaterial(t, db, "M-SHORT", 50, 0)
	mint := seedFragrance(t, db, "F-MINT", 10, 0)

	result, err := svc.PerformStocktake(ctx, foreman, &StocktakeRequest{
		Items: []StocktakeItem{
			{ItemType: bom.ItemTypeMaterial, ItemID: steady.ID, ActualStock: f64(100.005)},
			{ItemType: bom.ItemTypeMaterial, ItemID: short.ID, ActualStock: f64(45)},
			{ItemType: bom.ItemTypeFragrance, ItemID: mint.ID, ActualStock: f64(12.5)},
		},
		Reason: "monthly count",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Adjusted)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount)
	assert.Equal(t, -2.5, result.TotalVariance)

	assert.False(t, result.Items[0].Adjusted)
	assert.Equal(t, 100.0, result.Items[0].NewStock)
	assert.True(t, result.Items[1].Adjusted)
	assert.Equal(t, -5.0, result.Items[1].Variance)

	assert.Equal(t, 100.0, stockOf(t, db, &catalog.Material{}, steady.ID))
	assert.Equal(t, 45.0, stockOf(t, db, &catalog.Material{}, short.ID))
	assert.Equal(t, 12.5, stockOf(t, db, &catalog.Fragrance{}, mint.ID))

	var movements []InventoryMovement
	require.NoError(t, db.Order("id ASC").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, MovementTypeStocktake, movements[0].MovementType)
	assert.Equal(t, 50.0, movements[0].PreviousStock)
	assert.Equal(t, 45.0, movements[0].NewStock)
	assert.Equal(t, -5.0, movements[0].QuantityChange)
	assert.Equal(t, "monthly count", movements[0].Reason)
	assert.Equal(t, "Lin", movements[0].OperatorName)
	require.NotNil(t, movements[0].ReferenceID)
	assert.Equal(t, result.RecordID, *movements[0].ReferenceID)

	var record InventoryRecord
	require.NoError(t, db.Preload("Details").First(&record, result.RecordID).Error)
	assert.Equal(t, RecordTypeStocktake, record.RecordType)
	assert.Equal(t, 3, record.TotalItems)
	assert.Equal(t, 2, record.AdjustedItems)
	assert.Len(t, record.Details, 3)
}

func TestStocktakeToleranceBoundary(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	edge := seedMaterial(t, db, "M-EDGE", 100, 0)
	over := seedMaterial(t, db, "M-OVER", 100, 0)

	result, err := svc.PerformStocktake(ctx, foreman, &StocktakeRequest{Items: []StocktakeItem{
		{ItemType: bom.ItemTypeMaterial, ItemID: edge.ID, ActualStock: f64(100.01)},
		{ItemType: bom.ItemTypeMaterial, ItemID: over.ID, ActualStock: f64(100.02)},
	}})
	require.NoError(t, err)
	assert.False(t, result.Items[0].Adjusted)
	assert.True(t, result.Items[1].Adjusted)
	assert.Equal(t, 100.02, stockOf(t, db, &catalog.Material{}, over.ID))

	var count int64
	require.NoError(t, db.Model(&InventoryMovement{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStocktakeVarianceUsesRawCount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	m := seedMaterial(t, db, "M-FINE", 10, 0)

	result, err := svc.PerformStocktake(context.Background(), foreman, &StocktakeRequest{Items: []StocktakeItem{
		{ItemType: bom.ItemTypeMaterial, ItemID: m.ID, ActualStock: f64(10.0104)},
	}})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].Adjusted)
	assert.Equal(t, 10.01, stockOf(t, db, &catalog.Material{}, m.ID))
}

func TestMixedBatchUsesEachItemTable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	pg := seedMaterial(t, db, "M-PG", 80, 0)
	vg := seedMaterial(t, db, "M-VG", 40, 0)
	mango := seedFragrance(t, db, "F-MANGO", 6, 0)
	require.Equal(t, pg.ID, mango.ID, "fragrance and material share an id")

	counted, err := svc.PerformStocktake(ctx, foreman, &StocktakeRequest{Items: []StocktakeItem{
		{ItemType: bom.ItemTypeFragrance, ItemID: mango.ID, ActualStock: f64(4)},
		{ItemType: bom.ItemTypeMaterial, ItemID: pg.ID, ActualStock: f64(75)},
		{ItemType: bom.ItemTypeMaterial, ItemID: vg.ID, ActualStock: f64(40)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, counted.SuccessCount)
	assert.Equal(t, 0, counted.FailureCount)
	assert.Equal(t, 2, counted.Adjusted)
	assert.Equal(t, -7.0, counted.TotalVariance)

	require.Len(t, counted.Items, 3)
	assert.Equal(t, "F-MANGO", counted.Items[0].ItemCode)
	assert.Equal(t, 6.0, counted.Items[0].PreviousStock)
	assert.Equal(t, "M-PG", counted.Items[1].ItemCode)
	assert.Equal(t, 80.0, counted.Items[1].PreviousStock)
	assert.Equal(t, "M-VG", counted.Items[2].ItemCode)
	assert.Equal(t, 40.0, counted.Items[2].PreviousStock)
	assert.False(t, counted.Items[2].Adjusted)

	updated, err := svc.UnifiedInventoryUpdate(ctx, foreman, &UnifiedUpdateRequest{Items: []UpdateItem{
		{ItemType: bom.ItemTypeMaterial, ItemID: pg.ID, Delta: f64(-10)},
		{ItemType: bom.ItemTypeFragrance, ItemID: mango.ID, Delta: f64(1.5)},
		{ItemType: bom.ItemTypeMaterial, ItemID: vg.ID, Delta: f64(5)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.SuccessCount)
	require.Len(t, updated.Items, 3)
	assert.Equal(t, "M-PG", updated.Items[0].ItemCode)
	assert.Equal(t, 75.0, updated.Items[0].PreviousStock)
	assert.Equal(t, "F-MANGO", updated.Items[1].ItemCode)
	assert.Equal(t, 4.0, updated.Items[1].PreviousStock)

	assert.Equal(t, 65.0, stockOf(t, db, &catalog.Material{}, pg.ID))
	assert.Equal(t, 45.0, stockOf(t, db, &catalog.Material{}, vg.ID))
	assert.Equal(t, 5.5, stockOf(t, db, &catalog.Fragrance{}, mango.ID))

	var materialMoves []InventoryMovement
	require.NoError(t, db.Where("item_type = ?", bom.ItemTypeMaterial).Order("id ASC").Find(&materialMoves).Error)
	require.Len(t, materialMoves, 3)
	for _, mv := range materialMoves {
		assert.True(t, strings.HasPrefix(mv.ItemCode, "M-"), mv.ItemCode)
	}
	assert.Equal(t, 80.0, materialMoves[0].PreviousStock)
	assert.Equal(t, 75.0, materialMoves[0].NewStock)
}

func TestUnifiedInventoryUpdateClampsAtZero(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	pg := seedMaterial(t, db, "M-PG", 10, 0)
	vg := seedMaterial(t, db, "M-VG", 3, 0)

	result, err := svc.UnifiedInventoryUpdate(ctx, foreman, &UnifiedUpdateRequest{
		Items: []UpdateItem{
			{ItemType: bom.ItemTypeMaterial, ItemID: pg.ID, Delta: f64(-25), Reason: "work order WO-1"},
			{ItemType: bom.ItemTypeMaterial, ItemID: vg.ID, Delta: f64(5)},
		},
		Reason: "consumption",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Adjusted)
	assert.Equal(t, 0.0, stockOf(t, db, &catalog.Material{}, pg.ID))
	assert.Equal(t, 8.0, stockOf(t, db, &catalog.Material{}, vg.ID))

	var movements []InventoryMovement
	require.NoError(t, db.Order("id ASC").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, MovementTypeAdjustment, movements[0].MovementType)
	assert.Equal(t, -10.0, movements[0].QuantityChange)
	assert.Equal(t, "work order WO-1", movements[0].Reason)
	assert.Equal(t, "consumption", movements[1].Reason)
}

func TestUnifiedUpdateSameItemTwice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	m := seedMaterial(t, db, "M-BTL", 10, 0)
	result, err := svc.UnifiedInventoryUpdate(context.Background(), foreman, &UnifiedUpdateRequest{Items: []UpdateItem{
		{ItemType: bom.ItemTypeMaterial, ItemID: m.ID, Delta: f64(1)},
		{ItemType: bom.ItemTypeMaterial, ItemID: m.ID, Delta: f64(2)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 11.0, result.Items[1].PreviousStock)
	assert.Equal(t, 13.0, stockOf(t, db, &catalog.Material{}, m.ID))
	assert.Equal(t, 3.0, result.TotalVariance)
}

func TestBatchFailurePolicy(t *testing.T) {
	items := func(id uint) []UpdateItem {
		return []UpdateItem{
			{ItemType: bom.ItemTypeMaterial, ItemID: id, Delta: f64(-2)},
			{ItemType: bom.ItemTypeMaterial, ItemID: 999, Delta: f64(1)},
			{ItemType: "widget", ItemID: id, Delta: f64(1)},
			{ItemType: bom.ItemTypeMaterial, ItemID: id},
		}
	}

	t.Run("best effort commits siblings", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db, nil)
		m := seedMaterial(t, db, "M-1", 10, 0)

		result, err := svc.UnifiedInventoryUpdate(context.Background(), foreman, &UnifiedUpdateRequest{Items: items(m.ID)})
		require.NoError(t, err)
		assert.Equal(t, 1, result.SuccessCount)
		assert.Equal(t, 3, result.FailureCount)
		assert.Equal(t, apperror.CodeNotFound, result.Items[1].Error.Code)
		assert.Equal(t, apperror.CodeInvalidInput, result.Items[2].Error.Code)
		assert.Equal(t, apperror.CodeMissingField, result.Items[3].Error.Code)
		assert.Equal(t, 8.0, stockOf(t, db, &catalog.Material{}, m.ID))

		var record InventoryRecord
		require.NoError(t, db.Preload("Details").First(&record, result.RecordID).Error)
		assert.Equal(t, 3, record.FailureCount)
		assert.Len(t, record.Details, 4)
		assert.NotEmpty(t, record.Details[1].Error)
	})

	t.Run("atomic rolls back everything", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db, nil)
		m := seedMaterial(t, db, "M-1", 10, 0)

		_, err := svc.UnifiedInventoryUpdate(context.Background(), foreman, &UnifiedUpdateRequest{Items: items(m.ID), Atomic: true})
		require.Error(t, err)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidOperation, appErr.Code)
		assert.NotNil(t, appErr.Details)

		assert.Equal(t, 10.0, stockOf(t, db, &catalog.Material{}, m.ID))
		var records, movements int64
		require.NoError(t, db.Model(&InventoryRecord{}).Count(&records).Error)
		require.NoError(t, db.Model(&InventoryMovement{}).Count(&movements).Error)
		assert.Zero(t, records)
		assert.Zero(t, movements)
	})

	t.Run("negative count is an item failure", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db, nil)
		m := seedMaterial(t, db, "M-1", 10, 0)

		result, err := svc.PerformStocktake(context.Background(), foreman, &StocktakeRequest{Items: []StocktakeItem{
			{ItemType: bom.ItemTypeMaterial, ItemID: m.ID, ActualStock: f64(-1)},
		}})
		require.NoError(t, err)
		assert.Equal(t, apperror.CodeOutOfRange, result.Items[0].Error.Code)
		assert.Equal(t, 10.0, stockOf(t, db, &catalog.Material{}, m.ID))
	})

	t.Run("empty batch", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db, nil)
		_, err := svc.PerformStocktake(context.Background(), foreman, &StocktakeRequest{})
		assert.True(t, apperror.HasCode(err, apperror.CodeMissingField))
	})
}

func TestGetLowStockItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	seedMaterial(t, db, "M-LOW", 2, 10)
	seedMaterial(t, db, "M-EQUAL", 5, 5)
	seedMaterial(t, db, "M-FINE", 50, 10)
	seedMaterial(t, db, "M-UNSET", 0, 0)
	seedFragrance(t, db, "F-LOW", 1, 4)

	items, err := svc.GetLowStockItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "M-LOW", items[0].Code)
	assert.Equal(t, 8.0, items[0].Shortfall)
	assert.Equal(t, "F-LOW", items[1].Code)
	assert.Equal(t, bom.ItemTypeFragrance, items[1].ItemType)
	assert.Equal(t, "M-EQUAL", items[2].Code)
}

func TestListRecordsAndMovements(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	a := seedMaterial(t, db, "M-A", 10, 0)
	b := seedMaterial(t, db, "M-B", 10, 0)

	for i := 0; i < 3; i++ {
		_, err := svc.UnifiedInventoryUpdate(ctx, foreman, &UnifiedUpdateRequest{Items: []UpdateItem{
			{ItemType: bom.ItemTypeMaterial, ItemID: a.ID, Delta: f64(1)},
		}})
		require.NoError(t, err)
	}
	_, err := svc.PerformStocktake(ctx, foreman, &StocktakeRequest{Items: []StocktakeItem{
		{ItemType: bom.ItemTypeMaterial, ItemID: b.ID, ActualStock: f64(7)},
	}})
	require.NoError(t, err)

	page, err := svc.ListInventoryRecords(ctx, &ListRecordsRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Pagination.Total)
	assert.Len(t, page.Records, 2)
	assert.True(t, page.Pagination.HasNext)
	assert.Equal(t, RecordTypeStocktake, page.Records[0].RecordType)
	assert.Len(t, page.Records[0].Details, 1)

	stocktakes, err := svc.ListInventoryRecords(ctx, &ListRecordsRequest{RecordType: RecordTypeStocktake})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stocktakes.Pagination.Total)

	_, err = svc.ListInventoryRecords(ctx, &ListRecordsRequest{RecordType: "bogus"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	moves, err := svc.ListInventoryMovements(ctx, &ListMovementsRequest{ItemType: bom.ItemTypeMaterial, ItemID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), moves.Pagination.Total)
	assert.Equal(t, 13.0, moves.Movements[0].NewStock)

	_, err = svc.ListInventoryMovements(ctx, &ListMovementsRequest{ItemID: a.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingField))
}
