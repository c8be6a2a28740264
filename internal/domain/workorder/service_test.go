package workorder

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/bom"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	worker  = auth.Actor{UserID: 3, Name: "Wei", Role: auth.RoleWorker}
	worker2 = auth.Actor{UserID: 4, Name: "Lin", Role: auth.RoleWorker}
	foreman = auth.Actor{UserID: 2, Name: "Chen", Role: auth.RoleForeman}
)

type fixture struct {
	db        *gorm.DB
	svc       *Service
	product   catalog.Product
	fragrance catalog.Fragrance
	pg        catalog.Material
	box       catalog.Material
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(catalog.Models()...))
	require.NoError(t, db.AutoMigrate(Models()...))

	f := &fixture{db: db}
	f.pg = catalog.Material{Code: "M-PG", Name: "Propylene Glycol", Category: "PG", Unit: "KG", CurrentStock: 100}
	vg := catalog.Material{Code: "M-VG", Name: "Vegetable Glycerin", Category: "VG", Unit: "KG", CurrentStock: 100}
	nic := catalog.Material{Code: "M-NIC", Name: "Nicotine Base", Category: "nicotine", Unit: "KG", CurrentStock: 1}
	f.box = catalog.Material{Code: "M-BOX", Name: "Gift Box", Category: "packaging", Unit: "PCS", CurrentStock: 50}
	for _, m := range []*catalog.Material{&f.pg, &vg, &nic, &f.box} {
		require.NoError(t, db.Create(m).Error)
	}
	f.fragrance = catalog.Fragrance{Code: "F-MANGO", Name: "Mango", Percentage: 30, PGRatio: 30, VGRatio: 40, CurrentStock: 5, Unit: "KG"}
	require.NoError(t, db.Create(&f.fragrance).Error)
	f.product = catalog.Product{
		Code: "P-MANGO-3", Name: "Mango 3mg", FragranceID: &f.fragrance.ID, NicotineMg: 3,
		SpecificMaterials: []catalog.Material{f.box},
	}
	require.NoError(t, db.Create(&f.product).Error)

	cfg := &config.Config{Production: config.ProductionConfig{WorkOrderCodePrefix: "WO", DefaultUnit: "KG"}}
	f.svc = NewService(db, cfg, catalog.NewLookup(db, nil))
	f.svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) create(t *testing.T, target float64) *WorkOrder {
	t.Helper()
	wo, err := f.svc.CreateWorkOrder(context.Background(), foreman, &CreateWorkOrderRequest{
		ProductID:      f.product.ID,
		TargetQuantity: target,
	})
	require.NoError(t, err)
	return wo
}

func itemByCategory(t *testing.T, wo *WorkOrder, cat bom.Category) BOMItem {
	t.Helper()
	for _, item := range wo.BOMItems {
		if item.Category == cat {
			return item
		}
	}
	t.Fatalf("no %s line on work order %s", cat, wo.Code)
	return BOMItem{}
}

func TestCreateWorkOrder(t *testing.T) {
	f := setupFixture(t)
	wo := f.create(t, 10)

	assert.Regexp(t, `^WO-20260314-[0-9A-F]{6}$`, wo.Code)
	assert.Equal(t, StatusForecast, wo.Status)
	assert.Equal(t, "KG", wo.Unit)
	assert.Equal(t, foreman.UserID, wo.CreatedBy)
	assert.Equal(t, "P-MANGO-3", wo.Snapshot.Data().ProductCode)
	assert.Equal(t, 30.0, wo.Snapshot.Data().Percentage)

	require.Len(t, wo.BOMItems, 5)
	want := []struct {
		cat bom.Category
		qty float64
	}{
		{bom.CategoryFragrance, 3},
		{bom.CategoryPG, 3},
		{bom.CategoryVG, 4},
		{bom.CategoryNicotine, 0.12},
		{bom.CategorySpecific, 0},
	}
	for i, w := range want {
		assert.Equal(t, w.cat, wo.BOMItems[i].Category)
		assert.InDelta(t, w.qty, wo.BOMItems[i].Quantity, 1e-9)
		assert.Equal(t, i, wo.BOMItems[i].SortOrder)
	}
	assert.Equal(t, "M-PG", wo.BOMItems[1].Code)
	assert.Equal(t, 5.0, wo.BOMItems[0].CurrentStock)
}

func TestCreateWorkOrderValidation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWorkOrder(ctx, foreman, &CreateWorkOrderRequest{ProductID: f.product.ID, TargetQuantity: 0})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = f.svc.CreateWorkOrder(ctx, foreman, &CreateWorkOrderRequest{ProductID: f.product.ID, TargetQuantity: 5, Status: StatusCompleted})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = f.svc.CreateWorkOrder(ctx, foreman, &CreateWorkOrderRequest{ProductID: 999, TargetQuantity: 5})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

	require.NoError(t, f.db.Model(&f.fragrance).Update("percentage", 0).Error)
	_, err = f.svc.CreateWorkOrder(ctx, foreman, &CreateWorkOrderRequest{ProductID: f.product.ID, TargetQuantity: 5})
	assert.True(t, apperror.HasCode(err, apperror.CodeOutOfRange))
}

func TestUpdateTargetKeepsUsageAndItemIDs(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	wo := f.create(t, 10)
	frag := itemByCategory(t, wo, bom.CategoryFragrance)

	wo, err := f.svc.UpdateUsedQuantities(ctx, wo.ID, []UsageUpdate{{BOMItemID: frag.ID, UsedQuantity: ptr(2.5)}})
	require.NoError(t, err)

	wo, err = f.svc.UpdateTargetQuantity(ctx, wo.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20.0, wo.TargetQuantity)

	after := itemByCategory(t, wo, bom.CategoryFragrance)
	assert.Equal(t, frag.ID, after.ID)
	assert.Equal(t, 6.0, after.Quantity)
	assert.Equal(t, 2.5, after.UsedQuantity)
	assert.InDelta(t, 0.24, itemByCategory(t, wo, bom.CategoryNicotine).Quantity, 1e-9)
	assert.Len(t, wo.BOMItems, 5)

	_, err = f.svc.UpdateTargetQuantity(ctx, wo.ID, -1)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestUpdateUsedQuantitiesValidation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	wo := f.create(t, 10)
	other := f.create(t, 10)

	_, err := f.svc.UpdateUsedQuantities(ctx, wo.ID, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingField))

	_, err = f.svc.UpdateUsedQuantities(ctx, wo.ID, []UsageUpdate{{BOMItemID: wo.BOMItems[0].ID, UsedQuantity: ptr(-1.0)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeOutOfRange))

	_, err = f.svc.UpdateUsedQuantities(ctx, wo.ID, []UsageUpdate{{BOMItemID: other.BOMItems[0].ID, UsedQuantity: ptr(1.0)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestReloadBOM(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	wo := f.create(t, 10)

	require.NoError(t, f.db.Model(&f.fragrance).Updates(map[string]interface{}{
		"percentage": 20, "pg_ratio": 40, "current_stock": 12,
	}).Error)

	// the stored snapshot is kept, only stock is refreshed
	wo, err := f.svc.ReloadBOM(ctx, wo.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 30.0, wo.Snapshot.Data().Percentage)
	frag := itemByCategory(t, wo, bom.CategoryFragrance)
	assert.Equal(t, 3.0, frag.Quantity)
	assert.Equal(t, 12.0, frag.CurrentStock)

	wo, err = f.svc.ReloadBOM(ctx, wo.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 20.0, wo.Snapshot.Data().Percentage)
	assert.Equal(t, 2.0, itemByCategory(t, wo, bom.CategoryFragrance).Quantity)
	assert.Equal(t, 4.0, itemByCategory(t, wo, bom.CategoryPG).Quantity)
	assert.Equal(t, frag.ID, itemByCategory(t, wo, bom.CategoryFragrance).ID)
}

func TestChangeStatusLifecycle(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	wo := f.create(t, 10)

	res, err := f.svc.ChangeStatus(ctx, foreman, wo.ID, StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, StatusForecast, res.From)
	assert.Equal(t, StatusInProgress, res.WorkOrder.Status)

	_, err = f.svc.ChangeStatus(ctx, foreman, wo.ID, StatusCompleted)
	assert.True(t, apperror.HasCode(err, apperror.CodeRuleViolation))

	frag := itemByCategory(t, res.WorkOrder, bom.CategoryFragrance)
	pg := itemByCategory(t, res.WorkOrder, bom.CategoryPG)
	_, err = f.svc.UpdateUsedQuantities(ctx, wo.ID, []UsageUpdate{
		{BOMItemID: frag.ID, UsedQuantity: ptr(3.0)},
		{BOMItemID: pg.ID, UsedQuantity: ptr(3.0)},
	})
	require.NoError(t, err)

	// stock moved since the BOM was built; completion re-reads it
	require.NoError(t, f.db.Model(&f.fragrance).Update("current_stock", 1).Error)

	res, err = f.svc.ChangeStatus(ctx, foreman, wo.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.WorkOrder.Status)
	assert.True(t, res.WorkOrder.HasShortage)
	require.NotNil(t, res.WorkOrder.CompletedAt)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "F-MANGO", res.Warnings[0].Code)
	assert.Equal(t, 2.0, res.Warnings[0].Missing)

	// completion never debits stock
	var stock []float64
	require.NoError(t, f.db.Model(&catalog.Material{}).Where("id = ?", f.pg.ID).Pluck("current_stock", &stock).Error)
	assert.Equal(t, []float64{100}, stock)

	_, err = f.svc.ChangeStatus(ctx, foreman, wo.ID, StatusInProgress)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidOperation))

	res, err = f.svc.ChangeStatus(ctx, foreman, wo.ID, StatusWarehoused)
	require.NoError(t, err)
	require.NotNil(t, res.WorkOrder.WarehousedAt)

	_, err = f.svc.UpdateTargetQuantity(ctx, wo.ID, 12)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidOperation))
	_, err = f.svc.UpdateActualQuantity(ctx, wo.ID, 9.8)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidOperation))
	_, err = f.svc.ReloadBOM(ctx, wo.ID, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidOperation))

	_, err = f.svc.AddComment(ctx, worker, wo.ID, "boxed and shelved")
	assert.NoError(t, err)
}

func TestListWorkOrders(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	first := f.create(t, 10)
	f.create(t, 5)
	_, err := f.svc.ChangeStatus(ctx, foreman, first.ID, StatusInProgress)
	require.NoError(t, err)

	all, err := f.svc.ListWorkOrders(ctx, &ListWorkOrdersRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)
	assert.Len(t, all.WorkOrders, 2)

	inProgress, err := f.svc.ListWorkOrders(ctx, &ListWorkOrdersRequest{Status: StatusInProgress})
	require.NoError(t, err)
	require.Len(t, inProgress.WorkOrders, 1)
	assert.Equal(t, first.ID, inProgress.WorkOrders[0].ID)

	paged, err := f.svc.ListWorkOrders(ctx, &ListWorkOrdersRequest{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, paged.WorkOrders, 1)
	assert.False(t, paged.Pagination.HasNext)
	assert.True(t, paged.Pagination.HasPrev)

	_, err = f.svc.ListWorkOrders(ctx, &ListWorkOrdersRequest{Status: "paused"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestComments(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	wo := f.create(t, 10)

	_, err := f.svc.AddComment(ctx, worker, wo.ID, "   ")
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingField))
	_, err = f.svc.AddComment(ctx, worker, 999, "hello")
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

	c, err := f.svc.AddComment(ctx, worker, wo.ID, "  mixer 2 is slow  ")
	require.NoError(t, err)
	assert.Equal(t, "mixer 2 is slow", c.Text)
	assert.Equal(t, "Wei", c.CreatedByName)

	err = f.svc.DeleteComment(ctx, worker2, wo.ID, c.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodePermissionDenied))

	require.NoError(t, f.svc.DeleteComment(ctx, foreman, wo.ID, c.ID))
	err = f.svc.DeleteComment(ctx, foreman, wo.ID, c.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestTimeRecords(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	wo := f.create(t, 10)

	rec, err := f.svc.AddTimeRecord(ctx, worker, wo.ID, &TimeRecordRequest{
		Personnel: "Wei", WorkDate: "2026-03-14", StartTime: "08:00", EndTime: "17:30",
	})
	require.NoError(t, err)
	assert.Equal(t, 9.5, rec.Hours)
	assert.Equal(t, 1.5, rec.OvertimeHours)

	_, err = f.svc.AddTimeRecord(ctx, worker, wo.ID, &TimeRecordRequest{
		Personnel: "Wei", WorkDate: "14/03/2026", StartTime: "08:00", EndTime: "09:00",
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	loaded, err := f.svc.GetWorkOrder(ctx, wo.ID)
	require.NoError(t, err)
	require.Len(t, loaded.TimeRecords, 1)

	require.NoError(t, f.svc.DeleteTimeRecord(ctx, wo.ID, rec.ID))
	err = f.svc.DeleteTimeRecord(ctx, wo.ID, rec.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func ptr[T any](v T) *T { return &v }
