package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

func TestUpdateFragranceByCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig(), nil)
	ctx := context.Background()

	require.NoError(t, db.Create(&Supplier{Code: "SUP-1", Name: "Acme Aroma"}).Error)
	require.NoError(t, db.Create(&Fragrance{Code: "F-MINT", Name: "Mint", Percentage: 20, PGRatio: 40, VGRatio: 40}).Error)

	t.Run("percentage recomputes ratios", func(t *testing.T) {
		f, err := svc.UpdateFragranceByCode(ctx, &UpdateFragranceRequest{
			Code:         "F-MINT",
			Percentage:   ptr(35.7),
			SupplierCode: ptr("SUP-1"),
		})
		require.NoError(t, err)
		assert.Equal(t, 35.7, f.Percentage)
		assert.Equal(t, 24.3, f.PGRatio)
		assert.Equal(t, 40.0, f.VGRatio)
		require.NotNil(t, f.Supplier)
		assert.Equal(t, "SUP-1", f.Supplier.Code)
	})

	t.Run("explicit ratios must sum to 100", func(t *testing.T) {
		_, err := svc.UpdateFragranceByCode(ctx, &UpdateFragranceRequest{Code: "F-MINT", PGRatio: ptr(10.0)})
		assert.True(t, apperror.HasCode(err, apperror.CodeOutOfRange))

		f, err := svc.UpdateFragranceByCode(ctx, &UpdateFragranceRequest{Code: "F-MINT", PGRatio: ptr(14.3), VGRatio: ptr(50.0)})
		require.NoError(t, err)
		assert.Equal(t, 14.3, f.PGRatio)
		assert.Equal(t, 50.0, f.VGRatio)
	})

	t.Run("percentage out of range", func(t *testing.T) {
		_, err := svc.UpdateFragranceByCode(ctx, &UpdateFragranceRequest{Code: "F-MINT", Percentage: ptr(120.0)})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.UpdateFragranceByCode(ctx, &UpdateFragranceRequest{Code: "F-MINT", Status: ptr("retired")})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.UpdateFragranceByCode(ctx, &UpdateFragranceRequest{Code: "F-NOPE", Name: ptr("x")})
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	})
}

func TestFragranceRatiosDiagnoseAndFix(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig(), nil)
	ctx := context.Background()

	require.NoError(t, db.Create(&Fragrance{Code: "F-OK", Name: "Ok", Percentage: 30, PGRatio: 30, VGRatio: 40}).Error)
	require.NoError(t, db.Create(&Fragrance{Code: "F-BAD", Name: "Bad", Percentage: 35.7, PGRatio: 10, VGRatio: 10}).Error)
	require.NoError(t, db.Create(&Fragrance{Code: "F-HIGH", Name: "High", Percentage: 75, PGRatio: 5, VGRatio: 20}).Error)
	require.NoError(t, db.Create(&Fragrance{Code: "F-ZERO", Name: "Zero"}).Error)

	report, err := svc.DiagnoseFragranceRatios(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Correct)
	assert.Equal(t, 2, report.Mismatched)
	assert.Equal(t, 1, report.InvalidPercentage)

	result, err := svc.FixAllFragranceRatios(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Checked)
	assert.Equal(t, 2, result.Fixed)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Invalid, 1)
	assert.Equal(t, "F-ZERO", result.Invalid[0].Code)

	var bad, high Fragrance
	require.NoError(t, db.Where("code = ?", "F-BAD").First(&bad).Error)
	assert.Equal(t, 24.3, bad.PGRatio)
	assert.Equal(t, 40.0, bad.VGRatio)
	require.NoError(t, db.Where("code = ?", "F-HIGH").First(&high).Error)
	assert.Equal(t, 0.0, high.PGRatio)
	assert.Equal(t, 25.0, high.VGRatio)

	again, err := svc.FixAllFragranceRatios(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Fixed)
	assert.Empty(t, again.Changes)
}

func TestFragranceStatusDiagnoseAndFix(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig(), nil)
	ctx := context.Background()

	padded := Fragrance{Code: "F-PAD", Name: "Padded", Status: "Active "}
	used := Fragrance{Code: "F-USED", Name: "Used", Status: "bogus"}
	unused := Fragrance{Code: "F-UNUSED", Name: "Unused", Status: "bogus"}
	old := Fragrance{Code: "F-OLD", Name: "Old", Status: StatusDeprecated}
	for _, f := range []*Fragrance{&padded, &used, &unused, &old} {
		require.NoError(t, db.Create(f).Error)
	}
	require.NoError(t, db.Model(&unused).Update("status", "").Error)

	require.NoError(t, db.Create(&Product{Code: "P-1", Name: "Uses bogus", FragranceID: &used.ID, Status: StatusStandby}).Error)
	require.NoError(t, db.Create(&Product{Code: "P-2", Name: "Uses old", FragranceID: &old.ID, Status: StatusActive}).Error)

	report, err := svc.DiagnoseFragranceStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Len(t, report.Invalid, 3)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "F-OLD", report.Warnings[0].Code)
	assert.Equal(t, []string{"P-2"}, report.Warnings[0].ProductCodes)

	result, err := svc.FixFragranceStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Fixed)
	assert.Equal(t, []StatusFix{
		{Code: "F-PAD", From: "Active ", To: "active"},
		{Code: "F-UNUSED", From: "", To: "standby"},
		{Code: "F-USED", From: "bogus", To: "active"},
	}, result.Changes)

	statuses := map[string]ItemStatus{}
	var all []Fragrance
	require.NoError(t, db.Find(&all).Error)
	for _, f := range all {
		statuses[f.Code] = f.Status
	}
	assert.Equal(t, StatusActive, statuses["F-PAD"])
	assert.Equal(t, StatusActive, statuses["F-USED"])
	assert.Equal(t, StatusStandby, statuses["F-UNUSED"])
	assert.Equal(t, StatusDeprecated, statuses["F-OLD"])

	again, err := svc.FixFragranceStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Fixed)
}

func TestProductTypeLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, testConfig(), nil)
	ctx := context.Background()

	pt, err := svc.CreateProductType(ctx, &CreateProductTypeRequest{Code: "SALT", Name: "Salt Nic", Color: "#ff0000"})
	require.NoError(t, err)
	other, err := svc.CreateProductType(ctx, &CreateProductTypeRequest{Code: "FB", Name: "Freebase"})
	require.NoError(t, err)

	_, err = svc.CreateProductType(ctx, &CreateProductTypeRequest{Code: "SALT", Name: "Again"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	_, err = svc.UpdateProductType(ctx, &UpdateProductTypeRequest{ID: other.ID, Code: ptr("SALT")})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	updated, err := svc.UpdateProductType(ctx, &UpdateProductTypeRequest{ID: pt.ID, Name: ptr("Nic Salt")})
	require.NoError(t, err)
	assert.Equal(t, "Nic Salt", updated.Name)
	assert.Equal(t, "SALT", updated.Code)

	types, err := svc.ListProductTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "FB", types[0].Code)

	require.NoError(t, db.Create(&ProductSeries{Code: "S-1", Name: "Series", ProductTypeID: &pt.ID}).Error)
	err = svc.DeleteProductType(ctx, pt.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidOperation))

	require.NoError(t, svc.DeleteProductType(ctx, other.ID))
	err = svc.DeleteProductType(ctx, other.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}
