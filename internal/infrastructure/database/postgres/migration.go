// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/domain/formula"
	"github.com/your-org/production-backend/internal/domain/inventory"
	"github.com/your-org/production-backend/internal/domain/user"
	"github.com/your-org/production-backend/internal/domain/workorder"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	var models []interface{}
	models = append(models, user.Models()...)
	models = append(models, catalog.Models()...)
	models = append(models, inventory.Models()...)
	models = append(models, workorder.Models()...)
	return models
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the hot read paths
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_materials_category_sub ON materials(category, sub_category)",
		"CREATE INDEX IF NOT EXISTS idx_fragrances_status ON fragrances(status)",
		"CREATE INDEX IF NOT EXISTS idx_products_fragrance_status ON products(fragrance_id, status)",

		"CREATE INDEX IF NOT EXISTS idx_movements_item_created ON inventory_movements(item_type, item_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_records_type_created ON inventory_records(record_type, created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_work_orders_status_created ON work_orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_bom_items_order ON work_order_bom_items(work_order_id, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_time_records_date ON work_order_time_records(work_order_id, work_date)",
	}

	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			failCount++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failCount,
		"failed":  failCount,
	}).Info("Additional indexes created")

	if failCount > 0 {
		return fmt.Errorf("%d of %d indexes failed", failCount, len(indexes))
	}
	return nil
}

// SeedInitialData inserts development users and a minimal catalog. Rows are matched by code or email.
func (m *Migration) SeedInitialData() error {
	m.log.Info("Seeding initial data")

	if err := m.seedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	m.log.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedUsers() error {
	passwords := auth.NewPasswordManager(m.config)
	hash, err := passwords.HashPassword(m.config.Security.SeedPassword)
	if err != nil {
		return err
	}

	users := []user.User{
		{Email: "admin@example.com", Name: "Admin", Role: auth.RoleAdmin},
		{Email: "foreman@example.com", Name: "Foreman", Role: auth.RoleForeman},
		{Email: "worker@example.com", Name: "Worker", Role: auth.RoleWorker},
	}

	for _, u := range users {
		var existing user.User
		err := m.db.Where("email = ?", u.Email).First(&existing).Error
		if err == nil {
			m.log.WithField("email", u.Email).Debug("User already exists")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		u.Password = hash
		u.IsActive = true
		if err := m.db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.Email, err)
		}
		m.log.WithFields(logrus.Fields{"email": u.Email, "role": u.Role}).Info("Created seed user")
	}
	return nil
}

func (m *Migration) seedCatalog() error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		supplier := catalog.Supplier{Code: "SUP-001", Name: "Default Supplier"}
		if err := tx.Where("code = ?", supplier.Code).FirstOrCreate(&supplier).Error; err != nil {
			return err
		}

		materials := []catalog.Material{
			{Code: "MAT-PG", Name: "Propylene Glycol", Category: catalog.TagPG, Unit: "KG", CurrentStock: 500, SafetyStockLevel: 100},
			{Code: "MAT-VG", Name: "Vegetable Glycerin", Category: catalog.TagVG, Unit: "KG", CurrentStock: 500, SafetyStockLevel: 100},
			{Code: "MAT-NIC", Name: "Nicotine Base", Category: catalog.TagNicotine, Unit: "KG", CurrentStock: 20, SafetyStockLevel: 5},
			{Code: "PKG-BTL-30", Name: "30ml Bottle", Category: "packaging", Unit: "PCS", CurrentStock: 5000, SafetyStockLevel: 1000},
			{Code: "PKG-BOX-30", Name: "30ml Box", Category: "packaging", Unit: "PCS", CurrentStock: 5000, SafetyStockLevel: 1000},
		}
		for i := range materials {
			materials[i].SupplierID = &supplier.ID
			if err := tx.Where("code = ?", materials[i].Code).FirstOrCreate(&materials[i]).Error; err != nil {
				return err
			}
		}

		fragrances := []catalog.Fragrance{
			{Code: "FRG-MANGO", Name: "Mango", Percentage: 20, CurrentStock: 50, SafetyStockLevel: 10},
			{Code: "FRG-MINT", Name: "Mint", Percentage: 35.7, CurrentStock: 40, SafetyStockLevel: 10},
		}
		for i := range fragrances {
			r, err := formula.CalculateRatios(fragrances[i].Percentage)
			if err != nil {
				return err
			}
			fragrances[i].PGRatio, fragrances[i].VGRatio = r.PG, r.VG
			fragrances[i].Unit = "KG"
			fragrances[i].Status = catalog.StatusActive
			fragrances[i].SupplierID = &supplier.ID
			if err := tx.Where("code = ?", fragrances[i].Code).FirstOrCreate(&fragrances[i]).Error; err != nil {
				return err
			}
		}

		productType := catalog.ProductType{Code: "PT-LIQUID", Name: "E-Liquid", Color: "#2563eb"}
		if err := tx.Where("code = ?", productType.Code).FirstOrCreate(&productType).Error; err != nil {
			return err
		}

		series := catalog.ProductSeries{Code: "SER-CLASSIC", Name: "Classic 30ml", ProductTypeID: &productType.ID}
		if err := tx.Where("code = ?", series.Code).FirstOrCreate(&series).Error; err != nil {
			return err
		}
		if err := tx.Model(&series).Association("CommonMaterials").Replace(&materials[3]); err != nil {
			return err
		}

		products := []catalog.Product{
			{Code: "PRD-MANGO-3", Name: "Mango 3mg", FragranceID: &fragrances[0].ID, NicotineMg: 3},
			{Code: "PRD-MINT-0", Name: "Mint 0mg", FragranceID: &fragrances[1].ID},
		}
		for i := range products {
			products[i].SeriesID = &series.ID
			products[i].Status = catalog.StatusActive
			if err := tx.Where("code = ?", products[i].Code).FirstOrCreate(&products[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&products[0]).Association("SpecificMaterials").Replace(&materials[4])
	})
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() error {
	tables, err := m.db.Migrator().GetTables()
	if err != nil {
		return err
	}

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			m.log.WithError(err).WithField("table", table).Warn("Failed to count table")
			continue
		}
		totalRecords += count
		m.log.WithFields(logrus.Fields{"table": table, "records": count}).Debug("Table info")
	}

	m.log.WithFields(logrus.Fields{
		"tables":  len(tables),
		"records": totalRecords,
	}).Info("Database tables information")

	return nil
}
