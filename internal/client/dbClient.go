package client

import (
	"log"
	"time"

	"campaign-review-engine/internal/config"
	"campaign-review-engine/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func InitDBClient(cfg *config.Database) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.URL)
	default:
		dialector = sqlite.Open(cfg.URL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (concurrent uploads hit the reconciler hard)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db, cfg.Driver); err != nil {
		log.Fatal(err)
	}

	return db
}

// Migrate creates the schema plus the partial unique indexes backstopping
// the reconciler's provisional find-or-create and the active assignment
// tuple against racing transactions.
func Migrate(db *gorm.DB, driver string) error {
	if err := db.AutoMigrate(
		&model.Campaign{},
		&model.Item{},
		&model.Slot{},
		&model.Buyer{},
		&model.Image{},
		&model.Assignment{},
	); err != nil {
		return err
	}

	// Partial indexes are unsupported on mysql; there the in-transaction
	// locked checks carry both guarantees alone.
	if driver != "mysql" {
		err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_buyers_provisional_order
			ON buyers (item_id, order_number)
			WHERE is_temporary AND order_number <> '' AND deleted_at IS NULL`).Error
		if err != nil {
			return err
		}
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_active_tuple
			ON assignments (campaign_id, item_id, day_group, operator_id)
			WHERE day_group IS NOT NULL AND deleted_at IS NULL`).Error
	}
	return nil
}
