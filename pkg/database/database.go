package database

import (
	"log"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB opens the primary store.
func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	migrate(db)
	return db
}

// NewSQLiteDB opens a file-backed (or :memory:) store for single-node
// deployments and tests. SQLite serializes writers through its own
// transaction lock, so the same repositories work unchanged.
func NewSQLiteDB(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}
	migrate(db)
	return db
}

func migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.ClassSession{},
		&models.Booking{},
		&models.WaitlistEntry{},
		&models.SubscriptionPlan{},
		&models.SubscriptionAccount{},
	)
	if err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: one confirmed booking per (user, class). Cancelled
	// bookings are hard-deleted and completed ones are excluded, so rebooking
	// never collides.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_active
		ON bookings (user_id, class_id)
		WHERE status = 'confirmed'
	`)

	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_user_class
		ON waitlist_entries (user_id, class_id)
	`)
}
