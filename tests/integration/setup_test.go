//go:build integration

package integration

import (
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "studio_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	dropTables()

	if err := testDB.AutoMigrate(
		&models.ClassSession{},
		&models.SubscriptionPlan{},
		&models.SubscriptionAccount{},
		&models.Booking{},
		&models.WaitlistEntry{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_active
		ON bookings (user_id, class_id)
		WHERE status = 'confirmed'
	`)
	testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_user_class
		ON waitlist_entries (user_id, class_id)
	`)

	code := m.Run()

	dropTables()
	os.Exit(code)
}

func dropTables() {
	testDB.Exec("DROP TABLE IF EXISTS waitlist_entries")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS subscription_accounts")
	testDB.Exec("DROP TABLE IF EXISTS subscription_plans")
	testDB.Exec("DROP TABLE IF EXISTS class_sessions")
}

func cleanTables() {
	testDB.Exec("DELETE FROM waitlist_entries")
	testDB.Exec("DELETE FROM bookings")
	testDB.Exec("DELETE FROM subscription_accounts")
	testDB.Exec("DELETE FROM subscription_plans")
	testDB.Exec("DELETE FROM class_sessions")
	testDB.Exec("ALTER SEQUENCE IF EXISTS class_sessions_id_seq RESTART WITH 1")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
