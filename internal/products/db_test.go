package product

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore-backend/pkg/db/models"
)

// The products table is created by hand because its Postgres column types
// (uuid defaults, text arrays) have no sqlite AutoMigrate mapping. Inserts and
// scans work fine against plain TEXT columns.
const productsTestDDL = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	sku TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	tags TEXT,
	price_cents INTEGER NOT NULL DEFAULT 0,
	is_active NUMERIC NOT NULL DEFAULT true,
	created_at DATETIME,
	updated_at DATETIME
)`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.Exec(productsTestDDL).Error; err != nil {
		t.Fatalf("create products table: %v", err)
	}
	if err := conn.AutoMigrate(&models.StockRecord{}); err != nil {
		t.Fatalf("migrate stock records: %v", err)
	}
	return conn
}
