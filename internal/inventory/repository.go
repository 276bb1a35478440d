package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore-backend/pkg/db/models"
)

// Repository owns every statement that touches stock_records. All three
// conditional mutations are single guarded UPDATEs: the availability check and
// the write hit the row in one statement, so two concurrent reservations can
// never both pass the check against the same snapshot. Multi-statement
// select-then-update sequences are deliberately absent.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Reserve raises reserved_qty by qty when enough unreserved stock remains.
// Returns the affected row count: 0 means the guard failed (insufficient
// availability, untracked, inactive, or missing record), which is a business
// outcome for the service to classify, not an error.
func (r *Repository) Reserve(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET reserved_qty = reserved_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ?
		  AND track_inventory = TRUE
		  AND is_active = TRUE
		  AND is_deleted = FALSE
		  AND (stock_qty - reserved_qty) >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Release lowers reserved_qty by qty when at least qty is currently reserved.
func (r *Repository) Release(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET reserved_qty = reserved_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ?
		  AND is_active = TRUE
		  AND is_deleted = FALSE
		  AND reserved_qty >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Reduce consumes qty from both counters at once: a reserved unit leaving the
// warehouse. Both counters must cover qty or nothing happens.
func (r *Repository) Reduce(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET stock_qty = stock_qty - ?,
			reserved_qty = reserved_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ?
		  AND is_active = TRUE
		  AND is_deleted = FALSE
		  AND stock_qty >= ?
		  AND reserved_qty >= ?
	`, qty, qty, productID, qty, qty)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// SetQuantity writes an absolute stock_qty (administrative restock or
// correction). reserved_qty is left untouched.
func (r *Repository) SetQuantity(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET stock_qty = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ?
		  AND is_active = TRUE
		  AND is_deleted = FALSE
	`, qty, productID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Find loads the stock record for a product. Soft-deleted records are treated
// as absent.
func (r *Repository) Find(ctx context.Context, productID uuid.UUID) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		First(&record, "product_id = ? AND is_deleted = FALSE", productID).
		Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new stock record row.
func (r *Repository) Create(ctx context.Context, record *models.StockRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// SoftDelete flags the record without removing the row.
func (r *Repository) SoftDelete(ctx context.Context, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("product_id = ? AND is_deleted = FALSE", productID).
		Update("is_deleted", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeleteByProduct physically removes the record. Only the product-removal path
// calls this; everything else soft-deletes.
func (r *Repository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.StockRecord{}).
		Error
}
