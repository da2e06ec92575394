package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// FlashSaleOrderKey provides durable, DB-backed idempotency for IncreaseSold.
// The key is the initiating order's id, so network retries of the same order
// are no-ops instead of double-counting.
// Unique constraint: (flash_sale_id, order_key).
type FlashSaleOrderKey struct {
	ID                int       `gorm:"primary_key" json:"id"`
	FlashSaleId       int       `gorm:"not null;index:uniq_fs_order,unique" json:"flash_sale_id"`
	OrderKey          string    `gorm:"size:255;not null;index:uniq_fs_order,unique" json:"order_key"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	QuantitySoldAfter int64     `gorm:"not null" json:"quantity_sold_after"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// IncreaseSold atomically increments a flash sale's sold count by quantity.
// The increment is a single conditional UPDATE: it lands only while the sale
// is inside its window, not cancelled, and capacity remains — never a
// read-then-write pair, because the callers race across processes.
//
// orderKey, when non-empty, dedupes retries: a key that was already consumed
// returns the original result with no further effect. A request either fully
// succeeds or fully fails; there are no partial increments.
func IncreaseSold(ctx context.Context, flashSaleId int, quantity int64, orderKey string) (int64, error) {

	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", utils.ErrValidation)
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	defer tx.Rollback()

	if orderKey != "" {
		key := FlashSaleOrderKey{
			FlashSaleId: flashSaleId,
			OrderKey:    orderKey,
			Quantity:    quantity,
		}
		if err := tx.Create(&key).Error; err != nil {
			if !isDuplicateKeyErr(err) {
				return 0, err
			}
			// Retried request: replay the recorded outcome.
			var existing FlashSaleOrderKey
			if err := tx.Where("flash_sale_id = ? AND order_key = ?", flashSaleId, orderKey).
				First(&existing).Error; err != nil {
				return 0, err
			}
			return existing.QuantitySoldAfter, nil
		}
	}

	now := time.Now().UTC()
	res := tx.Model(&FlashSale{}).
		Where("id = ? AND is_deleted = 0 AND is_active = 1 AND is_reconciled = 0", flashSaleId).
		Where("start_time <= ? AND end_time > ?", now, now).
		Where("quantity_sold + ? <= quantity_available", quantity).
		UpdateColumn("quantity_sold", gorm.Expr("quantity_sold + ?", quantity))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Zero rows: the key insert (if any) rolls back with the tx, so a
		// later retry of the same order can still succeed.
		return 0, classifyIncreaseFailure(ctx, flashSaleId, now)
	}

	var newSold int64
	if err := tx.Model(&FlashSale{}).Where("id = ?", flashSaleId).
		Select("quantity_sold").Scan(&newSold).Error; err != nil {
		return 0, err
	}

	if orderKey != "" {
		if err := tx.Model(&FlashSaleOrderKey{}).
			Where("flash_sale_id = ? AND order_key = ?", flashSaleId, orderKey).
			UpdateColumn("quantity_sold_after", newSold).Error; err != nil {
			return 0, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return newSold, nil
}

// classifyIncreaseFailure disambiguates a zero-row conditional update.
func classifyIncreaseFailure(ctx context.Context, flashSaleId int, now time.Time) error {
	sale, err := utils.FetchSingleModel[FlashSale](ctx, flashSaleId)
	if err != nil {
		return utils.ErrorRecordNotFound
	}
	switch sale.Status(now) {
	case FlashSaleStatusActive:
		if !utils.DereferencePtr(sale.IsActive, true) {
			return utils.ErrFlashSaleNotActive
		}
		return utils.ErrInsufficientFlashSaleStock
	default:
		return utils.ErrFlashSaleNotActive
	}
}

// ReleaseSold is the saga compensation for IncreaseSold: when an order that
// reserved flash sale units fails irrecoverably, the Order service returns
// them. The decrement clamps at zero and is rejected once the sale has been
// reconciled or cancelled, because its reservation has already been settled
// back into sellable stock.
func ReleaseSold(ctx context.Context, flashSaleId int, quantity int64) (int64, error) {

	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", utils.ErrValidation)
	}

	db := config.GetDB()
	var newSold int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The quantity_sold > 0 guard matters: MySQL reports changed rows, not
		// matched rows, so a clamped write of the same zero would be
		// indistinguishable from a missing or settled sale.
		res := tx.Model(&FlashSale{}).
			Where("id = ? AND is_deleted = 0 AND is_reconciled = 0 AND quantity_sold > 0", flashSaleId).
			UpdateColumn("quantity_sold", gorm.Expr("GREATEST(quantity_sold - ?, 0)", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var sale FlashSale
			if err := tx.First(&sale, flashSaleId).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			if utils.DereferencePtr(sale.IsDeleted) || utils.DereferencePtr(sale.IsReconciled) {
				return utils.ErrFlashSaleNotActive
			}
			// Already at zero; releasing is a no-op, not a failure.
			newSold = 0
			return nil
		}
		return tx.Model(&FlashSale{}).Where("id = ?", flashSaleId).
			Select("quantity_sold").Scan(&newSold).Error
	})
	if err != nil {
		return 0, err
	}
	return newSold, nil
}
