package models

import (
	"fmt"

	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
	"gorm.io/gorm"
)

// Stock ledger movements. A flash sale reservation moves units from
// sellable_stock to reserved_stock on the owning product or variant row;
// release moves them back. Both are single conditional UPDATEs so the
// non-negativity invariant holds under arbitrary interleaving, with no
// read-then-write gap.

// stockTarget scopes a query to the ledger row the sale draws from: the
// variant row when variantId is set, otherwise the base product row.
func stockTarget(tx *gorm.DB, productId int, variantId *int) *gorm.DB {
	if variantId != nil {
		return tx.Model(&ProductVariant{}).Where("id = ? AND product_id = ?", *variantId, productId)
	}
	return tx.Model(&Product{}).Where("id = ?", productId)
}

// reserveStock carves quantity units out of sellable stock.
// Returns InsufficientStock when the conditional update matches no row.
func reserveStock(tx *gorm.DB, productId int, variantId *int, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: reserve quantity must be positive", utils.ErrValidation)
	}
	res := stockTarget(tx, productId, variantId).
		Where("sellable_stock >= ?", quantity).
		Updates(map[string]interface{}{
			"sellable_stock": gorm.Expr("sellable_stock - ?", quantity),
			"reserved_stock": gorm.Expr("reserved_stock + ?", quantity),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrInsufficientStock
	}
	return nil
}

// releaseStock returns quantity units from reserved stock to sellable stock.
// The reserved_stock >= quantity guard means a bug elsewhere can never drive
// the ledger negative; hitting it is a reconciliation defect, not a user error.
func releaseStock(tx *gorm.DB, productId int, variantId *int, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: release quantity must be positive", utils.ErrValidation)
	}
	res := stockTarget(tx, productId, variantId).
		Where("reserved_stock >= ?", quantity).
		Updates(map[string]interface{}{
			"sellable_stock": gorm.Expr("sellable_stock + ?", quantity),
			"reserved_stock": gorm.Expr("reserved_stock - ?", quantity),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reserved stock underflow for product_id=%d variant_id=%v", productId, variantId)
	}
	return nil
}

// AcquireSaleScheduleLock serializes flash sale scheduling per product across
// instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped. Acquire it on a pinned connection
// (gorm Connection) outside the transaction and release it only after the
// transaction returns; releasing before COMMIT re-opens the overlap race
// under READ COMMITTED.
func AcquireSaleScheduleLock(tx *gorm.DB, productId int) error {
	lockName := fmt.Sprintf("flashsale:schedule:%d", productId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire schedule lock for product_id=%d", productId)
	}
	return nil
}

func ReleaseSaleScheduleLock(tx *gorm.DB, productId int) {
	lockName := fmt.Sprintf("flashsale:schedule:%d", productId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
