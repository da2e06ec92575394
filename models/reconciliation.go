package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"gorm.io/gorm"
)

// ReconcileFlashSale settles one ended sale: the unsold remainder
// (QuantityAvailable - QuantitySold) moves from reserved back to sellable
// stock and the sale is marked reconciled, in one transaction.
//
// Reconciled is a state, not an event: the flag flips conditionally
// (is_reconciled = 0 guard) in the same transaction as the stock movement, so
// at-least-once job execution and crashes between steps cannot double-release.
// Returns done=false when the sale was not eligible (still running, already
// reconciled, or cancelled).
func ReconcileFlashSale(ctx context.Context, id int) (done bool, err error) {

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&FlashSale{}).
			Where("id = ? AND is_deleted = 0 AND is_reconciled = 0 AND end_time <= ?", id, now).
			Updates(map[string]interface{}{
				"is_reconciled": true,
				"updated_by":    "System",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var sale FlashSale
		if err := tx.First(&sale, id).Error; err != nil {
			return err
		}
		if remaining := sale.RemainingQuantity(); remaining > 0 {
			if err := releaseStock(tx, sale.ProductId, sale.VariantId, remaining); err != nil {
				return err
			}
		}
		done = true
		return recordFlashSaleEvent(ctx, tx, &sale, FlashSaleEventReconciled)
	})
	if err != nil {
		return false, err
	}
	return done, nil
}

// ListReconcilableFlashSaleIds returns ended, non-deleted, non-reconciled
// sales due for settlement, oldest first.
func ListReconcilableFlashSaleIds(ctx context.Context, limit int) ([]int, error) {
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	db := config.GetDB()
	var ids []int
	err := db.WithContext(ctx).Model(&FlashSale{}).
		Where("is_deleted = 0 AND is_reconciled = 0 AND end_time <= ?", now).
		Order("end_time").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
