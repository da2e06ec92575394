package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"github.com/sirupsen/logrus"
)

// ProcessDiscountSync denormalizes "currently on flash sale" onto the catalog
// listing columns used by search/browse: products and variants with an active,
// unsold-out sale get flash_sale_price set; everything else is cleared.
//
// Lower-stakes than reconciliation: plain overwrite semantics, a failed cycle
// at worst leaves a listing showing a stale price until the next run.
func ProcessDiscountSync(ctx context.Context, logger *logrus.Logger) error {

	now := time.Now().UTC()
	db := config.GetDB()

	// Base products (variant_id IS NULL sales).
	productSync := `
	UPDATE products p
	LEFT JOIN flash_sales fs
		ON fs.product_id = p.id
		AND fs.variant_id IS NULL
		AND fs.is_deleted = 0
		AND fs.is_active = 1
		AND fs.start_time <= ?
		AND fs.end_time > ?
		AND fs.quantity_sold < fs.quantity_available
	SET p.flash_sale_price = fs.flash_sale_price
	`
	if err := db.WithContext(ctx).Exec(productSync, now, now).Error; err != nil {
		config.LogError(logger, "discountSyncWorkflow.go", "ProcessDiscountSync", "syncing product listings", nil, err)
		return err
	}

	variantSync := `
	UPDATE product_variants v
	LEFT JOIN flash_sales fs
		ON fs.variant_id = v.id
		AND fs.is_deleted = 0
		AND fs.is_active = 1
		AND fs.start_time <= ?
		AND fs.end_time > ?
		AND fs.quantity_sold < fs.quantity_available
	SET v.flash_sale_price = fs.flash_sale_price
	`
	if err := db.WithContext(ctx).Exec(variantSync, now, now).Error; err != nil {
		config.LogError(logger, "discountSyncWorkflow.go", "ProcessDiscountSync", "syncing variant listings", nil, err)
		return err
	}

	// Drop the checkout-path cache so the next read repopulates with the
	// freshly synced window.
	if err := config.RemoveRedisKey("ActiveFlashSales"); err != nil {
		logger.WithFields(logrus.Fields{
			"module": "discountSyncWorkflow.go",
		}).Warn("failed to drop active flash sale cache: " + err.Error())
	}

	return nil
}
