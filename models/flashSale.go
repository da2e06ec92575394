package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FlashSaleStatus string

const (
	FlashSaleStatusScheduled  FlashSaleStatus = "SCHEDULED"
	FlashSaleStatusActive     FlashSaleStatus = "ACTIVE"
	FlashSaleStatusEnded      FlashSaleStatus = "ENDED"
	FlashSaleStatusReconciled FlashSaleStatus = "RECONCILED"
	FlashSaleStatusCancelled  FlashSaleStatus = "CANCELLED"
)

// FlashSale is a time-boxed discounted price for a fixed quantity of a product
// or one of its variants. VariantId null means the sale applies to the base
// product. Invariants:
//   - 0 <= QuantitySold <= QuantityAvailable at all times
//   - [StartTime, EndTime) is exactly one slot calendar window
//   - no two non-deleted sales of the same (ProductId, VariantId) overlap
type FlashSale struct {
	ID                int             `gorm:"primary_key" json:"id"`
	ShopId            string          `gorm:"index;not null" json:"shop_id"`
	ProductId         int             `gorm:"index;not null" json:"product_id"`
	VariantId         *int            `gorm:"index" json:"variant_id"`
	FlashSalePrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"flash_sale_price"`
	QuantityAvailable int64           `gorm:"not null" json:"quantity_available"`
	QuantitySold      int64           `gorm:"not null;default:0" json:"quantity_sold"`
	StartTime         time.Time       `gorm:"index;not null" json:"start_time"`
	EndTime           time.Time       `gorm:"index;not null" json:"end_time"`
	Slot              int             `gorm:"not null" json:"slot"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	IsDeleted         *bool           `gorm:"not null;default:false" json:"is_deleted"`
	IsReconciled      *bool           `gorm:"not null;default:false" json:"is_reconciled"`
	CreatedBy         string          `gorm:"size:100" json:"created_by"`
	UpdatedBy         string          `gorm:"size:100" json:"updated_by"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Status derives the lifecycle state at the given instant.
func (fs *FlashSale) Status(now time.Time) FlashSaleStatus {
	if utils.DereferencePtr(fs.IsDeleted) {
		return FlashSaleStatusCancelled
	}
	if utils.DereferencePtr(fs.IsReconciled) {
		return FlashSaleStatusReconciled
	}
	if now.Before(fs.StartTime) {
		return FlashSaleStatusScheduled
	}
	if now.Before(fs.EndTime) {
		return FlashSaleStatusActive
	}
	return FlashSaleStatusEnded
}

func (fs *FlashSale) RemainingQuantity() int64 {
	remaining := fs.QuantityAvailable - fs.QuantitySold
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FlashSaleSummary is the read shape served to the Order service for pricing
// cart lines at checkout.
type FlashSaleSummary struct {
	ID                int             `json:"id"`
	ShopId            string          `json:"shop_id"`
	ProductId         int             `json:"product_id"`
	VariantId         *int            `json:"variant_id"`
	FlashSalePrice    decimal.Decimal `json:"flash_sale_price"`
	QuantityAvailable int64           `json:"quantity_available"`
	QuantitySold      int64           `json:"quantity_sold"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           time.Time       `json:"end_time"`
}

// NewFlashSale accepts either a (sale_date, slot) pair or an explicit
// (start_time, end_time) pair that must match a computed slot window exactly.
type NewFlashSale struct {
	ProductId      int             `json:"product_id" binding:"required"`
	VariantId      *int            `json:"variant_id"`
	FlashSalePrice decimal.Decimal `json:"flash_sale_price" binding:"required"`
	Quantity       int64           `json:"quantity" binding:"required,gt=0"`
	SaleDate       string          `json:"sale_date"`
	Slot           int             `json:"slot" binding:"omitempty,flashsaleslot"`
	StartTime      *time.Time      `json:"start_time"`
	EndTime        *time.Time      `json:"end_time"`
}

type UpdateFlashSaleInput struct {
	FlashSalePrice *decimal.Decimal `json:"flash_sale_price"`
	Quantity       *int64           `json:"quantity"`
}

// resolveWindow turns the creation input into an aligned [start, end) window.
func (input *NewFlashSale) resolveWindow() (start, end time.Time, slot int, err error) {
	if input.StartTime != nil || input.EndTime != nil {
		if input.StartTime == nil || input.EndTime == nil {
			return time.Time{}, time.Time{}, 0, utils.ErrInvalidSlotAlignment
		}
		slot, err = ValidateWindow(*input.StartTime, *input.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, 0, err
		}
		return input.StartTime.UTC(), input.EndTime.UTC(), slot, nil
	}

	date, perr := utils.ParseDateOnly(input.SaleDate)
	if perr != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("%w: sale_date must be YYYY-MM-DD", utils.ErrValidation)
	}
	start, end, err = WindowForSlot(date, input.Slot)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	return start, end, input.Slot, nil
}

func actorFromContext(ctx context.Context) string {
	if name, ok := utils.GetUserNameFromContext(ctx); ok && name != "" {
		return name
	}
	return "System"
}

// validateSaleTarget checks the product (and variant, when set) belongs to the shop.
func validateSaleTarget(ctx context.Context, shopId string, productId int, variantId *int) error {
	if err := utils.ValidateResourceId[Product](ctx, shopId, productId); err != nil {
		return errors.New("product not found")
	}
	if variantId != nil {
		count, err := utils.ResourceCountWhere[ProductVariant](ctx, shopId, "id = ? AND product_id = ?", *variantId, productId)
		if err != nil {
			return err
		}
		if count <= 0 {
			return errors.New("product variant not found")
		}
	}
	return nil
}

// countOverlappingSales counts non-deleted sales of the same (product, variant)
// whose window intersects [start, end). Must run inside the scheduling lock.
func countOverlappingSales(tx *gorm.DB, productId int, variantId *int, start, end time.Time) (int64, error) {
	dbCtx := tx.Model(&FlashSale{}).
		Where("product_id = ? AND is_deleted = 0", productId).
		Where("start_time < ? AND end_time > ?", end, start)
	if variantId != nil {
		dbCtx = dbCtx.Where("variant_id = ?", *variantId)
	} else {
		dbCtx = dbCtx.Where("variant_id IS NULL")
	}
	var count int64
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func CreateFlashSale(ctx context.Context, input *NewFlashSale) (*FlashSale, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}

	start, end, slot, err := input.resolveWindow()
	if err != nil {
		return nil, err
	}
	if !input.FlashSalePrice.IsPositive() {
		return nil, fmt.Errorf("%w: flash sale price must be positive", utils.ErrValidation)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", utils.ErrValidation)
	}
	if err := validateSaleTarget(ctx, shopId, input.ProductId, input.VariantId); err != nil {
		return nil, err
	}

	sale := FlashSale{
		ShopId:            shopId,
		ProductId:         input.ProductId,
		VariantId:         input.VariantId,
		FlashSalePrice:    input.FlashSalePrice,
		QuantityAvailable: input.Quantity,
		QuantitySold:      0,
		StartTime:         start,
		EndTime:           end,
		Slot:              slot,
		IsActive:          utils.NewTrue(),
		IsDeleted:         utils.NewFalse(),
		IsReconciled:      utils.NewFalse(),
		CreatedBy:         actorFromContext(ctx),
		UpdatedBy:         actorFromContext(ctx),
	}

	// The advisory lock must outlive the COMMIT: releasing inside the
	// transaction closure would let a waiter re-check overlaps against the
	// still-uncommitted insert under READ COMMITTED. Connection pins the lock
	// and the transaction to one session, and the lock drops only after the
	// transaction has returned (committed or rolled back).
	db := config.GetDB()
	err = db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := AcquireSaleScheduleLock(conn, input.ProductId); err != nil {
			return err
		}
		defer ReleaseSaleScheduleLock(conn, input.ProductId)

		return conn.Transaction(func(tx *gorm.DB) error {
			// The DTO layer already rejects past windows, but the invariant is
			// enforced here too so a slow request cannot slip through between
			// validation and commit.
			if !start.After(time.Now().UTC()) {
				return fmt.Errorf("%w: start time must be in the future", utils.ErrValidation)
			}

			overlaps, err := countOverlappingSales(tx, input.ProductId, input.VariantId, start, end)
			if err != nil {
				return err
			}
			if overlaps > 0 {
				return utils.ErrSlotConflict
			}

			if err := reserveStock(tx, input.ProductId, input.VariantId, input.Quantity); err != nil {
				return err
			}
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}
			return recordFlashSaleEvent(ctx, tx, &sale, FlashSaleEventCreated)
		})
	})
	if err != nil {
		return nil, err
	}

	clearFlashSaleCaches(shopId)
	return &sale, nil
}

func UpdateFlashSale(ctx context.Context, id int, input *UpdateFlashSaleInput) (*FlashSale, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}
	if input.FlashSalePrice == nil && input.Quantity == nil {
		return nil, fmt.Errorf("%w: nothing to update", utils.ErrValidation)
	}

	db := config.GetDB()
	var updated *FlashSale
	err := db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var existing FlashSale
		if err := conn.Where("shop_id = ?", shopId).First(&existing, id).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if err := AcquireSaleScheduleLock(conn, existing.ProductId); err != nil {
			return err
		}
		defer ReleaseSaleScheduleLock(conn, existing.ProductId)

		return conn.Transaction(func(tx *gorm.DB) error {
			// Re-read under the lock; quantity_available is stable for the
			// rest of the transaction because every writer takes this lock.
			var sale FlashSale
			if err := tx.Where("shop_id = ?", shopId).First(&sale, id).Error; err != nil {
				return utils.ErrorRecordNotFound
			}

			now := time.Now().UTC()
			switch sale.Status(now) {
			case FlashSaleStatusCancelled, FlashSaleStatusReconciled, FlashSaleStatusEnded:
				return fmt.Errorf("%w: flash sale already ended", utils.ErrValidation)
			}

			updates := map[string]interface{}{
				"updated_by": actorFromContext(ctx),
			}

			if input.FlashSalePrice != nil {
				if !input.FlashSalePrice.IsPositive() {
					return fmt.Errorf("%w: flash sale price must be positive", utils.ErrValidation)
				}
				updates["flash_sale_price"] = *input.FlashSalePrice
			}

			// An unchanged quantity is a valid no-op, and MySQL reports
			// changed rows rather than matched rows, so it must not reach the
			// conditional update below.
			if input.Quantity != nil && *input.Quantity != sale.QuantityAvailable {
				newQty := *input.Quantity
				if newQty <= 0 {
					return fmt.Errorf("%w: quantity must be positive", utils.ErrValidation)
				}

				// Guarded against concurrent sells: the shrink only lands when
				// quantity_sold still fits under the new cap.
				res := tx.Model(&FlashSale{}).
					Where("id = ? AND is_deleted = 0 AND is_reconciled = 0 AND quantity_sold <= ?", sale.ID, newQty).
					UpdateColumn("quantity_available", newQty)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: quantity cannot shrink below quantity sold", utils.ErrValidation)
				}

				delta := newQty - sale.QuantityAvailable
				if delta > 0 {
					if err := reserveStock(tx, sale.ProductId, sale.VariantId, delta); err != nil {
						return err
					}
				} else {
					if err := releaseStock(tx, sale.ProductId, sale.VariantId, -delta); err != nil {
						return err
					}
				}
			}

			if err := tx.Model(&FlashSale{}).Where("id = ?", sale.ID).Updates(updates).Error; err != nil {
				return err
			}

			var fresh FlashSale
			if err := tx.First(&fresh, sale.ID).Error; err != nil {
				return err
			}
			updated = &fresh
			return recordFlashSaleEvent(ctx, tx, &fresh, FlashSaleEventUpdated)
		})
	})
	if err != nil {
		return nil, err
	}

	clearFlashSaleCaches(shopId)
	return updated, nil
}

// CancelFlashSale terminates a sale early, releasing the unsold reservation
// immediately. Idempotent: cancelling a cancelled or reconciled sale is a
// no-op; cancellation and reconciliation are mutually exclusive because each
// flips its flag only while both are still unset.
func CancelFlashSale(ctx context.Context, id int) (*FlashSale, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}

	sale, err := utils.FetchModel[FlashSale](ctx, shopId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := cancelFlashSaleTx(ctx, db, sale.ID); err != nil {
		return nil, err
	}

	clearFlashSaleCaches(shopId)
	return utils.FetchModel[FlashSale](ctx, shopId, id)
}

// cancelFlashSaleTx runs one sale's cancellation in its own transaction.
func cancelFlashSaleTx(ctx context.Context, db *gorm.DB, id int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Flip the flag first: once is_deleted is set, IncreaseSold rejects
		// further increments, so quantity_sold is stable for the release below.
		res := tx.Model(&FlashSale{}).
			Where("id = ? AND is_deleted = 0 AND is_reconciled = 0", id).
			Updates(map[string]interface{}{
				"is_deleted": true,
				"is_active":  false,
				"updated_by": actorFromContext(ctx),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already cancelled or reconciled.
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
		return recordFlashSaleEvent(ctx, tx, &sale, FlashSaleEventCancelled)
	})
}

type SlotCancellation struct {
	FlashSaleId int    `json:"flash_sale_id"`
	Error       string `json:"error,omitempty"`
}

// DeleteFlashSaleSlot batch-cancels every sale of the shop scheduled in one
// (date, slot) window. Each cancellation commits independently; a failure does
// not roll back the others.
func DeleteFlashSaleSlot(ctx context.Context, saleDate string, slot int) ([]SlotCancellation, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}

	date, err := utils.ParseDateOnly(saleDate)
	if err != nil {
		return nil, fmt.Errorf("%w: sale_date must be YYYY-MM-DD", utils.ErrValidation)
	}
	start, end, err := WindowForSlot(date, slot)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var sales []FlashSale
	if err := db.WithContext(ctx).
		Where("shop_id = ? AND is_deleted = 0 AND start_time = ? AND end_time = ?", shopId, start, end).
		Find(&sales).Error; err != nil {
		return nil, err
	}

	results := make([]SlotCancellation, 0, len(sales))
	for _, sale := range sales {
		result := SlotCancellation{FlashSaleId: sale.ID}
		if err := cancelFlashSaleTx(ctx, db, sale.ID); err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	clearFlashSaleCaches(shopId)
	return results, nil
}

func GetFlashSale(ctx context.Context, id int) (*FlashSale, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}
	return utils.FetchModel[FlashSale](ctx, shopId, id)
}

func GetFlashSalesByShop(ctx context.Context, productId *int) ([]*FlashSale, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}

	// The unfiltered listing is cached per shop and dropped on every lifecycle
	// mutation; sold counters in it may lag until the next mutation or expiry.
	unfiltered := productId == nil || *productId <= 0
	if unfiltered {
		cached, err := utils.RetrieveRedisList[FlashSale](shopId)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("shop_id = ? AND is_deleted = 0", shopId)
	if !unfiltered {
		dbCtx = dbCtx.Where("product_id = ?", *productId)
	}
	var results []*FlashSale
	if err := dbCtx.Order("start_time").Find(&results).Error; err != nil {
		return nil, err
	}

	if unfiltered {
		if err := utils.StoreRedisList[FlashSale](results, shopId); err != nil {
			config.LogError(config.GetLogger(), "flashSale.go", "GetFlashSalesByShop", "caching shop listing", shopId, err)
		}
	}
	return results, nil
}

const activeFlashSalesCacheKey = "ActiveFlashSales"

// GetCurrentFlashSales returns every sale whose window contains now, across
// all shops. Used by the Order service to price cart lines; served from a
// short-lived Redis cache because it sits on the checkout path.
func GetCurrentFlashSales(ctx context.Context) ([]*FlashSaleSummary, error) {

	var cached []*FlashSaleSummary
	exists, err := config.GetRedisObject(activeFlashSalesCacheKey, &cached)
	if err == nil && exists {
		return cached, nil
	}

	now := time.Now().UTC()
	db := config.GetDB()
	var results []*FlashSaleSummary
	if err := db.WithContext(ctx).Model(&FlashSale{}).
		Where("is_deleted = 0 AND is_active = 1 AND start_time <= ? AND end_time > ?", now, now).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}

	// A cache-write failure must not fail the checkout path; the next read
	// just goes back to the database.
	if err := config.SetRedisObject(activeFlashSalesCacheKey, &results, 30*time.Second); err != nil {
		config.LogError(config.GetLogger(), "flashSale.go", "GetCurrentFlashSales", "caching active sales", nil, err)
	}
	return results, nil
}

func clearFlashSaleCaches(shopId string) {
	_ = config.RemoveRedisKey(activeFlashSalesCacheKey)
	_ = utils.RemoveRedisList[FlashSale](shopId)
}
