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

// Product carries the stock ledger fields used by the flash sale engine:
// SellableStock is inventory open for ordinary purchase, ReservedStock is
// carved out for pending/active flash sales. Reservation moves units between
// the two; their sum only changes through restocking or order fulfillment.
type Product struct {
	ID             int              `gorm:"primary_key" json:"id"`
	ShopId         string           `gorm:"index;not null" json:"shop_id"`
	Name           string           `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku            string           `gorm:"size:100;not null" json:"sku"`
	SalesPrice     decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"sales_price"`
	FlashSalePrice *decimal.Decimal `gorm:"type:decimal(20,4)" json:"flash_sale_price"`
	SellableStock  int64            `gorm:"not null;default:0" json:"sellable_stock"`
	ReservedStock  int64            `gorm:"not null;default:0" json:"reserved_stock"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type ProductVariant struct {
	ID             int              `gorm:"primary_key" json:"id"`
	ShopId         string           `gorm:"index;not null" json:"shop_id"`
	ProductId      int              `gorm:"index;not null" json:"product_id"`
	Name           string           `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku            string           `gorm:"size:100;not null" json:"sku"`
	SalesPrice     decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"sales_price"`
	FlashSalePrice *decimal.Decimal `gorm:"type:decimal(20,4)" json:"flash_sale_price"`
	SellableStock  int64            `gorm:"not null;default:0" json:"sellable_stock"`
	ReservedStock  int64            `gorm:"not null;default:0" json:"reserved_stock"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name          string          `json:"name" binding:"required"`
	Sku           string          `json:"sku"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	SellableStock int64           `json:"sellable_stock" binding:"gte=0"`
}

type NewProductVariant struct {
	ProductId     int             `json:"product_id" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Sku           string          `json:"sku"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	SellableStock int64           `json:"sellable_stock" binding:"gte=0"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}
	if input.SellableStock < 0 {
		return nil, fmt.Errorf("%w: sellable stock cannot be negative", utils.ErrValidation)
	}

	product := Product{
		ShopId:        shopId,
		Name:          input.Name,
		Sku:           input.Sku,
		SalesPrice:    input.SalesPrice,
		SellableStock: input.SellableStock,
		IsActive:      utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func CreateProductVariant(ctx context.Context, input *NewProductVariant) (*ProductVariant, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}
	if err := utils.ValidateResourceId[Product](ctx, shopId, input.ProductId); err != nil {
		return nil, err
	}
	if input.SellableStock < 0 {
		return nil, fmt.Errorf("%w: sellable stock cannot be negative", utils.ErrValidation)
	}

	variant := ProductVariant{
		ShopId:        shopId,
		ProductId:     input.ProductId,
		Name:          input.Name,
		Sku:           input.Sku,
		SalesPrice:    input.SalesPrice,
		SellableStock: input.SellableStock,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&variant).Error
	if err != nil {
		return nil, err
	}

	return &variant, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}
	return utils.FetchModel[Product](ctx, shopId, id)
}

func GetProductVariant(ctx context.Context, id int) (*ProductVariant, error) {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return nil, errors.New("shop id is required")
	}
	return utils.FetchModel[ProductVariant](ctx, shopId, id)
}

// Restock adds sellable stock to a product or variant. Quantity must be
// positive; ordinary sale fulfillment decrements elsewhere.
func Restock(ctx context.Context, productId int, variantId *int, quantity int64) error {

	shopId, ok := utils.GetShopIdFromContext(ctx)
	if !ok || shopId == "" {
		return errors.New("shop id is required")
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: restock quantity must be positive", utils.ErrValidation)
	}

	db := config.GetDB()
	res := stockTarget(db.WithContext(ctx), productId, variantId).
		Where("shop_id = ?", shopId).
		UpdateColumn("sellable_stock", gorm.Expr("sellable_stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
