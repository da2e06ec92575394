package main

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/livemall_catalog/middlewares"
	"bitbucket.org/mmdatafocus/livemall_catalog/models"
	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
	"github.com/gin-gonic/gin"
)

// Wire error codes. The Order service client switches on these, so they are
// part of the cross-service contract and must stay stable.
const (
	codeValidation         = "VALIDATION_ERROR"
	codeSlotAlignment      = "INVALID_SLOT_ALIGNMENT"
	codeSlotConflict       = "SLOT_CONFLICT"
	codeInsufficientStock  = "INSUFFICIENT_STOCK"
	codeFlashSaleSoldOut   = "FLASH_SALE_SOLD_OUT"
	codeFlashSaleNotActive = "FLASH_SALE_NOT_ACTIVE"
	codeNotFound           = "NOT_FOUND"
	codeInternal           = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError maps the model error taxonomy onto HTTP statuses:
// alignment/validation problems are the caller's input (400/422), scheduling
// and capacity races are conflicts (409), everything unexpected is 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidSlotAlignment):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: codeSlotAlignment})
	case errors.Is(err, utils.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
	case errors.Is(err, utils.ErrSlotConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: codeSlotConflict})
	case errors.Is(err, utils.ErrInsufficientStock):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: codeInsufficientStock})
	case errors.Is(err, utils.ErrInsufficientFlashSaleStock):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: codeFlashSaleSoldOut})
	case errors.Is(err, utils.ErrFlashSaleNotActive):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: codeFlashSaleNotActive})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: codeNotFound})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: codeInternal})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id", Code: codeValidation})
		return 0, false
	}
	return id, true
}

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}
		product, err := models.CreateProduct(middlewares.RequestContext(c), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func createProductVariantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProductVariant
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}
		variant, err := models.CreateProductVariant(middlewares.RequestContext(c), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, variant)
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		product, err := models.GetProduct(middlewares.RequestContext(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func getProductVariantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		variant, err := models.GetProductVariant(middlewares.RequestContext(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, variant)
	}
}

type restockInput struct {
	ProductId int   `json:"product_id" binding:"required"`
	VariantId *int  `json:"variant_id"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
}

func restockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input restockInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}
		err := models.Restock(middlewares.RequestContext(c), input.ProductId, input.VariantId, input.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func createFlashSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFlashSale
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}
		sale, err := models.CreateFlashSale(middlewares.RequestContext(c), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sale)
	}
}

func updateFlashSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.UpdateFlashSaleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}
		sale, err := models.UpdateFlashSale(middlewares.RequestContext(c), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

func cancelFlashSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		sale, err := models.CancelFlashSale(middlewares.RequestContext(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

type deleteSlotInput struct {
	SaleDate string `json:"sale_date" binding:"required"`
	Slot     int    `json:"slot" binding:"required,flashsaleslot"`
}

func deleteFlashSaleSlotHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input deleteSlotInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}
		results, err := models.DeleteFlashSaleSlot(middlewares.RequestContext(c), input.SaleDate, input.Slot)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancellations": results})
	}
}

func getFlashSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		sale, err := models.GetFlashSale(middlewares.RequestContext(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

func getFlashSalesByShopHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var productId *int
		if raw := c.Query("product_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product_id", Code: codeValidation})
				return
			}
			productId = &id
		}
		sales, err := models.GetFlashSalesByShop(middlewares.RequestContext(c), productId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"flash_sales": sales})
	}
}

func getCurrentFlashSalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sales, err := models.GetCurrentFlashSales(middlewares.RequestContext(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"flash_sales": sales})
	}
}

type soldAdjustInput struct {
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
	OrderKey string `json:"order_key"`
}

func increaseSoldHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input soldAdjustInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}

		ctx, span := tracer.Start(middlewares.RequestContext(c), "flashsale.IncreaseSold")
		defer span.End()

		newSold, err := models.IncreaseSold(ctx, id, input.Quantity, input.OrderKey)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"flash_sale_id": id, "quantity_sold": newSold})
	}
}

func releaseSoldHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input soldAdjustInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation})
			return
		}
		newSold, err := models.ReleaseSold(middlewares.RequestContext(c), id, input.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"flash_sale_id": id, "quantity_sold": newSold})
	}
}
