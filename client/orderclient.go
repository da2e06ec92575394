// Package client is the SDK the Order service uses to talk to the catalog's
// flash sale endpoints. It translates wire error codes back into the sentinel
// errors callers switch on, so saga code on the order side reads the same as
// it would in-process.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type Client struct {
	http *resty.Client
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func WithRetries(count int) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FlashSaleSummary mirrors the catalog's active-sale read shape.
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

type wireError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// decodeError maps wire codes to the shared sentinel taxonomy.
func decodeError(body []byte, status int) error {
	var we wireError
	if err := json.Unmarshal(body, &we); err != nil {
		return fmt.Errorf("catalog service returned status %d", status)
	}
	switch we.Code {
	case "INVALID_SLOT_ALIGNMENT":
		return utils.ErrInvalidSlotAlignment
	case "SLOT_CONFLICT":
		return utils.ErrSlotConflict
	case "INSUFFICIENT_STOCK":
		return utils.ErrInsufficientStock
	case "FLASH_SALE_SOLD_OUT":
		return utils.ErrInsufficientFlashSaleStock
	case "FLASH_SALE_NOT_ACTIVE":
		return utils.ErrFlashSaleNotActive
	case "NOT_FOUND":
		return utils.ErrorRecordNotFound
	case "VALIDATION_ERROR":
		return fmt.Errorf("%w: %s", utils.ErrValidation, we.Error)
	default:
		return fmt.Errorf("catalog service error (%d): %s", status, we.Error)
	}
}

// GetCurrentFlashSales fetches every sale active right now, across all shops.
// Called when pricing cart lines at checkout.
func (c *Client) GetCurrentFlashSales(ctx context.Context) ([]*FlashSaleSummary, error) {
	var out struct {
		FlashSales []*FlashSaleSummary `json:"flash_sales"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/internal/flash-sales/active")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeError(resp.Body(), resp.StatusCode())
	}
	return out.FlashSales, nil
}

type soldResult struct {
	FlashSaleId  int   `json:"flash_sale_id"`
	QuantitySold int64 `json:"quantity_sold"`
}

// IncreaseSold consumes flash sale capacity for an order. orderKey should be
// the order's id; retries with the same key replay the original result.
// Returns the sale's quantity sold after the increment.
func (c *Client) IncreaseSold(ctx context.Context, flashSaleId int, quantity int64, orderKey string) (int64, error) {
	var out soldResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"quantity":  quantity,
			"order_key": orderKey,
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/internal/flash-sales/%d/increase-sold", flashSaleId))
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, decodeError(resp.Body(), resp.StatusCode())
	}
	return out.QuantitySold, nil
}

// ReleaseSold compensates a failed order by returning its units to the sale.
func (c *Client) ReleaseSold(ctx context.Context, flashSaleId int, quantity int64) (int64, error) {
	var out soldResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"quantity": quantity,
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/internal/flash-sales/%d/release-sold", flashSaleId))
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, decodeError(resp.Body(), resp.StatusCode())
	}
	return out.QuantitySold, nil
}
