package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/client"
	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
)

func TestGetCurrentFlashSales(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/internal/flash-sales/active" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flash_sales":[{"id":7,"shop_id":"shop-1","product_id":3,"flash_sale_price":"4500","quantity_available":100,"quantity_sold":40,"start_time":"2026-09-14T03:00:00Z","end_time":"2026-09-14T06:00:00Z"}]}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	sales, err := c.GetCurrentFlashSales(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentFlashSales: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale; got %d", len(sales))
	}
	s := sales[0]
	if s.ID != 7 || s.ShopId != "shop-1" || s.QuantityAvailable != 100 || s.QuantitySold != 40 {
		t.Fatalf("unexpected sale: %+v", s)
	}
	if !s.StartTime.Equal(time.Date(2026, 9, 14, 3, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start time: %s", s.StartTime)
	}
}

func TestIncreaseSoldSendsOrderKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/internal/flash-sales/7/increase-sold" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["order_key"] != "order-77" {
			t.Errorf("expected order_key=order-77; got %v", body["order_key"])
		}
		if body["quantity"] != float64(2) {
			t.Errorf("expected quantity=2; got %v", body["quantity"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flash_sale_id":7,"quantity_sold":42}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	sold, err := c.IncreaseSold(context.Background(), 7, 2, "order-77")
	if err != nil {
		t.Fatalf("IncreaseSold: %v", err)
	}
	if sold != 42 {
		t.Fatalf("expected quantity_sold=42; got %d", sold)
	}
}

func TestWireErrorCodesMapToSentinels(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"sold out", http.StatusConflict, "FLASH_SALE_SOLD_OUT", utils.ErrInsufficientFlashSaleStock},
		{"not active", http.StatusConflict, "FLASH_SALE_NOT_ACTIVE", utils.ErrFlashSaleNotActive},
		{"slot conflict", http.StatusConflict, "SLOT_CONFLICT", utils.ErrSlotConflict},
		{"insufficient stock", http.StatusConflict, "INSUFFICIENT_STOCK", utils.ErrInsufficientStock},
		{"alignment", http.StatusUnprocessableEntity, "INVALID_SLOT_ALIGNMENT", utils.ErrInvalidSlotAlignment},
		{"not found", http.StatusNotFound, "NOT_FOUND", utils.ErrorRecordNotFound},
		{"validation", http.StatusBadRequest, "VALIDATION_ERROR", utils.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": tc.name,
					"code":  tc.code,
				})
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			_, err := c.IncreaseSold(context.Background(), 9, 1, "order-1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("code %s: expected %v; got %v", tc.code, tc.want, err)
			}
		})
	}
}

func TestReleaseSold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/flash-sales/7/release-sold" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flash_sale_id":7,"quantity_sold":40}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	sold, err := c.ReleaseSold(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("ReleaseSold: %v", err)
	}
	if sold != 40 {
		t.Fatalf("expected quantity_sold=40; got %d", sold)
	}
}

func TestUnknownErrorShapeDoesNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	_, err := c.GetCurrentFlashSales(context.Background())
	if err == nil {
		t.Fatal("expected error for non-JSON failure body")
	}
}
