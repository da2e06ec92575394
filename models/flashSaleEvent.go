package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FlashSaleEventType string

const (
	FlashSaleEventCreated    FlashSaleEventType = "CREATED"
	FlashSaleEventUpdated    FlashSaleEventType = "UPDATED"
	FlashSaleEventCancelled  FlashSaleEventType = "CANCELLED"
	FlashSaleEventReconciled FlashSaleEventType = "RECONCILED"
)

// FlashSaleEventRecord implements a transactional outbox: lifecycle events are
// written inside the mutating DB transaction and published to Pub/Sub
// asynchronously by the dispatcher after commit. Downstream consumers are the
// search indexer and the notification service.
type FlashSaleEventRecord struct {
	ID            int                `gorm:"primary_key" json:"id"`
	ShopId        string             `gorm:"size:64;index;not null" json:"shop_id"`
	FlashSaleId   int                `gorm:"index;not null" json:"flash_sale_id"`
	EventType     FlashSaleEventType `gorm:"size:30;not null" json:"event_type"`
	OccurredAt    time.Time          `gorm:"not null" json:"occurred_at"`
	Payload       []byte             `gorm:"type:json" json:"payload"`
	IsPublished   bool               `gorm:"not null;default:false;index" json:"is_published"`
	PublishError  *string            `gorm:"type:text" json:"publish_error"`
	LockedAt      *time.Time         `json:"locked_at"`
	LockedBy      *string            `gorm:"size:100" json:"locked_by"`
	CorrelationId string             `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// recordFlashSaleEvent writes the outbox row inside the caller's transaction.
// It does NOT publish; publishing happens after commit.
func recordFlashSaleEvent(ctx context.Context, tx *gorm.DB, sale *FlashSale, eventType FlashSaleEventType) error {
	payload, err := json.Marshal(sale)
	if err != nil {
		return err
	}
	record := FlashSaleEventRecord{
		ShopId:        sale.ShopId,
		FlashSaleId:   sale.ID,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		Payload:       payload,
		IsPublished:   false,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
