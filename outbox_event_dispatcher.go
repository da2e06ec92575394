package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"bitbucket.org/mmdatafocus/livemall_catalog/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxEventDispatcher drains unpublished flash sale lifecycle events from the
// outbox table to Pub/Sub. Claiming uses FOR UPDATE SKIP LOCKED so multiple
// instances can run concurrently without double-publishing; a crashed worker's
// claims expire via LockTTL and are re-claimed on a later pass.
type OutboxEventDispatcher struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	WorkerID  string
	BatchSize int
	Interval  time.Duration
	LockTTL   time.Duration
}

func NewOutboxEventDispatcher(db *gorm.DB, logger *logrus.Logger) *OutboxEventDispatcher {
	host, _ := os.Hostname()
	return &OutboxEventDispatcher{
		DB:        db,
		Logger:    logger,
		WorkerID:  fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		BatchSize: 50,
		Interval:  5 * time.Second,
		LockTTL:   2 * time.Minute,
	}
}

func (d *OutboxEventDispatcher) Run(ctx context.Context) {
	d.Logger.WithFields(logrus.Fields{
		"module":    "outbox_event_dispatcher.go",
		"worker_id": d.WorkerID,
	}).Info("outbox event dispatcher started")

	if err := config.EnsureFlashSaleTopic(ctx); err != nil {
		// Events stay queued in the outbox; publishing retries each cycle.
		config.LogError(d.Logger, "outbox_event_dispatcher.go", "Run", "ensuring events topic", nil, err)
	}

	for {
		select {
		case <-ctx.Done():
			d.Logger.WithFields(logrus.Fields{
				"module":    "outbox_event_dispatcher.go",
				"worker_id": d.WorkerID,
			}).Info("outbox event dispatcher stopping")
			return
		case <-time.After(d.Interval):
			if err := d.processOnce(ctx); err != nil {
				config.LogError(d.Logger, "outbox_event_dispatcher.go", "Run", "dispatch cycle", d.WorkerID, err)
			}
		}
	}
}

func (d *OutboxEventDispatcher) processOnce(ctx context.Context) error {
	var claimed []models.FlashSaleEventRecord

	// Claim a batch: unpublished rows that are unlocked or whose lock expired.
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staleBefore := time.Now().UTC().Add(-d.LockTTL)
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("is_published = 0").
			Where("locked_at IS NULL OR locked_at < ?", staleBefore).
			Order("id").
			Limit(d.BatchSize).
			Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		ids := make([]int, 0, len(claimed))
		for _, ev := range claimed {
			ids = append(ids, ev.ID)
		}
		now := time.Now().UTC()
		return tx.Model(&models.FlashSaleEventRecord{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"locked_at": now,
				"locked_by": d.WorkerID,
			}).Error
	})
	if err != nil || len(claimed) == 0 {
		return err
	}

	for _, ev := range claimed {
		msg := config.FlashSaleEventMessage{
			ID:            ev.ID,
			ShopId:        ev.ShopId,
			FlashSaleId:   ev.FlashSaleId,
			EventType:     string(ev.EventType),
			OccurredAt:    ev.OccurredAt,
			Payload:       ev.Payload,
			CorrelationId: ev.CorrelationId,
		}
		_, pubErr := config.PublishFlashSaleEvent(ctx, msg)
		if pubErr != nil {
			// Record the failure and release the claim so a later pass retries.
			errText := pubErr.Error()
			_ = d.DB.WithContext(ctx).Model(&models.FlashSaleEventRecord{}).
				Where("id = ?", ev.ID).
				Updates(map[string]interface{}{
					"publish_error": &errText,
					"locked_at":     nil,
					"locked_by":     nil,
				}).Error
			config.LogError(d.Logger, "outbox_event_dispatcher.go", "processOnce", "publishing event", ev.ID, pubErr)
			continue
		}
		if err := d.DB.WithContext(ctx).Model(&models.FlashSaleEventRecord{}).
			Where("id = ?", ev.ID).
			Updates(map[string]interface{}{
				"is_published":  true,
				"publish_error": nil,
				"locked_at":     nil,
				"locked_by":     nil,
			}).Error; err != nil {
			config.LogError(d.Logger, "outbox_event_dispatcher.go", "processOnce", "marking event published", ev.ID, err)
		}
	}
	return nil
}
