package main

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"bitbucket.org/mmdatafocus/livemall_catalog/workflow"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DiscountSyncProcessor keeps the denormalized flash_sale_price columns on the
// catalog listing tables in step with the slot calendar. It runs on slot
// boundaries plus a steady interval to catch cancellations and sell-outs
// between boundaries.
type DiscountSyncProcessor struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Interval time.Duration
}

func NewDiscountSyncProcessor(db *gorm.DB, logger *logrus.Logger) *DiscountSyncProcessor {
	return &DiscountSyncProcessor{
		DB:       db,
		Logger:   logger,
		Interval: 30 * time.Second,
	}
}

func (p *DiscountSyncProcessor) Run(ctx context.Context) {
	p.Logger.WithFields(logrus.Fields{
		"module": "discount_sync_processor.go",
	}).Info("discount sync processor started")

	for {
		select {
		case <-ctx.Done():
			p.Logger.WithFields(logrus.Fields{
				"module": "discount_sync_processor.go",
			}).Info("discount sync processor stopping")
			return
		case <-time.After(p.Interval):
			p.syncOnce(ctx)
		}
	}
}

func (p *DiscountSyncProcessor) syncOnce(ctx context.Context) {
	locker := config.GetRedisLock()
	if locker != nil {
		lock, err := locker.Obtain(ctx, "flashsale:discountsync:leader", p.Interval, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				return
			}
			config.LogError(p.Logger, "discount_sync_processor.go", "syncOnce", "obtaining leader lock", nil, err)
			return
		}
		defer lock.Release(context.Background())
	}

	if err := workflow.ProcessDiscountSync(ctx, p.Logger); err != nil {
		config.LogError(p.Logger, "discount_sync_processor.go", "syncOnce", "discount sync cycle", nil, err)
	}
}
