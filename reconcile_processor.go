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

// ReconcileProcessor periodically settles ended flash sales: remaining
// reserved units flow back to sellable stock. One instance runs the sweep per
// cycle; a short Redis lock elects it so multiple replicas don't hammer the
// same rows (the sweep itself is idempotent, the lock just avoids wasted work).
type ReconcileProcessor struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	BatchSize int
	Interval  time.Duration
}

func NewReconcileProcessor(db *gorm.DB, logger *logrus.Logger) *ReconcileProcessor {
	return &ReconcileProcessor{
		DB:        db,
		Logger:    logger,
		BatchSize: 100,
		Interval:  time.Minute,
	}
}

func (p *ReconcileProcessor) Run(ctx context.Context) {
	p.Logger.WithFields(logrus.Fields{
		"module": "reconcile_processor.go",
	}).Info("flash sale reconcile processor started")

	for {
		select {
		case <-ctx.Done():
			p.Logger.WithFields(logrus.Fields{
				"module": "reconcile_processor.go",
			}).Info("flash sale reconcile processor stopping")
			return
		case <-time.After(p.Interval):
			p.sweepOnce(ctx)
		}
	}
}

func (p *ReconcileProcessor) sweepOnce(ctx context.Context) {
	locker := config.GetRedisLock()
	if locker != nil {
		lock, err := locker.Obtain(ctx, "flashsale:reconcile:leader", p.Interval, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				// Another replica is sweeping this cycle.
				return
			}
			config.LogError(p.Logger, "reconcile_processor.go", "sweepOnce", "obtaining leader lock", nil, err)
			return
		}
		defer lock.Release(context.Background())
	}

	if _, err := workflow.ProcessFlashSaleReconciliation(ctx, p.Logger, p.BatchSize); err != nil {
		config.LogError(p.Logger, "reconcile_processor.go", "sweepOnce", "reconciliation sweep", nil, err)
	}
}
