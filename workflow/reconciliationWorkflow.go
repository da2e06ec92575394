package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"bitbucket.org/mmdatafocus/livemall_catalog/models"
	"github.com/sirupsen/logrus"
)

// ProcessFlashSaleReconciliation sweeps ended flash sales and settles their
// unsold reservation back into sellable stock. Per-sale failures are logged
// and skipped; the sale stays unreconciled and is retried on the next cycle
// (at-least-once, idempotent inside models.ReconcileFlashSale).
func ProcessFlashSaleReconciliation(ctx context.Context, logger *logrus.Logger, batchSize int) (settled int, err error) {

	ids, err := models.ListReconcilableFlashSaleIds(ctx, batchSize)
	if err != nil {
		config.LogError(logger, "reconciliationWorkflow.go", "ProcessFlashSaleReconciliation", "listing reconcilable sales", nil, err)
		return 0, err
	}

	for _, id := range ids {
		done, err := models.ReconcileFlashSale(ctx, id)
		if err != nil {
			config.LogError(logger, "reconciliationWorkflow.go", "ProcessFlashSaleReconciliation", "reconciling flash sale", id, err)
			continue
		}
		if done {
			settled++
		}
	}

	if settled > 0 {
		logger.WithFields(logrus.Fields{
			"module":  "reconciliationWorkflow.go",
			"settled": settled,
			"due":     len(ids),
		}).Info("flash sale reconciliation cycle complete")
	}
	return settled, nil
}
