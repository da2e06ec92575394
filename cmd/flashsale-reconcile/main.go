// One-shot reconciliation sweep. Intended for Cloud Scheduler / cron jobs and
// for manual operator runs: settles every ended, unreconciled flash sale and
// exits. The in-server processor does the same continuously; this tool exists
// so reconciliation still happens when the API service is scaled to zero.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bitbucket.org/mmdatafocus/livemall_catalog/config"
	"bitbucket.org/mmdatafocus/livemall_catalog/workflow"
)

func main() {
	batchSize := flag.Int("batch", 500, "max sales settled per run")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.ConnectDatabaseWithRetry()
	logger := config.GetLogger()

	settled, err := workflow.ProcessFlashSaleReconciliation(ctx, logger, *batchSize)
	if err != nil {
		log.Fatalf("reconciliation sweep failed: %v", err)
	}
	log.Printf("reconciliation sweep complete (settled=%d)", settled)
}
