// balance-reconcile scans invoices for remaining balances that drifted from
// their derived value (grand total - payments - returns) and repairs them,
// appending one audit row per corrected invoice.
//
// Usage:
//
//	go run ./cmd/balance-reconcile -dry-run                      # report only
//	go run ./cmd/balance-reconcile -from 2026-01-01 -dry-run
//	go run ./cmd/balance-reconcile -dry-run=false -confirm=RECONCILE
//
// Writes require both -dry-run=false and -confirm=RECONCILE. The tool takes
// a maintenance lock so two passes never run at once.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/workflow"
)

func main() {
	fromFlag := flag.String("from", "", "only invoices dated on or after this day (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "only invoices dated on or before this day (YYYY-MM-DD)")
	dryRun := flag.Bool("dry-run", true, "report corrections without writing them")
	confirm := flag.String("confirm", "", "must be RECONCILE to write corrections")
	flag.Parse()

	if !*dryRun && *confirm != "RECONCILE" {
		fmt.Fprintln(os.Stderr, "refusing to write: pass -confirm=RECONCILE with -dry-run=false")
		os.Exit(2)
	}

	fromDate, err := parseDay(*fromFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "-from:", err)
		os.Exit(2)
	}
	toDate, err := parseDay(*toFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "-to:", err)
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	db := config.GetDB()
	logger := config.GetLogger()

	ctx := context.Background()
	lock, err := workflow.AcquireMaintenanceLock(ctx, db, "balance-reconcile", 30*time.Minute)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lock.Release(ctx)

	summary, err := workflow.RunBalanceReconciliation(db, logger, fromDate, toDate, *dryRun)
	if summary != nil {
		mode := "write"
		if *dryRun {
			mode = "dry-run"
		}
		fmt.Printf("mode=%s scanned=%d corrected=%d audit_records=%d failed=%d\n",
			mode, summary.Scanned, summary.Corrected, summary.AuditRecords, summary.Failed)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "reconciliation aborted:", err)
		os.Exit(1)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}
