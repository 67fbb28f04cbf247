package jobs

import (
	"context"
	"log"
	"time"

	"FleetRentOps/api/recon"
	"FleetRentOps/internal/config"
	"FleetRentOps/internal/logger"
)

// cleanupBatches drops finished batch reports older than the retention
// window from the in-memory registry. Running batches are never touched.
func (s *CronService) cleanupBatches(retention time.Duration) {
	removed := s.registry.CleanupFinished(retention)
	if removed > 0 {
		log.Printf("[Cron] removed %d finished batches from registry", removed)
	}
}

// purgeStagedRows deletes staged import rows past the staging retention
// window. Retry of a batch whose rows were purged returns a conflict.
func (s *CronService) purgeStagedRows() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	olderThan := time.Duration(config.StagingRetentionDays) * 24 * time.Hour
	purged, err := recon.NewPgxLedger(s.pool).PurgeStagedRows(ctx, olderThan)
	if err != nil {
		log.Printf("[Cron] staging purge failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("[Cron] purged %d staged rows older than %d days", purged, config.StagingRetentionDays)
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit("staging purge completed")
		}
	}
}
