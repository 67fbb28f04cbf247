package jobs

import (
	"fmt"
	"log"
	"time"

	"FleetRentOps/internal/config"
	"FleetRentOps/internal/logger"
	"FleetRentOps/internal/serviceiface"
	"FleetRentOps/internal/session"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// CronService runs the janitor schedules: dropping finished batch
// reports past retention and purging staged import rows. It never
// retries failed rows on its own; retry is an explicit operator action.
type CronService struct {
	cfg      map[string]interface{}
	pool     *pgxpool.Pool
	registry *session.Manager
	cron     *cron.Cron
}

func NewCronService(cfg map[string]interface{}, pool *pgxpool.Pool, registry *session.Manager) serviceiface.Service {
	return &CronService{
		cfg:      cfg,
		pool:     pool,
		registry: registry,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	cleanupSchedule := config.DefaultCleanupSchedule
	purgeSchedule := config.DefaultStagingPurgeSchedule
	retention := time.Duration(config.BatchRetentionMinutes) * time.Minute
	if s.cfg != nil {
		if v, ok := s.cfg["cleanup_schedule"].(string); ok && v != "" {
			cleanupSchedule = v
		}
		if v, ok := s.cfg["staging_purge_schedule"].(string); ok && v != "" {
			purgeSchedule = v
		}
		if v, ok := s.cfg["batch_retention_minutes"].(int); ok && v > 0 {
			retention = time.Duration(v) * time.Minute
		} else if f, ok := s.cfg["batch_retention_minutes"].(float64); ok && f > 0 {
			retention = time.Duration(f) * time.Minute
		}
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(cleanupSchedule, func() {
		s.cleanupBatches(retention)
	}); err != nil {
		return fmt.Errorf("failed to schedule batch cleanup: %v", err)
	}
	if _, err := s.cron.AddFunc(purgeSchedule, s.purgeStagedRows); err != nil {
		return fmt.Errorf("failed to schedule staging purge: %v", err)
	}
	s.cron.Start()

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started with batch cleanup and staging purge")
	}
	log.Println("Cron service started, janitor schedules registered")
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	return nil
}
