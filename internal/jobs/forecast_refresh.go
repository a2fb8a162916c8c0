package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"RealityFlow/api/flow"
	"RealityFlow/internal/config"
	"RealityFlow/internal/logger"
)

// ForecastRefreshConfig holds configuration for the nightly forecast rebuild
type ForecastRefreshConfig struct {
	Schedule    string
	HorizonDays int
	TimeZone    string
}

// NewDefaultForecastConfig creates a ForecastRefreshConfig with default values
func NewDefaultForecastConfig() *ForecastRefreshConfig {
	return &ForecastRefreshConfig{
		Schedule:    config.DefaultForecastSchedule,
		HorizonDays: config.DefaultHorizonDays,
		TimeZone:    config.DefaultTimeZone,
	}
}

// RunForecastRefresher starts the cron job that reruns the simulation from
// the current date every night.
func RunForecastRefresher(cfg *ForecastRefreshConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultForecastSchedule
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = config.DefaultHorizonDays
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		runID, err := flow.Refresh(ctx, db, cfg.HorizonDays)
		if err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Forecast refresh failed: %v", err))
			return
		}
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Forecast refresh completed, run %s", runID))
	})

	if err != nil {
		return fmt.Errorf("unable to schedule forecast refresher: %v", err)
	}

	c.Start()
	logger.GlobalLogger.LogAudit("Forecast refresher started")

	return nil
}

// PruneForecastRuns deletes persisted runs older than the retention window.
func PruneForecastRuns(db *pgxpool.Pool, keepDays int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err := db.Exec(ctx,
		`DELETE FROM forecast_runs WHERE created_at < now() - make_interval(days => $1)`, keepDays)
	return err
}
