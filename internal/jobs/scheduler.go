package jobs

import (
	"fmt"
	"log"

	"RealityFlow/internal/logger"
	"RealityFlow/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	forecastConfig := NewDefaultForecastConfig()

	// Override from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["forecast_schedule"].(string); ok && schedule != "" {
			forecastConfig.Schedule = schedule
		}
		if horizon, ok := s.config["forecast_horizon_days"].(int); ok && horizon > 0 {
			forecastConfig.HorizonDays = horizon
		}
		if tz, ok := s.config["timezone"].(string); ok && tz != "" {
			forecastConfig.TimeZone = tz
		}
	}

	err := RunForecastRefresher(forecastConfig, s.db)
	if err != nil {
		return fmt.Errorf("failed to start forecast refresher: %v", err)
	}

	logger.GlobalLogger.LogAudit("Cron service started with forecast refresher")
	log.Println("Cron service started — Forecast Refresher scheduled")

	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
