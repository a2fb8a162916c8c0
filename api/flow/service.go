package flow

import (
	"RealityFlow/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FlowService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewFlowService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &FlowService{config: cfg, pool: pool}
}

func (s *FlowService) Name() string {
	return "flow"
}

func (s *FlowService) Start() error {
	go StartFlowService(s.pool)
	return nil
}

func (s *FlowService) Stop() error {
	return nil
}
