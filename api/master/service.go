package master

import (
	"database/sql"
	"log"
)

type MasterService struct {
	config map[string]interface{}
	db     *sql.DB
}

func NewMasterService(config map[string]interface{}, db *sql.DB) *MasterService {
	return &MasterService{config: config, db: db}
}

func (s *MasterService) Name() string {
	return "master"
}

func (s *MasterService) Start() error {
	log.Println("[MasterService] Starting master data service...")
	go StartMasterService(s.db)
	return nil
}

func (s *MasterService) Stop() error {
	log.Println("[MasterService] Stopping master data service...")
	return nil
}
