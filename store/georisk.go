package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/bitmark-inc/georisk-api/schema"
)

// georisk main datastore
type GeoRiskCore interface {
	Ping() error

	// ScoringRun
	CreateScoringRun(kind string) (*schema.ScoringRun, error)
	FinishScoringRun(runID uuid.UUID, status schema.ScoringRunStatus, processed, failed, anomalies int, summary string) error
	ListScoringRuns(count int) ([]schema.ScoringRun, error)
}

// GeoRiskStore is an implementation of GeoRiskCore
type GeoRiskStore struct {
	ormDB *gorm.DB
	mongo MongoStore
}

func NewGeoRiskStore(ormDB *gorm.DB, mongo MongoStore) *GeoRiskStore {
	return &GeoRiskStore{
		ormDB: ormDB,
		mongo: mongo,
	}
}

// Ping is to check the storage health status
func (s *GeoRiskStore) Ping() error {
	return s.ormDB.DB().Ping()
}

// CreateScoringRun records the start of a scoring or anomaly pass.
func (s *GeoRiskStore) CreateScoringRun(kind string) (*schema.ScoringRun, error) {
	run := schema.ScoringRun{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    schema.ScoringRunRunning,
		StartedAt: time.Now().UTC(),
	}

	if err := s.ormDB.Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// FinishScoringRun closes a run with its final status and counters.
func (s *GeoRiskStore) FinishScoringRun(runID uuid.UUID, status schema.ScoringRunStatus, processed, failed, anomalies int, summary string) error {
	now := time.Now().UTC()
	return s.ormDB.Model(&schema.ScoringRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":          status,
			"sites_processed": processed,
			"sites_failed":    failed,
			"anomaly_count":   anomalies,
			"stage_summary":   summary,
			"finished_at":     &now,
		}).Error
}

// ListScoringRuns returns the most recent runs, newest first.
func (s *GeoRiskStore) ListScoringRuns(count int) ([]schema.ScoringRun, error) {
	runs := make([]schema.ScoringRun, 0)
	if err := s.ormDB.Order("started_at desc").Limit(count).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
