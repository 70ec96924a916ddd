package schema

import (
	"time"

	"github.com/google/uuid"
)

// ScoringRunStatus tracks the lifecycle of one batch scoring pass.
type ScoringRunStatus string

const (
	ScoringRunRunning   ScoringRunStatus = "running"
	ScoringRunCompleted ScoringRunStatus = "completed"
	ScoringRunFailed    ScoringRunStatus = "failed"
)

// ScoringRun is the relational history record of one scoring or anomaly
// pass, persisted for operational reporting.
type ScoringRun struct {
	ID             uuid.UUID        `json:"id" gorm:"type:uuid;primary_key"`
	Kind           string           `json:"kind"`
	Status         ScoringRunStatus `json:"status"`
	SitesProcessed int              `json:"sites_processed"`
	SitesFailed    int              `json:"sites_failed"`
	AnomalyCount   int              `json:"anomaly_count"`
	StageSummary   string           `json:"stage_summary" gorm:"type:text"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     *time.Time       `json:"finished_at"`
}

func (ScoringRun) TableName() string {
	return "scoring_runs"
}
