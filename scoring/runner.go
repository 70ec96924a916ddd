package scoring

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/bitmark-inc/georisk-api/schema"
	"github.com/bitmark-inc/georisk-api/store"
)

// Run kinds recorded in the relational history.
const (
	RunKindScoring = "scoring"
	RunKindAnomaly = "anomaly"
	RunKindDensity = "density"
	RunKindLabel   = "label"
)

// Runner wraps each engine pass with relational run history so operators
// can inspect what ran, when and with what outcome.
type Runner struct {
	engine *Engine
	runs   *store.GeoRiskStore
}

func NewRunner(engine *Engine, runs *store.GeoRiskStore) *Runner {
	return &Runner{engine: engine, runs: runs}
}

// Score runs one full scoring pass under a history record.
func (r *Runner) Score(ctx context.Context) (*RunSummary, error) {
	run, err := r.runs.CreateScoringRun(RunKindScoring)
	if err != nil {
		return nil, err
	}

	summary, err := r.engine.RunScoring(ctx)
	if err != nil {
		r.finish(run.ID, schema.ScoringRunFailed, 0, 0, 0, err.Error())
		return nil, err
	}

	r.finish(run.ID, schema.ScoringRunCompleted, summary.SitesWritten, summary.SitesSkipped, 0, marshalSummary(summary))
	return summary, nil
}

// DetectAnomalies runs one detection pass under a history record.
func (r *Runner) DetectAnomalies(ctx context.Context) (*AnomalySummary, error) {
	run, err := r.runs.CreateScoringRun(RunKindAnomaly)
	if err != nil {
		return nil, err
	}

	summary, err := r.engine.RunAnomalyDetection(ctx)
	if err != nil {
		r.finish(run.ID, schema.ScoringRunFailed, 0, 0, 0, err.Error())
		return nil, err
	}

	r.finish(run.ID, schema.ScoringRunCompleted, summary.SitesUpdated, summary.SitesSkipped, summary.Anomalies, marshalSummary(summary))
	return summary, nil
}

// AnalyzeDensity runs one density pass under a history record.
func (r *Runner) AnalyzeDensity(ctx context.Context) (*DensitySummary, error) {
	run, err := r.runs.CreateScoringRun(RunKindDensity)
	if err != nil {
		return nil, err
	}

	summary, err := r.engine.RunDensityAnalysis(ctx)
	if err != nil {
		r.finish(run.ID, schema.ScoringRunFailed, 0, 0, 0, err.Error())
		return nil, err
	}

	r.finish(run.ID, schema.ScoringRunCompleted, summary.FeaturesUpdated, 0, 0, marshalSummary(summary))
	return summary, nil
}

// Label runs one nearest-site labeling pass under a history record.
func (r *Runner) Label(ctx context.Context) (*LabelSummary, error) {
	run, err := r.runs.CreateScoringRun(RunKindLabel)
	if err != nil {
		return nil, err
	}

	summary, err := r.engine.LabelNearestSites(ctx)
	if err != nil {
		r.finish(run.ID, schema.ScoringRunFailed, 0, 0, 0, err.Error())
		return nil, err
	}

	labeled := 0
	for _, n := range summary.Labeled {
		labeled += n
	}
	r.finish(run.ID, schema.ScoringRunCompleted, labeled, 0, 0, marshalSummary(summary))
	return summary, nil
}

func (r *Runner) finish(runID uuid.UUID, status schema.ScoringRunStatus, processed, failed, anomalies int, summary string) {
	if err := r.runs.FinishScoringRun(runID, status, processed, failed, anomalies, summary); err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"run":    runID.String(),
			"error":  err,
		}).Error("record run outcome")
	}
}
