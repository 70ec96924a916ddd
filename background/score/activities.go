package score

import (
	"context"

	"go.uber.org/cadence/activity"
	"go.uber.org/zap"
)

// ScoreSitesActivity runs one full correlation scoring pass.
func (w *RiskUpdateWorker) ScoreSitesActivity(ctx context.Context) error {
	logger := activity.GetLogger(ctx)

	summary, err := w.runner.Score(ctx)
	if err != nil {
		return err
	}

	logger.Info("Scored sites.",
		zap.Int("written", summary.SitesWritten),
		zap.Int("skipped", summary.SitesSkipped))
	return nil
}

// DetectAnomaliesActivity refreshes the anomaly fields of stored scores.
func (w *RiskUpdateWorker) DetectAnomaliesActivity(ctx context.Context) error {
	logger := activity.GetLogger(ctx)

	summary, err := w.runner.DetectAnomalies(ctx)
	if err != nil {
		return err
	}

	logger.Info("Detected anomalies.",
		zap.Int("scored", summary.SitesScored),
		zap.Int("anomalies", summary.Anomalies))
	return nil
}

// AnalyzeDensityActivity refreshes urban feature density values.
func (w *RiskUpdateWorker) AnalyzeDensityActivity(ctx context.Context) error {
	logger := activity.GetLogger(ctx)

	summary, err := w.runner.AnalyzeDensity(ctx)
	if err != nil {
		return err
	}

	logger.Info("Analyzed density.",
		zap.Int("features", summary.Features),
		zap.Int("updated", summary.FeaturesUpdated))
	return nil
}

// LabelObservationsActivity refreshes nearest-site labels.
func (w *RiskUpdateWorker) LabelObservationsActivity(ctx context.Context) error {
	logger := activity.GetLogger(ctx)

	summary, err := w.runner.Label(ctx)
	if err != nil {
		return err
	}

	labeled := 0
	for _, n := range summary.Labeled {
		labeled += n
	}
	logger.Info("Labeled observations.", zap.Int("labeled", labeled))
	return nil
}
