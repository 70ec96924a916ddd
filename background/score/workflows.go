package score

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/cadence/workflow"
	"go.uber.org/zap"
)

const RiskRefreshInterval = 6 * time.Hour

var activityOptions = workflow.ActivityOptions{
	ScheduleToStartTimeout: time.Minute,
	StartToCloseTimeout:    30 * time.Minute,
	HeartbeatTimeout:       time.Minute,
}

// RiskRefreshWorkflow runs the full refresh cycle periodically: scoring,
// anomaly detection, density analysis and nearest-site labeling. A signal
// triggers an immediate refresh. Anomaly detection runs strictly after
// scoring since it consumes the stored score vectors.
func (w *RiskUpdateWorker) RiskRefreshWorkflow(ctx workflow.Context) error {
	ctx = workflow.WithActivityOptions(ctx, activityOptions)
	signalChan := workflow.GetSignalChannel(ctx, "riskRefreshSignal")
	defer signalChan.Close()

	logger := workflow.GetLogger(ctx)
	selector := workflow.NewSelector(ctx)

	timerCancelCtx, cancelTimerHandler := workflow.WithCancel(ctx)
	timerFuture := workflow.NewTimer(timerCancelCtx, RiskRefreshInterval)
	selector.AddFuture(timerFuture, func(f workflow.Future) {
		logger.Info("Start periodic risk refresh")
	})

	selector.AddReceive(signalChan, func(c workflow.Channel, more bool) {
		cancelTimerHandler()
		signalChan.Receive(ctx, nil)

		logger.Info("Trigger risk refresh by signal")
	})

	selector.Select(ctx)

	if err := workflow.ExecuteActivity(ctx, w.ScoreSitesActivity).Get(ctx, nil); err != nil {
		logger.Error("Fail to score sites.", zap.Error(err))
		sentry.CaptureException(err)
		return workflow.NewContinueAsNewError(ctx, w.RiskRefreshWorkflow)
	}

	if err := workflow.ExecuteActivity(ctx, w.DetectAnomaliesActivity).Get(ctx, nil); err != nil {
		logger.Error("Fail to detect anomalies.", zap.Error(err))
		sentry.CaptureException(err)
		return workflow.NewContinueAsNewError(ctx, w.RiskRefreshWorkflow)
	}

	if err := workflow.ExecuteActivity(ctx, w.AnalyzeDensityActivity).Get(ctx, nil); err != nil {
		logger.Error("Fail to analyze density.", zap.Error(err))
		sentry.CaptureException(err)
	}

	if err := workflow.ExecuteActivity(ctx, w.LabelObservationsActivity).Get(ctx, nil); err != nil {
		logger.Error("Fail to label observations.", zap.Error(err))
		sentry.CaptureException(err)
	}

	return workflow.NewContinueAsNewError(ctx, w.RiskRefreshWorkflow)
}
