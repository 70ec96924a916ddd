package score

import (
	"github.com/uber-go/tally"
	"go.uber.org/cadence/.gen/go/cadence/workflowserviceclient"
	"go.uber.org/cadence/activity"
	"go.uber.org/cadence/worker"
	"go.uber.org/cadence/workflow"
	"go.uber.org/zap"

	"github.com/bitmark-inc/georisk-api/scoring"
)

const TaskListName = "georisk-score-tasks"

type RiskUpdateWorker struct {
	domain string
	runner *scoring.Runner
}

func NewRiskUpdateWorker(domain string, runner *scoring.Runner) *RiskUpdateWorker {
	return &RiskUpdateWorker{
		domain: domain,
		runner: runner,
	}
}

func (w *RiskUpdateWorker) Register() {
	workflow.RegisterWithOptions(w.RiskRefreshWorkflow, workflow.RegisterOptions{Name: "RiskRefreshWorkflow"})

	activity.RegisterWithOptions(w.ScoreSitesActivity, activity.RegisterOptions{Name: "ScoreSitesActivity"})
	activity.RegisterWithOptions(w.DetectAnomaliesActivity, activity.RegisterOptions{Name: "DetectAnomaliesActivity"})
	activity.RegisterWithOptions(w.AnalyzeDensityActivity, activity.RegisterOptions{Name: "AnalyzeDensityActivity"})
	activity.RegisterWithOptions(w.LabelObservationsActivity, activity.RegisterOptions{Name: "LabelObservationsActivity"})
}

func (w *RiskUpdateWorker) Start(service workflowserviceclient.Interface, logger *zap.Logger) {
	// TaskListName identifies set of client workflows, activities, and workers.
	// It could be your group or client or application name.
	workerOptions := worker.Options{
		Logger:       logger,
		MetricsScope: tally.NewTestScope(TaskListName, map[string]string{}),
	}

	worker := worker.New(
		service,
		w.domain,
		TaskListName,
		workerOptions)

	if err := worker.Start(); err != nil {
		panic("Failed to start worker")
	}

	logger.Info("Started Worker.", zap.String("worker", TaskListName))

	select {}
}
