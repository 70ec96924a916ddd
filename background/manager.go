package background

import (
	"errors"

	"github.com/RichardKnop/machinery/v1"
	"github.com/jinzhu/gorm"
	"github.com/spf13/viper"
	"github.com/uber-go/tally"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bitmark-inc/georisk-api/external/geoinfo"
	"github.com/bitmark-inc/georisk-api/scoring"
	"github.com/bitmark-inc/georisk-api/store"
)

// BackgroundManager is a struct for georisk background manager
type BackgroundManager struct {
	mongo store.MongoStore

	runner *scoring.Runner

	geoinfo geoinfo.GeoInfo

	taskServer *machinery.Server

	worker *machinery.Worker
}

func New(ormDB *gorm.DB, mongoClient *mongo.Client, taskServer *machinery.Server, geoClient geoinfo.GeoInfo) (*BackgroundManager, error) {
	mongoStore := store.NewMongoStore(
		mongoClient,
		viper.GetString("mongo.database"),
	)
	geoRiskStore := store.NewGeoRiskStore(ormDB, mongoStore)

	cfg, err := scoring.LoadConfig()
	if err != nil {
		return nil, err
	}

	engine := scoring.NewEngine(mongoStore, cfg, tally.NoopScope)

	return &BackgroundManager{
		mongo:      mongoStore,
		runner:     scoring.NewRunner(engine, geoRiskStore),
		geoinfo:    geoClient,
		taskServer: taskServer,
	}, nil
}

func (m *BackgroundManager) RegisterTask(name string, taskFunc interface{}) error {
	return m.taskServer.RegisterTask(name, taskFunc)
}

// Run spawn workers to execute background jobs
func (m *BackgroundManager) Run() error {
	if m.worker != nil {
		return errors.New("background worker has started")
	}
	m.worker = m.taskServer.NewWorker("georisk-worker", 5)
	return m.worker.Launch()
}
