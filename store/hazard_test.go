package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitmark-inc/georisk-api/schema"
)

var labeledEventID = primitive.NewObjectID()
var denseFeatureID = primitive.NewObjectID()
var sparseFeatureID = primitive.NewObjectID()
var nearestSiteID = primitive.NewObjectID()

type HazardTestSuite struct {
	suite.Suite
	connURI      string
	testDBName   string
	mongoClient  *mongo.Client
	testDatabase *mongo.Database
	store        MongoStore
}

func NewHazardTestSuite(connURI, dbName string) *HazardTestSuite {
	return &HazardTestSuite{
		connURI:    connURI,
		testDBName: dbName,
	}
}

func (s *HazardTestSuite) SetupSuite() {
	if s.connURI == "" || s.testDBName == "" {
		s.T().Fatal("invalid test suite configuration")
	}

	opts := options.Client().ApplyURI(s.connURI)
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		s.T().Fatalf("create mongo client with error: %s", err)
	}

	if err = mongoClient.Connect(context.Background()); nil != err {
		s.T().Fatalf("connect mongo database with error: %s", err.Error())
	}

	s.mongoClient = mongoClient
	s.testDatabase = mongoClient.Database(s.testDBName)
	s.store = NewMongoStore(mongoClient, s.testDBName)

	// make sure the test suite is run with a clean environment
	if err := s.CleanMongoDB(); err != nil {
		s.T().Fatal(err)
	}
	schema.NewMongoDBIndexer(s.connURI, s.testDBName).IndexAll()
	if err := s.LoadMongoDBFixtures(); err != nil {
		s.T().Fatal(err)
	}
}

// LoadMongoDBFixtures will preload fixtures into test mongodb
func (s *HazardTestSuite) LoadMongoDBFixtures() error {
	ctx := context.Background()

	events := s.testDatabase.Collection(schema.HazardCollection(schema.CategorySeismicEvent))
	if _, err := events.InsertOne(ctx, schema.HazardObservation{
		ID:        labeledEventID,
		Category:  schema.CategorySeismicEvent,
		Location:  schema.NewPoint(2.5, 48.9),
		Magnitude: 4.8,
	}); err != nil {
		return err
	}

	features := s.testDatabase.Collection(schema.HazardCollection(schema.CategoryUrbanFeature))
	for _, f := range []schema.HazardObservation{
		{
			ID:           denseFeatureID,
			Category:     schema.CategoryUrbanFeature,
			Location:     schema.NewPoint(2.36, 48.86),
			FeatureType:  schema.FeatureTypeBuilding,
			DensityScore: 0.9,
		},
		{
			ID:           sparseFeatureID,
			Category:     schema.CategoryUrbanFeature,
			Location:     schema.NewPoint(2.30, 48.80),
			FeatureType:  schema.FeatureTypeBuilding,
			DensityScore: 0.1,
		},
	} {
		if _, err := features.InsertOne(ctx, f); err != nil {
			return err
		}
	}

	return nil
}

func (s *HazardTestSuite) CleanMongoDB() error {
	return s.testDatabase.Drop(context.Background())
}

func (s *HazardTestSuite) TestListHazardObservations() {
	observations, err := s.store.ListHazardObservations(context.Background(), schema.CategorySeismicEvent)
	s.NoError(err)
	s.Len(observations, 1)
	s.Equal(4.8, observations[0].Magnitude)
}

func (s *HazardTestSuite) TestListHazardObservationsEmptyCategory() {
	observations, err := s.store.ListHazardObservations(context.Background(), schema.CategoryFloodSample)
	s.NoError(err)
	s.Len(observations, 0)
}

func (s *HazardTestSuite) TestUpdateNearestSiteLabels() {
	updated, err := s.store.UpdateNearestSiteLabels(context.Background(), schema.CategorySeismicEvent, []NearestSiteLabel{
		{
			ObservationID: labeledEventID,
			SiteID:        nearestSiteID,
			DistanceKM:    11.4,
		},
	})
	s.NoError(err)
	s.Equal(1, updated)

	var event schema.HazardObservation
	err = s.testDatabase.Collection(schema.HazardCollection(schema.CategorySeismicEvent)).
		FindOne(context.Background(), bson.M{"_id": labeledEventID}).Decode(&event)
	s.NoError(err)
	s.Equal(nearestSiteID, event.NearestSiteID)
	s.Equal(11.4, event.DistanceToSiteKM)
}

func (s *HazardTestSuite) TestUpdateDensityScores() {
	updated, err := s.store.UpdateDensityScores(context.Background(), []DensityUpdate{
		{ObservationID: sparseFeatureID, Density: 0.2},
	})
	s.NoError(err)
	s.Equal(1, updated)

	var feature schema.HazardObservation
	err = s.testDatabase.Collection(schema.HazardCollection(schema.CategoryUrbanFeature)).
		FindOne(context.Background(), bson.M{"_id": sparseFeatureID}).Decode(&feature)
	s.NoError(err)
	s.Equal(0.2, feature.DensityScore)
}

func (s *HazardTestSuite) TestListTopDensityFeatures() {
	features, err := s.store.ListTopDensityFeatures(context.Background(), 1)
	s.NoError(err)
	s.Len(features, 1)
	s.Equal(denseFeatureID, features[0].ID)
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to s.Run
func TestHazardTestSuite(t *testing.T) {
	suite.Run(t, NewHazardTestSuite("mongodb://127.0.0.1:27017/?compressors=disabled", "test-db"))
}
