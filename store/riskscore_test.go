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

var scoredSiteID = primitive.NewObjectID()
var unscoredSiteID = primitive.NewObjectID()

type RiskScoreTestSuite struct {
	suite.Suite
	connURI      string
	testDBName   string
	mongoClient  *mongo.Client
	testDatabase *mongo.Database
	store        MongoStore
}

func NewRiskScoreTestSuite(connURI, dbName string) *RiskScoreTestSuite {
	return &RiskScoreTestSuite{
		connURI:    connURI,
		testDBName: dbName,
	}
}

func (s *RiskScoreTestSuite) SetupSuite() {
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
func (s *RiskScoreTestSuite) LoadMongoDBFixtures() error {
	ctx := context.Background()

	score := schema.RiskScore{
		SiteID:         scoredSiteID,
		CompositeScore: 0.42,
		RiskLevel:      schema.RiskLevelMedium,
		AnomalyScore:   -0.1,
		IsAnomaly:      true,
	}
	score.UrbanDensity = schema.SubScore{Raw: 12, Score: 0.6}

	if _, err := s.testDatabase.Collection(schema.RiskScoreCollection).InsertOne(ctx, score); err != nil {
		return err
	}
	return nil
}

func (s *RiskScoreTestSuite) CleanMongoDB() error {
	return s.testDatabase.Drop(context.Background())
}

func (s *RiskScoreTestSuite) TestUpsertRiskScoreCreates() {
	ctx := context.Background()
	siteID := primitive.NewObjectID()

	err := s.store.UpsertRiskScore(ctx, schema.RiskScore{
		SiteID:         siteID,
		CompositeScore: 0.8,
		RiskLevel:      schema.RiskLevelCritical,
	})
	s.NoError(err)

	got, err := s.store.GetRiskScore(ctx, siteID)
	s.NoError(err)
	s.Equal(0.8, got.CompositeScore)
	s.Equal(schema.RiskLevelCritical, got.RiskLevel)
}

func (s *RiskScoreTestSuite) TestUpsertRiskScorePreservesAnomalyFields() {
	ctx := context.Background()

	err := s.store.UpsertRiskScore(ctx, schema.RiskScore{
		SiteID:         scoredSiteID,
		CompositeScore: 0.55,
		RiskLevel:      schema.RiskLevelHigh,
	})
	s.NoError(err)

	got, err := s.store.GetRiskScore(ctx, scoredSiteID)
	s.NoError(err)
	s.Equal(0.55, got.CompositeScore)
	s.Equal(-0.1, got.AnomalyScore)
	s.True(got.IsAnomaly)
}

func (s *RiskScoreTestSuite) TestUpdateAnomalyTouchesOnlyAnomalyFields() {
	ctx := context.Background()

	before, err := s.store.GetRiskScore(ctx, scoredSiteID)
	s.NoError(err)

	err = s.store.UpdateAnomaly(ctx, scoredSiteID, -0.33, false)
	s.NoError(err)

	got, err := s.store.GetRiskScore(ctx, scoredSiteID)
	s.NoError(err)
	s.Equal(-0.33, got.AnomalyScore)
	s.False(got.IsAnomaly)
	s.Equal(before.CompositeScore, got.CompositeScore)
	s.Equal(before.RiskLevel, got.RiskLevel)
}

func (s *RiskScoreTestSuite) TestUpdateAnomalyMissingRecord() {
	err := s.store.UpdateAnomaly(context.Background(), unscoredSiteID, -0.2, true)
	s.Equal(ErrRiskScoreNotFound, err)

	count, err := s.testDatabase.Collection(schema.RiskScoreCollection).CountDocuments(
		context.Background(), bson.M{"site_id": unscoredSiteID})
	s.NoError(err)
	s.Equal(int64(0), count)
}

func (s *RiskScoreTestSuite) TestGetRiskScoreMissing() {
	_, err := s.store.GetRiskScore(context.Background(), primitive.NewObjectID())
	s.Equal(ErrRiskScoreNotFound, err)
}

func (s *RiskScoreTestSuite) TestListRiskScoresSorted() {
	scores, err := s.store.ListRiskScores(context.Background())
	s.NoError(err)
	s.True(len(scores) >= 1)

	for i := 1; i < len(scores); i++ {
		s.True(scores[i-1].SiteID.Hex() <= scores[i].SiteID.Hex())
	}
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to s.Run
func TestRiskScoreTestSuite(t *testing.T) {
	suite.Run(t, NewRiskScoreTestSuite("mongodb://127.0.0.1:27017/?compressors=disabled", "test-db"))
}
