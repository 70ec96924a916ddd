package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitmark-inc/georisk-api/schema"
)

var (
	// ErrRiskScoreNotFound indicates no scoring run has produced a record
	// for the requested site yet.
	ErrRiskScoreNotFound = fmt.Errorf("risk score not found")
)

// RiskScoreStore reads and writes per-site scoring records. Score fields
// and anomaly fields are owned by different passes and never overwrite
// each other.
type RiskScoreStore interface {
	UpsertRiskScore(ctx context.Context, score schema.RiskScore) error
	UpdateAnomaly(ctx context.Context, siteID primitive.ObjectID, anomalyScore float64, isAnomaly bool) error
	ListRiskScores(ctx context.Context) ([]schema.RiskScore, error)
	ListAnomalousRiskScores(ctx context.Context) ([]schema.RiskScore, error)
	GetRiskScore(ctx context.Context, siteID primitive.ObjectID) (*schema.RiskScore, error)
}

// UpsertRiskScore replaces the score fields of a site's record, creating
// the record if absent. Anomaly fields from an earlier detection pass are
// left untouched.
func (m *mongoDB) UpsertRiskScore(ctx context.Context, score schema.RiskScore) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RiskScoreCollection)

	_, err := c.UpdateOne(ctx,
		bson.M{"site_id": score.SiteID},
		bson.M{"$set": bson.M{
			"urban_density":    score.UrbanDensity,
			"climate_anomaly":  score.ClimateAnomaly,
			"seismic_risk":     score.SeismicRisk,
			"fire_risk":        score.FireRisk,
			"flood_risk":       score.FloodRisk,
			"coastal_risk":     score.CoastalRisk,
			"building_count":   score.BuildingCount,
			"earthquake_count": score.EarthquakeCount,
			"fire_count":       score.FireCount,
			"flood_count":      score.FloodCount,
			"extreme_days":     score.ExtremeDays,
			"total_days":       score.TotalDays,
			"composite_score":  score.CompositeScore,
			"risk_level":       score.RiskLevel,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// UpdateAnomaly writes the anomaly fields of an existing record. A site
// without a scoring record is reported as not found, never created here.
func (m *mongoDB) UpdateAnomaly(ctx context.Context, siteID primitive.ObjectID, anomalyScore float64, isAnomaly bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RiskScoreCollection)

	result, err := c.UpdateOne(ctx,
		bson.M{"site_id": siteID},
		bson.M{"$set": bson.M{
			"anomaly_score": anomalyScore,
			"is_anomaly":    isAnomaly,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrRiskScoreNotFound
	}
	return nil
}

// ListRiskScores returns every scoring record ordered by site id, the
// stable row order the anomaly detector depends on.
func (m *mongoDB) ListRiskScores(ctx context.Context) ([]schema.RiskScore, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RiskScoreCollection)

	cursor, err := c.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"site_id": 1}))
	if err != nil {
		return nil, err
	}

	scores := make([]schema.RiskScore, 0)
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// ListAnomalousRiskScores returns the records flagged by the last anomaly
// pass, most anomalous first.
func (m *mongoDB) ListAnomalousRiskScores(ctx context.Context) ([]schema.RiskScore, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RiskScoreCollection)

	cursor, err := c.Find(ctx,
		bson.M{"is_anomaly": true},
		options.Find().SetSort(bson.M{"anomaly_score": 1}),
	)
	if err != nil {
		return nil, err
	}

	scores := make([]schema.RiskScore, 0)
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// GetRiskScore returns the scoring record of one site.
func (m *mongoDB) GetRiskScore(ctx context.Context, siteID primitive.ObjectID) (*schema.RiskScore, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.RiskScoreCollection)

	var score schema.RiskScore
	if err := c.FindOne(ctx, bson.M{"site_id": siteID}).Decode(&score); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRiskScoreNotFound
		}
		return nil, err
	}
	return &score, nil
}
