package store

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitmark-inc/georisk-api/schema"
)

// NearestSiteLabel attaches one authoritative closest site to an
// observation for display consumers.
type NearestSiteLabel struct {
	ObservationID primitive.ObjectID
	SiteID        primitive.ObjectID
	DistanceKM    float64
}

// DensityUpdate carries the kernel density value of one urban feature.
type DensityUpdate struct {
	ObservationID primitive.ObjectID
	Density       float64
}

// HazardStore reads the per-category observation collections and writes
// the derived per-observation labels.
type HazardStore interface {
	ListHazardObservations(ctx context.Context, category schema.HazardCategory) ([]schema.HazardObservation, error)
	UpdateNearestSiteLabels(ctx context.Context, category schema.HazardCategory, labels []NearestSiteLabel) (int, error)
	UpdateDensityScores(ctx context.Context, updates []DensityUpdate) (int, error)
	ListTopDensityFeatures(ctx context.Context, limit int64) ([]schema.HazardObservation, error)
}

// ListHazardObservations returns every observation of a category ordered
// by id.
func (m *mongoDB) ListHazardObservations(ctx context.Context, category schema.HazardCategory) ([]schema.HazardObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.HazardCollection(category))

	cursor, err := c.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}

	observations := make([]schema.HazardObservation, 0)
	if err := cursor.All(ctx, &observations); err != nil {
		return nil, err
	}
	return observations, nil
}

// ListTopDensityFeatures returns the densest urban features, the hotspot
// view served by the API.
func (m *mongoDB) ListTopDensityFeatures(ctx context.Context, limit int64) ([]schema.HazardObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.HazardCollection(schema.CategoryUrbanFeature))

	cursor, err := c.Find(ctx,
		bson.M{"density_score": bson.M{"$gt": 0}},
		options.Find().SetSort(bson.M{"density_score": -1}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	features := make([]schema.HazardObservation, 0)
	if err := cursor.All(ctx, &features); err != nil {
		return nil, err
	}
	return features, nil
}

// UpdateNearestSiteLabels writes nearest-site labels one observation at a
// time. A failed record is skipped and counted, not fatal.
func (m *mongoDB) UpdateNearestSiteLabels(ctx context.Context, category schema.HazardCategory, labels []NearestSiteLabel) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.HazardCollection(category))

	updated := 0
	for _, label := range labels {
		_, err := c.UpdateOne(ctx, bson.M{"_id": label.ObservationID}, bson.M{
			"$set": bson.M{
				"nearest_site_id":     label.SiteID,
				"distance_to_site_km": label.DistanceKM,
			},
		})
		if err != nil {
			log.WithFields(log.Fields{
				"prefix":      mongoLogPrefix,
				"observation": label.ObservationID.Hex(),
				"error":       err,
			}).Warn("skip nearest-site label")
			continue
		}
		updated++
	}
	return updated, nil
}

// UpdateDensityScores writes kernel density values onto urban features.
func (m *mongoDB) UpdateDensityScores(ctx context.Context, updates []DensityUpdate) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.HazardCollection(schema.CategoryUrbanFeature))

	updated := 0
	for _, update := range updates {
		_, err := c.UpdateOne(ctx, bson.M{"_id": update.ObservationID}, bson.M{
			"$set": bson.M{
				"density_score": update.Density,
			},
		})
		if err != nil {
			log.WithFields(log.Fields{
				"prefix":      mongoLogPrefix,
				"observation": update.ObservationID.Hex(),
				"error":       err,
			}).Warn("skip density update")
			continue
		}
		updated++
	}
	return updated, nil
}
