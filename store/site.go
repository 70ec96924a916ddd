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
	ErrSiteNotFound = fmt.Errorf("site not found")
)

// SiteStore reads the site collection. Sites are owned by the ingestion
// layer; a scoring run only ever reads them.
type SiteStore interface {
	ListSites(ctx context.Context) ([]schema.Site, error)
	GetSite(ctx context.Context, id primitive.ObjectID) (*schema.Site, error)
	UpdateSiteCountry(ctx context.Context, id primitive.ObjectID, country, isoCode string) error
}

// ListSites returns every site ordered by id so batch passes walk sites in
// a stable order.
func (m *mongoDB) ListSites(ctx context.Context) ([]schema.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.SiteCollection)

	cursor, err := c.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}

	sites := make([]schema.Site, 0)
	if err := cursor.All(ctx, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (m *mongoDB) GetSite(ctx context.Context, id primitive.ObjectID) (*schema.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.SiteCollection)

	var site schema.Site
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&site); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return &site, nil
}

// UpdateSiteCountry backfills the political metadata resolved by the
// geoinfo client.
func (m *mongoDB) UpdateSiteCountry(ctx context.Context, id primitive.ObjectID, country, isoCode string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.SiteCollection)

	result, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"country":  country,
			"iso_code": isoCode,
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrSiteNotFound
	}
	return nil
}
