package schema

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBIndexer struct {
	ctx      context.Context
	dbName   string
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBIndexer(connectionString, dbName string) *MongoDBIndexer {
	ctx := context.Background()
	opts := options.Client().ApplyURI(connectionString)
	client, err := mongo.NewClient(opts)
	if err != nil {
		panic(err)
	}
	if err := client.Connect(ctx); err != nil {
		panic(err)
	}

	return &MongoDBIndexer{
		ctx:      ctx,
		dbName:   dbName,
		Client:   client,
		Database: client.Database(dbName),
	}
}

func (m *MongoDBIndexer) createIndex(collection string, index mongo.IndexModel) error {
	c := m.Database.Collection(collection)
	_, err := c.Indexes().CreateOne(m.ctx, index)
	return err
}

func panicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func (m *MongoDBIndexer) IndexAll() {
	panicIfError(m.IndexSiteCollection())
	panicIfError(m.IndexHazardCollections())
	panicIfError(m.IndexRiskScoreCollection())
}

func (m *MongoDBIndexer) IndexSiteCollection() error {
	if err := m.createIndex(SiteCollection, mongo.IndexModel{
		Keys: bson.M{
			"ref_id": 1,
		},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	return m.createIndex(SiteCollection, mongo.IndexModel{
		Keys: bson.M{
			"location": "2dsphere",
		},
	})
}

func (m *MongoDBIndexer) IndexHazardCollections() error {
	for _, category := range HazardCategories {
		collection := HazardCollection(category)

		if err := m.createIndex(collection, mongo.IndexModel{
			Keys: bson.M{
				"location": "2dsphere",
			},
		}); err != nil {
			return err
		}

		// climate samples are looked up by owning site, the rest by the
		// nearest-site label written by the labeling pass
		key := "nearest_site_id"
		if category == CategoryClimateSample {
			key = "site_id"
		}
		if err := m.createIndex(collection, mongo.IndexModel{
			Keys: bson.M{
				key: 1,
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *MongoDBIndexer) IndexRiskScoreCollection() error {
	return m.createIndex(RiskScoreCollection, mongo.IndexModel{
		Keys: bson.M{
			"site_id": 1,
		},
		Options: options.Index().SetUnique(true),
	})
}
