package background

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bitmark-inc/georisk-api/external/geoinfo"
)

// Task names registered with the machinery server.
const (
	TaskRunScoring        = "run_scoring"
	TaskRunAnomaly        = "run_anomaly"
	TaskRunDensity        = "run_density"
	TaskRunLabels         = "run_labels"
	TaskEnrichSiteCountry = "enrich_site_country"
)

var ErrSiteWithoutLocation = fmt.Errorf("site has no location")

// RunScoring is a background job to execute one full correlation scoring
// pass over every site.
func (m *BackgroundManager) RunScoring() error {
	_, err := m.runner.Score(context.Background())
	return err
}

// RunAnomalyDetection is a background job to refresh the anomaly fields of
// every stored risk score.
func (m *BackgroundManager) RunAnomalyDetection() error {
	_, err := m.runner.DetectAnomalies(context.Background())
	return err
}

// RunDensityAnalysis is a background job to refresh urban feature density
// values.
func (m *BackgroundManager) RunDensityAnalysis() error {
	_, err := m.runner.AnalyzeDensity(context.Background())
	return err
}

// RunLabeling is a background job to refresh nearest-site labels on every
// observation.
func (m *BackgroundManager) RunLabeling() error {
	_, err := m.runner.Label(context.Background())
	return err
}

// EnrichSiteCountry is a background job to backfill the country of a site
// from its coordinates via reverse geocoding.
func (m *BackgroundManager) EnrichSiteCountry(siteID string) error {
	ctx := context.Background()

	id, err := primitive.ObjectIDFromHex(siteID)
	if err != nil {
		return err
	}

	site, err := m.mongo.GetSite(ctx, id)
	if err != nil {
		return err
	}
	if site.Location == nil {
		return ErrSiteWithoutLocation
	}

	results, err := m.geoinfo.Get(site.Location.ToLocation())
	if err != nil {
		return err
	}

	name, isoCode := geoinfo.Country(results)
	if name == "" {
		log.WithFields(log.Fields{
			"prefix": "background",
			"site":   siteID,
		}).Warn("no country in geocoding result")
		return nil
	}

	return m.mongo.UpdateSiteCountry(ctx, id, name, isoCode)
}
