package scoring

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/bitmark-inc/georisk-api/anomaly"
	"github.com/bitmark-inc/georisk-api/density"
	"github.com/bitmark-inc/georisk-api/geo"
	"github.com/bitmark-inc/georisk-api/schema"
	"github.com/bitmark-inc/georisk-api/score"
	"github.com/bitmark-inc/georisk-api/spatial"
	"github.com/bitmark-inc/georisk-api/store"
)

const (
	logPrefix = "scoring"

	upsertWorkers = 8
)

// Engine runs the batch passes against the spatial datastore. All joins
// happen in memory on the metric plane; only the resulting records are
// written back.
type Engine struct {
	mongo      store.MongoStore
	projector  geo.Projector
	correlator *spatial.Correlator
	cfg        *Config
	metrics    tally.Scope
}

func NewEngine(mongo store.MongoStore, cfg *Config, metrics tally.Scope) *Engine {
	projector := geo.NewEuropeProjector()
	return &Engine{
		mongo:      mongo,
		projector:  projector,
		correlator: spatial.NewCorrelator(projector),
		cfg:        cfg,
		metrics:    metrics,
	}
}

// siteRow accumulates everything one site needs before the normalization
// barrier: raw magnitudes and the display aggregates.
type siteRow struct {
	site schema.Site

	urbanRaw   float64
	climateRaw float64
	seismicRaw float64
	fireRaw    float64
	floodRaw   float64
	coastal    float64

	buildingCount   int
	earthquakeCount int
	fireCount       int
	floodCount      int
	extremeDays     int
	totalDays       int
}

// RunScoring executes one full correlation scoring pass: project, join,
// reduce per site, normalize globally across all sites, then compose and
// persist each site's record. Normalization is global, so every raw
// magnitude must exist before any score can be written.
func (e *Engine) RunScoring(ctx context.Context) (*RunSummary, error) {
	if err := e.projector.SelfCheck(); err != nil {
		return nil, err
	}

	sites, err := e.mongo.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}

	summary := &RunSummary{
		SitesTotal:           len(sites),
		ObservationCounts:    make(map[string]int),
		ZeroCorrelationSites: make(map[string]int),
		NormalizationRanges:  make(map[string]score.NormalizationRange),
		DryRun:               e.cfg.DryRun,
	}
	if len(sites) == 0 {
		log.WithField("prefix", logPrefix).Warn("no sites to score")
		return summary, nil
	}

	observations := make(map[schema.HazardCategory][]schema.HazardObservation)
	for _, category := range schema.HazardCategories {
		obs, err := e.mongo.ListHazardObservations(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("list %s observations: %w", category, err)
		}
		observations[category] = obs
		summary.ObservationCounts[string(category)] = len(obs)
	}

	sitePoints := e.correlator.ProjectSites(sites)
	invalidGeometry := 0
	for _, p := range sitePoints {
		if !p.Valid {
			invalidGeometry++
		}
	}
	if invalidGeometry > 0 {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"sites":  invalidGeometry,
		}).Warn("sites without usable geometry, hazard sub-scores fall back to zero")
	}

	urbanObs := observations[schema.CategoryUrbanFeature]
	seismicObs := observations[schema.CategorySeismicEvent]
	fireObs := observations[schema.CategoryFireDetection]
	floodObs := observations[schema.CategoryFloodSample]

	urbanJoin := e.correlator.BufferContained(sitePoints, e.correlator.ProjectObservations(urbanObs), e.cfg.Radii.UrbanBufferM)
	seismicJoin := e.correlator.WithinRadius(sitePoints, e.correlator.ProjectObservations(seismicObs), e.cfg.Radii.SeismicRadiusM)
	fireJoin := e.correlator.WithinRadius(sitePoints, e.correlator.ProjectObservations(fireObs), e.cfg.Radii.FireRadiusM)
	floodJoin := e.correlator.WithinRadius(sitePoints, e.correlator.ProjectObservations(floodObs), e.cfg.Radii.FloodRadiusM)

	climateBySite := groupClimateBySite(observations[schema.CategoryClimateSample])

	rows := make([]siteRow, len(sites))
	for i, site := range sites {
		row := siteRow{site: site}

		urban := correlatedFor(urbanJoin[i], urbanObs)
		row.urbanRaw, _ = score.UrbanDensityRaw(urban)
		for _, c := range urban {
			if c.Observation.FeatureType == schema.FeatureTypeBuilding {
				row.buildingCount++
			}
		}

		row.climateRaw, row.extremeDays, row.totalDays = score.ClimateAnomalyRaw(climateBySite[site.ID])

		seismic := correlatedFor(seismicJoin[i], seismicObs)
		row.seismicRaw = score.SeismicEnergyRaw(seismic)
		row.earthquakeCount = len(seismic)

		fire := correlatedFor(fireJoin[i], fireObs)
		row.fireRaw = score.FireRiskRaw(fire)
		row.fireCount = len(fire)

		flood := correlatedFor(floodJoin[i], floodObs)
		row.floodRaw = score.FloodRiskRaw(flood)
		row.floodCount = len(flood)

		row.coastal = score.CoastalRisk(site.ElevationM)
		rows[i] = row

		for category, matched := range map[schema.HazardCategory]int{
			schema.CategoryUrbanFeature:  len(urban),
			schema.CategoryClimateSample: row.totalDays,
			schema.CategorySeismicEvent:  len(seismic),
			schema.CategoryFireDetection: len(fire),
			schema.CategoryFloodSample:   len(flood),
		} {
			if matched == 0 {
				summary.ZeroCorrelationSites[string(category)]++
			}
		}
	}

	for category, n := range summary.ZeroCorrelationSites {
		log.WithFields(log.Fields{
			"prefix":   logPrefix,
			"category": category,
			"sites":    n,
		}).Debug("sites with no correlated observations")
	}

	// normalization barrier: rescale each raw column across all sites.
	// Coastal risk is already bounded and is not rescaled.
	columns := map[string][]float64{}
	for name, pick := range map[string]func(siteRow) float64{
		"urban_density":   func(r siteRow) float64 { return r.urbanRaw },
		"climate_anomaly": func(r siteRow) float64 { return r.climateRaw },
		"seismic_risk":    func(r siteRow) float64 { return r.seismicRaw },
		"fire_risk":       func(r siteRow) float64 { return r.fireRaw },
		"flood_risk":      func(r siteRow) float64 { return r.floodRaw },
	} {
		raw := make([]float64, len(rows))
		for i, r := range rows {
			raw[i] = pick(r)
		}
		normalized, nrange := score.LogMinMax(raw)
		columns[name] = normalized
		summary.NormalizationRanges[name] = nrange
	}

	records := make([]schema.RiskScore, len(rows))
	for i, row := range rows {
		urban := columns["urban_density"][i]
		climate := columns["climate_anomaly"][i]
		seismic := columns["seismic_risk"][i]
		fire := columns["fire_risk"][i]
		flood := columns["flood_risk"][i]
		coastal := row.coastal

		composite := score.Composite(e.cfg.Weights, urban, climate, seismic, fire, flood, coastal)

		records[i] = schema.RiskScore{
			SiteID:          row.site.ID,
			UrbanDensity:    schema.SubScore{Raw: row.urbanRaw, Score: urban},
			ClimateAnomaly:  schema.SubScore{Raw: row.climateRaw, Score: climate},
			SeismicRisk:     schema.SubScore{Raw: row.seismicRaw, Score: seismic},
			FireRisk:        schema.SubScore{Raw: row.fireRaw, Score: fire},
			FloodRisk:       schema.SubScore{Raw: row.floodRaw, Score: flood},
			CoastalRisk:     schema.SubScore{Raw: row.coastal, Score: coastal},
			BuildingCount:   row.buildingCount,
			EarthquakeCount: row.earthquakeCount,
			FireCount:       row.fireCount,
			FloodCount:      row.floodCount,
			ExtremeDays:     row.extremeDays,
			TotalDays:       row.totalDays,
			CompositeScore:  composite,
			RiskLevel:       schema.RiskLevelFromComposite(composite),
		}
	}

	outcomes := make([]SiteOutcome, len(records))
	if e.cfg.DryRun {
		for i, r := range records {
			outcomes[i] = SiteOutcome{SiteID: r.SiteID, Written: false, Reason: "dry-run"}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		indexes := make(chan int)

		g.Go(func() error {
			defer close(indexes)
			for i := range records {
				select {
				case indexes <- i:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})

		for w := 0; w < upsertWorkers; w++ {
			g.Go(func() error {
				for i := range indexes {
					if err := e.mongo.UpsertRiskScore(gctx, records[i]); err != nil {
						log.WithFields(log.Fields{
							"prefix": logPrefix,
							"site":   records[i].SiteID.Hex(),
							"error":  err,
						}).Warn("skip risk score write")
						outcomes[i] = SiteOutcome{SiteID: records[i].SiteID, Written: false, Reason: err.Error()}
						continue
					}
					outcomes[i] = SiteOutcome{SiteID: records[i].SiteID, Written: true}
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for _, o := range outcomes {
		if o.Written {
			summary.SitesWritten++
		} else {
			summary.SitesSkipped++
		}
	}
	summary.Outcomes = outcomes

	e.metrics.Counter("sites_written").Inc(int64(summary.SitesWritten))
	e.metrics.Counter("sites_skipped").Inc(int64(summary.SitesSkipped))

	log.WithFields(log.Fields{
		"prefix":  logPrefix,
		"sites":   summary.SitesTotal,
		"written": summary.SitesWritten,
		"skipped": summary.SitesSkipped,
		"dry_run": summary.DryRun,
	}).Info("scoring pass complete")

	return summary, nil
}

// RunAnomalyDetection fits the isolation forest over every stored score
// vector and writes the anomaly fields back. The pass touches nothing but
// the anomaly fields: composite scores and risk levels stay as the scoring
// pass left them.
func (e *Engine) RunAnomalyDetection(ctx context.Context) (*AnomalySummary, error) {
	detector, err := anomaly.NewDetector(e.cfg.Anomaly)
	if err != nil {
		return nil, err
	}

	scores, err := e.mongo.ListRiskScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list risk scores: %w", err)
	}

	summary := &AnomalySummary{
		SitesScored: len(scores),
		DryRun:      e.cfg.DryRun,
	}
	if len(scores) == 0 {
		log.WithField("prefix", logPrefix).Warn("no risk scores for anomaly detection")
		return summary, nil
	}

	matrix := make([][]float64, len(scores))
	for i, s := range scores {
		matrix[i] = s.ScoreVector()
	}

	result, err := detector.Fit(matrix)
	if err != nil {
		return nil, err
	}

	for _, flagged := range result.Flags {
		if flagged {
			summary.Anomalies++
		}
	}

	if e.cfg.DryRun {
		summary.SitesSkipped = len(scores)
		return summary, nil
	}

	for i, s := range scores {
		err := e.mongo.UpdateAnomaly(ctx, s.SiteID, result.Scores[i], result.Flags[i])
		switch err {
		case nil:
			summary.SitesUpdated++
		case store.ErrRiskScoreNotFound:
			summary.SitesSkipped++
		default:
			log.WithFields(log.Fields{
				"prefix": logPrefix,
				"site":   s.SiteID.Hex(),
				"error":  err,
			}).Warn("skip anomaly write")
			summary.SitesSkipped++
		}
	}

	e.metrics.Counter("anomalies_flagged").Inc(int64(summary.Anomalies))

	log.WithFields(log.Fields{
		"prefix":    logPrefix,
		"scored":    summary.SitesScored,
		"updated":   summary.SitesUpdated,
		"anomalies": summary.Anomalies,
	}).Info("anomaly pass complete")

	return summary, nil
}

// RunDensityAnalysis fits the kernel density surface over all urban
// feature centroids, persists the per-feature density value and reports
// how many sites have features within the summary radius.
func (e *Engine) RunDensityAnalysis(ctx context.Context) (*DensitySummary, error) {
	if err := e.projector.SelfCheck(); err != nil {
		return nil, err
	}

	estimator, err := density.NewEstimator(e.cfg.KDEBandwidthM)
	if err != nil {
		return nil, err
	}

	features, err := e.mongo.ListHazardObservations(ctx, schema.CategoryUrbanFeature)
	if err != nil {
		return nil, fmt.Errorf("list urban features: %w", err)
	}

	summary := &DensitySummary{
		Features: len(features),
		DryRun:   e.cfg.DryRun,
	}
	if len(features) == 0 {
		return summary, nil
	}

	featurePoints := e.correlator.ProjectObservations(features)
	densities := estimator.Densities(featurePoints)

	updates := make([]store.DensityUpdate, 0, len(features))
	var sum float64
	for i, d := range densities {
		if !featurePoints[i].Valid {
			continue
		}
		updates = append(updates, store.DensityUpdate{
			ObservationID: features[i].ID,
			Density:       d,
		})
		sum += d
		if d > summary.MaxDensity {
			summary.MaxDensity = d
		}
	}
	if len(updates) > 0 {
		summary.MeanDensity = sum / float64(len(updates))
	}

	sites, err := e.mongo.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	nearby := e.correlator.WithinRadius(e.correlator.ProjectSites(sites), featurePoints, e.cfg.DensitySummaryRadiusM)
	for si, matches := range nearby {
		if len(matches) == 0 {
			continue
		}
		site := SiteDensity{SiteID: sites[si].ID, FeatureCount: len(matches)}
		var total float64
		for _, m := range matches {
			d := densities[m.ObservationIndex]
			total += d
			if d > site.MaxDensity {
				site.MaxDensity = d
			}
		}
		site.AvgDensity = total / float64(len(matches))
		summary.SiteDensities = append(summary.SiteDensities, site)
	}
	summary.SitesWithNearbyFeatures = len(summary.SiteDensities)

	if !e.cfg.DryRun {
		updated, err := e.mongo.UpdateDensityScores(ctx, updates)
		if err != nil {
			return nil, err
		}
		summary.FeaturesUpdated = updated
	}

	log.WithFields(log.Fields{
		"prefix":   logPrefix,
		"features": summary.Features,
		"updated":  summary.FeaturesUpdated,
		"dry_run":  summary.DryRun,
	}).Info("density pass complete")

	return summary, nil
}

// LabelNearestSites assigns every non-climate observation its single
// nearest site within the per-category cutoff and persists the label. This
// is display plumbing only; it never feeds scoring.
func (e *Engine) LabelNearestSites(ctx context.Context) (*LabelSummary, error) {
	if err := e.projector.SelfCheck(); err != nil {
		return nil, err
	}

	sites, err := e.mongo.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	sitePoints := e.correlator.ProjectSites(sites)

	summary := &LabelSummary{
		Labeled:   make(map[string]int),
		Discarded: make(map[string]int),
		DryRun:    e.cfg.DryRun,
	}

	cutoffs := map[schema.HazardCategory]float64{
		schema.CategoryUrbanFeature:  e.cfg.LabelCutoffs.UrbanM,
		schema.CategorySeismicEvent:  e.cfg.LabelCutoffs.EarthquakeM,
		schema.CategoryFireDetection: e.cfg.LabelCutoffs.FireM,
		schema.CategoryFloodSample:   e.cfg.LabelCutoffs.FloodM,
	}

	for _, category := range schema.HazardCategories {
		cutoff, ok := cutoffs[category]
		if !ok {
			continue
		}

		observations, err := e.mongo.ListHazardObservations(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("list %s observations: %w", category, err)
		}

		matches := e.correlator.NearestSite(sitePoints, e.correlator.ProjectObservations(observations), cutoff)
		labels := make([]store.NearestSiteLabel, 0, len(matches))
		for _, m := range matches {
			labels = append(labels, store.NearestSiteLabel{
				ObservationID: observations[m.ObservationIndex].ID,
				SiteID:        sites[m.SiteIndex].ID,
				DistanceKM:    m.DistanceKM,
			})
		}

		name := string(category)
		summary.Discarded[name] = len(observations) - len(labels)
		if e.cfg.DryRun {
			summary.Labeled[name] = len(labels)
			continue
		}

		updated, err := e.mongo.UpdateNearestSiteLabels(ctx, category, labels)
		if err != nil {
			return nil, err
		}
		summary.Labeled[name] = updated
	}

	log.WithFields(log.Fields{
		"prefix":  logPrefix,
		"labeled": summary.Labeled,
		"dry_run": summary.DryRun,
	}).Info("labeling pass complete")

	return summary, nil
}

func correlatedFor(matches []spatial.Correlation, observations []schema.HazardObservation) []score.CorrelatedObservation {
	correlated := make([]score.CorrelatedObservation, len(matches))
	for i, m := range matches {
		correlated[i] = score.CorrelatedObservation{
			Observation: observations[m.ObservationIndex],
			DistanceKM:  m.DistanceKM,
		}
	}
	return correlated
}

func groupClimateBySite(samples []schema.HazardObservation) map[primitive.ObjectID][]schema.HazardObservation {
	grouped := make(map[primitive.ObjectID][]schema.HazardObservation)
	for _, s := range samples {
		if s.SiteID.IsZero() {
			continue
		}
		grouped[s.SiteID] = append(grouped[s.SiteID], s)
	}
	return grouped
}
