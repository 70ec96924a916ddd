package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	mongoDriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/bitmark-inc/georisk-api/cache"
	cadence "github.com/bitmark-inc/georisk-api/external/cadence"
	"github.com/bitmark-inc/georisk-api/logmodule"
	"github.com/bitmark-inc/georisk-api/store"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Stores
	store *store.GeoRiskStore
	mongo store.MongoStore

	// hot read cache, nil disables caching
	cache *cache.ProfileCache

	// job pool enqueuer
	background *machinery.Server

	// workflow signaler, nil disables the refresh endpoint
	cadenceClient *cadence.CadenceClient
}

// NewServer new instance of server
func NewServer(
	ormDB *gorm.DB,
	mongoClient *mongoDriver.Client,
	backgroundServer *machinery.Server,
	profileCache *cache.ProfileCache,
	cadenceClient *cadence.CadenceClient) *Server {
	mongoStore := store.NewMongoStore(
		mongoClient,
		viper.GetString("mongo.database"),
	)

	return &Server{
		store:         store.NewGeoRiskStore(ormDB, mongoStore),
		mongo:         mongoStore,
		cache:         profileCache,
		background:    backgroundServer,
		cadenceClient: cadenceClient,
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))

	apiRoute.GET("/information", s.information)

	siteRoute := apiRoute.Group("/sites")
	{
		siteRoute.GET("", s.listSites)
		siteRoute.GET("/:siteID", s.getSite)
		siteRoute.GET("/:siteID/risk-score", s.getRiskScore)
	}

	scoreRoute := apiRoute.Group("/risk-scores")
	{
		scoreRoute.GET("", s.listRiskScores)
	}

	apiRoute.GET("/anomalies", s.listAnomalies)
	apiRoute.GET("/hotspots", s.listHotspots)
	apiRoute.GET("/runs", s.listRuns)

	secretRoute := r.Group("/secret")
	secretRoute.Use(logmodule.Ginrus("Secret"))
	secretRoute.Use(s.apikeyAuthentication(viper.GetString("server.apikey.admin")))
	{
		secretRoute.POST("/run-scoring", s.adminTriggerTask(taskRunScoring))
		secretRoute.POST("/run-anomaly", s.adminTriggerTask(taskRunAnomaly))
		secretRoute.POST("/run-density", s.adminTriggerTask(taskRunDensity))
		secretRoute.POST("/run-labels", s.adminTriggerTask(taskRunLabels))
		secretRoute.POST("/sites/:siteID/enrich", s.adminEnrichSite)
		secretRoute.POST("/run-refresh-cycle", s.adminTriggerRefresh)
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) apikeyAuthentication(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiToken := c.GetHeader("Api-Token")
		if apiToken == "" || apiToken != key {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// shouldInterupt sends error message and determine if it should interupt the current flow
func shouldInterupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	// Ping db
	err := s.store.Ping()
	if shouldInterupt(err, c) {
		return
	}

	if err := s.mongo.Ping(); shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

func (s *Server) information(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"information": map[string]interface{}{
			"server": map[string]interface{}{
				"version": viper.GetString("server.version"),
			},
			"system_version": "GeoRisk 0.1",
			"docs":           viper.GetStringMap("docs"),
		},
	})
}

func responseWithEncoding(c *gin.Context, code int, obj ErrorResponse) {
	acceptEncoding := c.GetHeader("Accept-Encoding")
	switch acceptEncoding {
	default:
		c.JSON(code, obj)
	}
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	responseWithEncoding(c, code, obj)
	c.Abort()
}
