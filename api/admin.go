package api

import (
	"net/http"

	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// task names registered by the background worker
const (
	taskRunScoring        = "run_scoring"
	taskRunAnomaly        = "run_anomaly"
	taskRunDensity        = "run_density"
	taskRunLabels         = "run_labels"
	taskEnrichSiteCountry = "enrich_site_country"
)

// adminTriggerTask is an internal only api to enqueue one of the batch
// passes. The pass runs on the background worker, not in the request.
func (s *Server) adminTriggerTask(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := s.background.SendTask(&tasks.Signature{
			Name: name,
		}); err != nil {
			abortWithEncoding(c, http.StatusInternalServerError, errorTriggerTask, err)
			return
		}

		if s.cache != nil {
			s.cache.Invalidate(c.Request.Context())
		}

		c.JSON(200, gin.H{"result": "OK"})
	}
}

// adminTriggerRefresh signals the periodic refresh workflow to run the full
// cycle now instead of waiting for the next timer.
func (s *Server) adminTriggerRefresh(c *gin.Context) {
	if s.cadenceClient == nil {
		abortWithEncoding(c, http.StatusServiceUnavailable, errorTriggerTask)
		return
	}

	if err := s.cadenceClient.TriggerRiskRefresh(c.Request.Context()); err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorTriggerTask, err)
		return
	}

	c.JSON(200, gin.H{"result": "OK"})
}

// adminEnrichSite is an internal only api to backfill the country of a
// site by reverse geocoding.
func (s *Server) adminEnrichSite(c *gin.Context) {
	siteID := c.Param("siteID")
	if _, err := primitive.ObjectIDFromHex(siteID); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	if _, err := s.background.SendTask(&tasks.Signature{
		Name: taskEnrichSiteCountry,
		Args: []tasks.Arg{
			{
				Type:  "string",
				Value: siteID,
			},
		},
	}); err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorTriggerTask, err)
		return
	}

	c.JSON(200, gin.H{"result": "OK"})
}
