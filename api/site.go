package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bitmark-inc/georisk-api/store"
)

func (s *Server) listSites(c *gin.Context) {
	sites, err := s.mongo.ListSites(c.Request.Context())
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

func (s *Server) getSite(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("siteID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	site, err := s.mongo.GetSite(c.Request.Context(), id)
	if err == store.ErrSiteNotFound {
		abortWithEncoding(c, http.StatusNotFound, errorSiteNotFound)
		return
	} else if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"site": site})
}

const defaultHotspotLimit = 50

func (s *Server) listHotspots(c *gin.Context) {
	limit := int64(defaultHotspotLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
			return
		}
		limit = parsed
	}

	features, err := s.mongo.ListTopDensityFeatures(c.Request.Context(), limit)
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotspots": features})
}

const defaultRunHistoryCount = 20

func (s *Server) listRuns(c *gin.Context) {
	runs, err := s.store.ListScoringRuns(defaultRunHistoryCount)
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
