package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bitmark-inc/georisk-api/schema"
	"github.com/bitmark-inc/georisk-api/store"
)

// riskScoreView is the API shape of one site's risk profile, with the
// display color attached.
type riskScoreView struct {
	schema.RiskScore
	Color string `json:"color"`
}

func newRiskScoreView(rs schema.RiskScore) riskScoreView {
	return riskScoreView{
		RiskScore: rs,
		Color:     schema.RiskLevelColors[rs.RiskLevel],
	}
}

func (s *Server) listRiskScores(c *gin.Context) {
	ctx := c.Request.Context()

	var scores []schema.RiskScore
	cached := false
	if s.cache != nil {
		scores, cached = s.cache.GetProfiles(ctx)
	}

	if !cached {
		var err error
		scores, err = s.mongo.ListRiskScores(ctx)
		if err != nil {
			abortWithEncoding(c, http.StatusInternalServerError, errorQueryRiskScore, err)
			return
		}
		if s.cache != nil {
			s.cache.SetProfiles(ctx, scores)
		}
	}

	views := make([]riskScoreView, 0, len(scores))
	for _, rs := range scores {
		views = append(views, newRiskScoreView(rs))
	}

	c.JSON(http.StatusOK, gin.H{"risk_scores": views, "cached": cached})
}

func (s *Server) getRiskScore(c *gin.Context) {
	ctx := c.Request.Context()

	siteID := c.Param("siteID")
	id, err := primitive.ObjectIDFromHex(siteID)
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	if s.cache != nil {
		if profile, ok := s.cache.GetProfile(ctx, siteID); ok {
			c.JSON(http.StatusOK, gin.H{"risk_score": newRiskScoreView(*profile), "cached": true})
			return
		}
	}

	profile, err := s.mongo.GetRiskScore(ctx, id)
	if err == store.ErrRiskScoreNotFound {
		abortWithEncoding(c, http.StatusNotFound, errorRiskScoreNotFound)
		return
	} else if shouldInterupt(err, c) {
		return
	}

	if s.cache != nil {
		s.cache.SetProfile(ctx, siteID, profile)
	}

	c.JSON(http.StatusOK, gin.H{"risk_score": newRiskScoreView(*profile), "cached": false})
}

func (s *Server) listAnomalies(c *gin.Context) {
	scores, err := s.mongo.ListAnomalousRiskScores(c.Request.Context())
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorQueryRiskScore, err)
		return
	}

	views := make([]riskScoreView, 0, len(scores))
	for _, rs := range scores {
		views = append(views, newRiskScoreView(rs))
	}

	c.JSON(http.StatusOK, gin.H{"anomalies": views})
}
