package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bitmark-inc/georisk-api/schema"
	"github.com/bitmark-inc/georisk-api/store"
)

var testSiteID = primitive.NewObjectID()

// stubMongo serves canned records for handler tests.
type stubMongo struct {
	store.MongoStore

	scores map[primitive.ObjectID]schema.RiskScore
}

func (s *stubMongo) ListRiskScores(ctx context.Context) ([]schema.RiskScore, error) {
	out := make([]schema.RiskScore, 0, len(s.scores))
	for _, rs := range s.scores {
		out = append(out, rs)
	}
	return out, nil
}

func (s *stubMongo) ListAnomalousRiskScores(ctx context.Context) ([]schema.RiskScore, error) {
	out := make([]schema.RiskScore, 0)
	for _, rs := range s.scores {
		if rs.IsAnomaly {
			out = append(out, rs)
		}
	}
	return out, nil
}

func (s *stubMongo) GetRiskScore(ctx context.Context, siteID primitive.ObjectID) (*schema.RiskScore, error) {
	rs, ok := s.scores[siteID]
	if !ok {
		return nil, store.ErrRiskScoreNotFound
	}
	return &rs, nil
}

func newTestServer() *Server {
	return &Server{
		mongo: &stubMongo{
			scores: map[primitive.ObjectID]schema.RiskScore{
				testSiteID: {
					SiteID:         testSiteID,
					CompositeScore: 0.81,
					RiskLevel:      schema.RiskLevelCritical,
					AnomalyScore:   -0.2,
					IsAnomaly:      true,
				},
			},
		},
	}
}

func TestGetRiskScore(t *testing.T) {
	s := newTestServer()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/sites/:siteID/risk-score", s.getRiskScore)

	req := httptest.NewRequest("GET", "/sites/"+testSiteID.Hex()+"/risk-score", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")

	var resp struct {
		RiskScore riskScoreView `json:"risk_score"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, 0.81, resp.RiskScore.CompositeScore)
	assert.Equal(t, schema.RiskLevelCritical, resp.RiskScore.RiskLevel)
	assert.Equal(t, schema.RiskLevelColors[schema.RiskLevelCritical], resp.RiskScore.Color)
}

func TestGetRiskScoreNotFound(t *testing.T) {
	s := newTestServer()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/sites/:siteID/risk-score", s.getRiskScore)

	req := httptest.NewRequest("GET", "/sites/"+primitive.NewObjectID().Hex()+"/risk-score", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "wrong status code")
}

func TestGetRiskScoreBadID(t *testing.T) {
	s := newTestServer()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/sites/:siteID/risk-score", s.getRiskScore)

	req := httptest.NewRequest("GET", "/sites/not-an-id/risk-score", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "wrong status code")
}

func TestListAnomalies(t *testing.T) {
	s := newTestServer()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/anomalies", s.listAnomalies)

	req := httptest.NewRequest("GET", "/anomalies", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")

	var resp struct {
		Anomalies []riskScoreView `json:"anomalies"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Len(t, resp.Anomalies, 1)
	assert.True(t, resp.Anomalies[0].IsAnomaly)
}
