package trends

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New().RegisterRoutes(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestTrends(t *testing.T) {
	resp := get(setupRouter(), "/?industry=Retail&region=asia%20pacific&timeframe=7d")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out struct {
		Success bool `json:"success"`
		Data    struct {
			TrendingTopics []struct {
				Topic      string   `json:"topic"`
				Industries []string `json:"industries"`
			} `json:"trending_topics"`
			IndustryInsights []any `json:"industry_insights"`
		} `json:"data"`
		Filters     map[string]string `json:"filters"`
		LastUpdated string            `json:"last_updated"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, map[string]string{"industry": "Retail", "region": "asia pacific", "timeframe": "7d"}, out.Filters)
	assert.NotEmpty(t, out.LastUpdated)
	assert.Len(t, out.Data.IndustryInsights, 6)
	require.NotEmpty(t, out.Data.TrendingTopics)
	for _, topic := range out.Data.TrendingTopics {
		assert.Contains(t, topic.Industries, "Retail", topic.Topic)
	}
}

func TestTrendsDefaultTimeframe(t *testing.T) {
	resp := get(setupRouter(), "/")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"timeframe":"30d"`)
}

func TestTrendsBadTimeframe(t *testing.T) {
	resp := get(setupRouter(), "/?timeframe=forever")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
