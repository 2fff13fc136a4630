package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/metamood/internal/shared/infra/platform/metrics"
	"github.com/davicafu/metamood/internal/track/application"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/davicafu/metamood/internal/track/infra/outbound/db/memory"
	"github.com/davicafu/metamood/tests/mocks"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newRouter(t *testing.T, repo trackDomain.TrackRepository, stats trackDomain.TrackStatsRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := metrics.NewQueryMetrics(nil)
	service := application.NewTrackService(repo, stats, trackDomain.NewTrackFieldRegistry(), zap.NewNop(), application.WithMetrics(m))

	r := gin.New()
	RegisterTrackRoutes(r, NewTrackHandler(service, zap.NewNop()))
	RegisterOpsRoutes(r, m.Handler())
	return r
}

func seededRouter(t *testing.T) *gin.Engine {
	repo := memory.NewTrackRepoInMemory()
	require.NoError(t, repo.UpsertBatch(context.Background(), mocks.SampleTracks()))
	return newRouter(t, repo, repo)
}

func do(t *testing.T, r *gin.Engine, target string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestListTracks_HTTPContract(t *testing.T) {
	r := seededRouter(t)

	code, body := do(t, r, "/tracks?pageSize=5&pageNumber=2&sortby=popularity")
	require.Equal(t, http.StatusOK, code)

	var views []map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &views))
	require.Len(t, views, 5)
	assert.Equal(t, "song f", views[0]["name"])
	assert.Contains(t, views[0], "releaseDate")
	assert.NotContains(t, views[0], "id")
}

func TestListTracks_Errors(t *testing.T) {
	r := seededRouter(t)

	cases := []struct {
		target string
		code   int
	}{
		{"/tracks?pageNumber=1", http.StatusBadRequest},
		{"/tracks?pageSize=10&pageNumber=1&sortby=bogus_field", http.StatusBadRequest},
		{"/tracks?pageSize=10&pageNumber=1&pageSize=20", http.StatusBadRequest},
		{"/tracks?pageSize=10&pageNumber=1&popularity_min=90&popularity_max=10", http.StatusBadRequest},
		{"/tracks?pageSize=10&pageNumber=1&popularity_min=1000", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			code, body := do(t, r, tc.target)
			assert.Equal(t, tc.code, code)
			require.NotNil(t, body.Error)
			assert.NotEmpty(t, body.Error.Message)
		})
	}

	_, body := do(t, r, "/tracks?pageSize=10&pageNumber=1&popularity_min=1000")
	assert.Equal(t, "no tracks found", body.Error.Message)
}

func TestListTracks_BackendFailureIs500(t *testing.T) {
	repo := new(mocks.MockTrackRepository)
	repo.On("Materialize", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))
	r := newRouter(t, repo, repo)

	code, body := do(t, r, "/tracks?pageSize=10&pageNumber=1")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", body.Error.Message)
}

func TestCountAndAverages(t *testing.T) {
	r := seededRouter(t)

	code, body := do(t, r, "/count/spotify-tracks")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count": 15}`, string(body.Data))

	code, _ = do(t, r, "/count/users")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, r, "/averages")
	require.Equal(t, http.StatusOK, code)
	var avg trackDomain.MetricAverages
	require.NoError(t, json.Unmarshal(body.Data, &avg))
	assert.InDelta(t, 0.5, avg.Danceability, 1e-9)
}

func TestOpsRoutes(t *testing.T) {
	r := seededRouter(t)
	do(t, r, "/tracks?pageSize=1&pageNumber=1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `metamood_tracks_queries_total{endpoint="tracks",status="ok"} 1`)
}

func TestListTracks_RepeatedKeyIsCountedAsValidationError(t *testing.T) {
	r := seededRouter(t)

	code, body := do(t, r, "/tracks?pageSize=10&pageNumber=1&pageSize=20")
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body.Error.Message, "more than once")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `metamood_tracks_queries_total{endpoint="tracks",status="invalid"} 1`)
	assert.Contains(t, rec.Body.String(), `metamood_tracks_validation_errors_total 1`)
}
