package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"golang-market-intel/internal/api/dto"
	"golang-market-intel/internal/api/service"
	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/pkg/logger"
)

type mockNewsRepo struct {
	mock.Mock
	repository.NewsItemRepository
}

func (m *mockNewsRepo) List(ctx context.Context, filter repository.NewsItemFilter) ([]entity.NewsItem, int64, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]entity.NewsItem)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockNewsRepo) FindByID(ctx context.Context, id string) (*entity.NewsItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*entity.NewsItem)
	return item, args.Error(1)
}

func (m *mockNewsRepo) CountByStatus(ctx context.Context) (map[entity.NewsStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[entity.NewsStatus]int64)
	return counts, args.Error(1)
}

type mockRunRepo struct {
	mock.Mock
	repository.RunHistoryRepository
}

func (m *mockRunRepo) FindByID(ctx context.Context, id string) (*entity.RunHistory, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).(*entity.RunHistory)
	return h, args.Error(1)
}

func (m *mockRunRepo) FindRecent(ctx context.Context, limit int) ([]entity.RunHistory, error) {
	args := m.Called(ctx, limit)
	h, _ := args.Get(0).([]entity.RunHistory)
	return h, args.Error(1)
}

func serve(t *testing.T, newsRepo *mockNewsRepo, runRepo *mockRunRepo, target string) *httptest.ResponseRecorder {
	t.Helper()
	log := logger.NewNop()
	e := NewRouter(service.NewNewsService(newsRepo, log), service.NewRunService(runRepo, log), log)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, &mockNewsRepo{}, &mockRunRepo{}, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListNews(t *testing.T) {
	published := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	newsRepo := &mockNewsRepo{}
	newsRepo.On("List", mock.Anything, repository.NewsItemFilter{
		Status:   entity.StatusEnriched,
		Category: entity.CategoryEconomy,
		Limit:    5,
		Offset:   10,
	}).Return([]entity.NewsItem{{
		ID:             "a1",
		Title:          "Cedi depreciates against Dollar",
		URL:            "https://accra.example/cedi",
		PublishedAt:    published,
		Category:       entity.CategoryEconomy,
		Status:         entity.StatusEnriched,
		SentimentScore: -0.4,
		AISummary:      "Import costs rise.",
		MatchedSignals: []string{"cedi", "dollar"},
	}}, int64(11), nil)

	rec := serve(t, newsRepo, &mockRunRepo{}, "/api/v1/news?status=enriched&category=economy&limit=5&offset=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.NewsListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.Total)
	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].SentimentScore)
	assert.Equal(t, -0.4, *resp.Items[0].SentimentScore)
	assert.Equal(t, "Import costs rise.", resp.Items[0].Insight)
	assert.Equal(t, []string{"cedi", "dollar"}, resp.Items[0].MatchedSignals)
	newsRepo.AssertExpectations(t)
}

func TestListNewsDefaultsAndCaps(t *testing.T) {
	newsRepo := &mockNewsRepo{}
	newsRepo.On("List", mock.Anything, repository.NewsItemFilter{Limit: service.DefaultPageLimit}).Return([]entity.NewsItem{}, int64(0), nil).Once()
	newsRepo.On("List", mock.Anything, repository.NewsItemFilter{Limit: service.MaxPageLimit}).Return([]entity.NewsItem{}, int64(0), nil).Once()

	rec := serve(t, newsRepo, &mockRunRepo{}, "/api/v1/news")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"limit":20,"offset":0}`, rec.Body.String())

	rec = serve(t, newsRepo, &mockRunRepo{}, "/api/v1/news?limit=1000")
	assert.Equal(t, http.StatusOK, rec.Code)
	newsRepo.AssertExpectations(t)
}

func TestListNewsRejectsBadFilters(t *testing.T) {
	for _, target := range []string{
		"/api/v1/news?status=archived",
		"/api/v1/news?category=sports",
		"/api/v1/news?limit=-1",
		"/api/v1/news?limit=ten",
	} {
		t.Run(target, func(t *testing.T) {
			newsRepo := &mockNewsRepo{}
			rec := serve(t, newsRepo, &mockRunRepo{}, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			newsRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestGetNewsByID(t *testing.T) {
	newsRepo := &mockNewsRepo{}
	newsRepo.On("FindByID", mock.Anything, "pending-1").Return(&entity.NewsItem{
		ID:             "pending-1",
		Status:         entity.StatusPendingEnrichment,
		SentimentScore: 0,
	}, nil)
	newsRepo.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	newsRepo.On("FindByID", mock.Anything, "broken").Return(nil, errors.New("connection refused"))

	rec := serve(t, newsRepo, &mockRunRepo{}, "/api/v1/news/pending-1")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp["sentiment_score"], "pending items carry no score")

	rec = serve(t, newsRepo, &mockRunRepo{}, "/api/v1/news/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, newsRepo, &mockRunRepo{}, "/api/v1/news/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestNewsStats(t *testing.T) {
	newsRepo := &mockNewsRepo{}
	newsRepo.On("CountByStatus", mock.Anything).Return(map[entity.NewsStatus]int64{
		entity.StatusPendingEnrichment: 4,
		entity.StatusEnriched:          10,
		entity.StatusFailed:            1,
	}, nil)

	rec := serve(t, newsRepo, &mockRunRepo{}, "/api/v1/news/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pending_enrichment":4,"enriched":10,"failed":1,"total":15}`, rec.Body.String())
}

func TestRuns(t *testing.T) {
	started := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	completed := started.Add(2 * time.Second)
	run := entity.RunHistory{
		ID:          "r1",
		JobType:     entity.JobTypeFeedIngestion,
		Status:      entity.RunStatusCompleted,
		StartedAt:   started,
		CompletedAt: &completed,
		Output:      []byte(`{"archived":3}`),
	}

	runRepo := &mockRunRepo{}
	runRepo.On("FindRecent", mock.Anything, 5).Return([]entity.RunHistory{run}, nil)
	runRepo.On("FindByID", mock.Anything, "r1").Return(&run, nil)
	runRepo.On("FindByID", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	rec := serve(t, &mockNewsRepo{}, runRepo, "/api/v1/runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []dto.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, int64(2000), runs[0].Duration)
	assert.JSONEq(t, `{"archived":3}`, string(runs[0].Output))

	rec = serve(t, &mockNewsRepo{}, runRepo, "/api/v1/runs/r1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, &mockNewsRepo{}, runRepo, "/api/v1/runs/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, &mockNewsRepo{}, runRepo, "/api/v1/runs?limit=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
