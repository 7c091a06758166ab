package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecUC struct {
	lastReq      *usecase.RecommendReq
	lastCategory *int64
	lastLimit    int
	lastUser     int64
	err          error
}

var sampleRecs = []domain.Recommendation{
	{ProductID: 3, Title: "Phone", Price: 199.5, Score: 0.9, Reason: domain.ReasonSimilar},
}

func (f *fakeRecUC) Recommend(_ context.Context, req *usecase.RecommendReq) ([]domain.Recommendation, error) {
	f.lastReq = req
	return sampleRecs, f.err
}

func (f *fakeRecUC) Trending(_ context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error) {
	f.lastCategory, f.lastLimit = categoryID, limit
	return []domain.Recommendation{}, f.err
}

func (f *fakeRecUC) NewArrivals(_ context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error) {
	f.lastCategory, f.lastLimit = categoryID, limit
	return sampleRecs, f.err
}

func (f *fakeRecUC) Personalized(_ context.Context, userID int64, limit int) ([]domain.Recommendation, error) {
	f.lastUser, f.lastLimit = userID, limit
	return sampleRecs, f.err
}

type fakeClsUC struct {
	bulk []usecase.ClassifyReq
}

func (f *fakeClsUC) ClassifyProduct(_ context.Context, req *usecase.ClassifyReq) (*domain.ClassificationResult, error) {
	if req.Title == "" {
		return nil, e.ErrTitleRequired
	}
	return &domain.ClassificationResult{
		CategoryID:    1,
		CategoryName:  "Electronics",
		Confidence:    0.8,
		SuggestedTags: []string{"phone"},
		PriceRange:    &domain.PriceRange{Min: 10, Max: 20, Average: 15},
	}, nil
}

func (f *fakeClsUC) BulkClassify(_ context.Context, reqs []usecase.ClassifyReq) ([]domain.ClassificationResult, error) {
	f.bulk = reqs
	out := make([]domain.ClassificationResult, len(reqs))
	for i := range reqs {
		out[i] = domain.ClassificationResult{CategoryID: int64(i + 1), CategoryName: domain.UnknownCategoryName}
	}
	return out, nil
}

func (f *fakeClsUC) GenerateTags(context.Context, *usecase.GenerateTagsReq) (*domain.TagSuggestion, error) {
	return &domain.TagSuggestion{Tags: []string{"phone"}, Scores: map[string]float64{"phone": 2}}, nil
}

func (f *fakeClsUC) CategorySuggestions(_ context.Context, query string, limit int) ([]domain.CategorySuggestion, error) {
	return []domain.CategorySuggestion{{ID: 1, Name: "Electronics", ProductCount: int64(limit)}}, nil
}

type fakeEngineUC struct {
	err error
}

func (f *fakeEngineUC) RebuildAll(context.Context) (*usecase.RebuildRes, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.RebuildRes{
		Index:    usecase.IndexStats{Generation: "gen-2", Products: 5},
		Duration: 1500 * time.Millisecond,
	}, nil
}

func (f *fakeEngineUC) Status() *usecase.EngineStatus {
	return &usecase.EngineStatus{Index: usecase.IndexStats{Generation: "gen-1", Products: 3}}
}

func newTestRouter(rec *fakeRecUC, cls *fakeClsUC, engine *fakeEngineUC) http.Handler {
	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNop()).Init(rec, cls, engine, nil)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecommendHandler(t *testing.T) {
	rec := &fakeRecUC{}
	h := newTestRouter(rec, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodPost, "/api/v1/recommendations/products", `{"product_id": 1, "limit": 5}`)
	require.Equal(t, http.StatusOK, resp.Code)

	require.NotNil(t, rec.lastReq.ProductID)
	assert.Equal(t, int64(1), *rec.lastReq.ProductID)
	assert.Nil(t, rec.lastReq.UserID)
	assert.Equal(t, 5, rec.lastReq.Limit)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "similar item", body[0]["reason"])
	assert.Contains(t, body[0], "image_url")
}

func TestRecommendHandler_DefaultLimit(t *testing.T) {
	rec := &fakeRecUC{}
	h := newTestRouter(rec, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodPost, "/api/v1/recommendations/products", `{}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, defaultLimit, rec.lastReq.Limit)
}

func TestRecommendHandler_BadRequests(t *testing.T) {
	h := newTestRouter(&fakeRecUC{}, &fakeClsUC{}, &fakeEngineUC{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{name: "malformed json", method: http.MethodPost, target: "/api/v1/recommendations/products", body: `{"limit":`},
		{name: "negative limit", method: http.MethodPost, target: "/api/v1/recommendations/products", body: `{"limit": -1}`},
		{name: "bad query limit", method: http.MethodGet, target: "/api/v1/recommendations/trending?limit=abc"},
		{name: "bad category", method: http.MethodGet, target: "/api/v1/recommendations/new-arrivals?category_id=x"},
		{name: "personalized without user", method: http.MethodPost, target: "/api/v1/recommendations/personalized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestTrendingHandler_Query(t *testing.T) {
	rec := &fakeRecUC{}
	h := newTestRouter(rec, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodGet, "/api/v1/recommendations/trending?limit=3&category_id=7", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
	assert.Equal(t, 3, rec.lastLimit)
	require.NotNil(t, rec.lastCategory)
	assert.Equal(t, int64(7), *rec.lastCategory)

	resp = do(t, h, http.MethodGet, "/api/v1/recommendations/trending?limit=1000", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, maxLimit, rec.lastLimit)
}

func TestPersonalizedHandler(t *testing.T) {
	rec := &fakeRecUC{}
	h := newTestRouter(rec, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodPost, "/api/v1/recommendations/personalized?user_id=42&limit=4", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(42), rec.lastUser)
	assert.Equal(t, 4, rec.lastLimit)
}

func TestRecommendHandler_InternalError(t *testing.T) {
	h := newTestRouter(&fakeRecUC{err: assert.AnError}, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodPost, "/api/v1/recommendations/products", `{}`)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"code":500,"message":"internal server error"}`, resp.Body.String())
}

func TestClassifyHandler(t *testing.T) {
	h := newTestRouter(&fakeRecUC{}, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodPost, "/api/v1/classification/product", `{"title": "Android phone"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{
		"category_id": 1,
		"category_name": "Electronics",
		"confidence": 0.8,
		"suggested_tags": ["phone"],
		"suggested_price_range": {"min_price": 10, "max_price": 20, "average_price": 15}
	}`, resp.Body.String())

	resp = do(t, h, http.MethodPost, "/api/v1/classification/product", `{"title": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBulkClassifyHandler(t *testing.T) {
	cls := &fakeClsUC{}
	h := newTestRouter(&fakeRecUC{}, cls, &fakeEngineUC{})

	resp := do(t, h, http.MethodPost, "/api/v1/classification/bulk-classify", `[{"title": "a"}, {"title": "b", "description": "c"}]`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body BulkClassificationResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, int64(2), body.Results[1].CategoryID)
	assert.Equal(t, []string{}, body.Results[0].SuggestedTags)
	require.NotNil(t, cls.bulk[1].Description)
	assert.Equal(t, "c", *cls.bulk[1].Description)
}

func TestAutoTagAndCategoriesHandlers(t *testing.T) {
	h := newTestRouter(&fakeRecUC{}, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodPost, "/api/v1/classification/auto-tag", `{"title": "phone"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"tags": ["phone"], "confidence_scores": {"phone": 2}}`, resp.Body.String())

	resp = do(t, h, http.MethodGet, "/api/v1/classification/categories?query=elec", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"suggestions": [{"id": 1, "name": "Electronics", "description": null, "product_count": 10}]}`, resp.Body.String())
}

func TestEngineHandlers(t *testing.T) {
	h := newTestRouter(&fakeRecUC{}, &fakeClsUC{}, &fakeEngineUC{})

	resp := do(t, h, http.MethodGet, "/api/v1/engine/status", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var status EngineStatusResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &status))
	assert.Equal(t, "gen-1", status.Index.Generation)

	resp = do(t, h, http.MethodPost, "/api/v1/engine/rebuild", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var rebuilt RebuildResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rebuilt))
	assert.Equal(t, "gen-2", rebuilt.Index.Generation)
	assert.Equal(t, int64(1500), rebuilt.DurationMs)
}

func TestEngineRebuild_Conflict(t *testing.T) {
	h := newTestRouter(&fakeRecUC{}, &fakeClsUC{}, &fakeEngineUC{err: e.ErrRebuildInProcess})

	resp := do(t, h, http.MethodPost, "/api/v1/engine/rebuild", "")
	assert.Equal(t, http.StatusConflict, resp.Code)
}
