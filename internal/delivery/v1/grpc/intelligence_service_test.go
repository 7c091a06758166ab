package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeRecUC struct {
	last *usecase.RecommendReq
}

func (f *fakeRecUC) Recommend(_ context.Context, req *usecase.RecommendReq) ([]domain.Recommendation, error) {
	f.last = req
	return []domain.Recommendation{{ProductID: 5, Title: "Lamp", Price: 12.5, Score: 3, Reason: domain.ReasonTrending}}, nil
}

func (f *fakeRecUC) Trending(context.Context, *int64, int) ([]domain.Recommendation, error) {
	return nil, nil
}

func (f *fakeRecUC) NewArrivals(context.Context, *int64, int) ([]domain.Recommendation, error) {
	return nil, nil
}

func (f *fakeRecUC) Personalized(context.Context, int64, int) ([]domain.Recommendation, error) {
	return nil, nil
}

type fakeClsUC struct{}

func (fakeClsUC) ClassifyProduct(_ context.Context, req *usecase.ClassifyReq) (*domain.ClassificationResult, error) {
	if req.Title == "" {
		return nil, e.ErrTitleRequired
	}
	return &domain.ClassificationResult{CategoryID: 2, CategoryName: "Books", Confidence: 0.7}, nil
}

func (fakeClsUC) BulkClassify(context.Context, []usecase.ClassifyReq) ([]domain.ClassificationResult, error) {
	return nil, nil
}

func (fakeClsUC) GenerateTags(_ context.Context, req *usecase.GenerateTagsReq) (*domain.TagSuggestion, error) {
	return &domain.TagSuggestion{Tags: []string{req.Title}, Scores: map[string]float64{req.Title: 1}}, nil
}

func (fakeClsUC) CategorySuggestions(context.Context, string, int) ([]domain.CategorySuggestion, error) {
	return nil, nil
}

type fakeEngineUC struct{}

func (fakeEngineUC) RebuildAll(context.Context) (*usecase.RebuildRes, error) {
	return &usecase.RebuildRes{
		Index:      usecase.IndexStats{Generation: "gen-9", Products: 11},
		Classifier: usecase.ClassifierStats{Classes: 3, Tags: 20},
		Duration:   2 * time.Second,
	}, nil
}

func (fakeEngineUC) Status() *usecase.EngineStatus { return &usecase.EngineStatus{} }

func newTestConn(t *testing.T, rec *fakeRecUC) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(&cfg.GRPCConfig{}, logger.NewNop())
	srv.RegisterServices(rec, fakeClsUC{}, fakeEngineUC{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)

	out := &structpb.Struct{}
	err = conn.Invoke(context.Background(), FullMethod(method), req, out)
	return out, err
}

func TestIntelligenceService_Recommend(t *testing.T) {
	rec := &fakeRecUC{}
	conn := newTestConn(t, rec)

	out, err := invoke(t, conn, "Recommend", map[string]any{"category_id": 4, "limit": 3})
	require.NoError(t, err)

	require.NotNil(t, rec.last.CategoryID)
	assert.Equal(t, int64(4), *rec.last.CategoryID)
	assert.Equal(t, 3, rec.last.Limit)

	items := out.AsMap()["recommendations"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(5), first["product_id"])
	assert.Equal(t, "trending product", first["reason"])
}

func TestIntelligenceService_RecommendDefaultLimit(t *testing.T) {
	rec := &fakeRecUC{}
	conn := newTestConn(t, rec)

	_, err := invoke(t, conn, "Recommend", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, rec.last.Limit)
}

func TestIntelligenceService_Classify(t *testing.T) {
	conn := newTestConn(t, &fakeRecUC{})

	out, err := invoke(t, conn, "Classify", map[string]any{"title": "novel"})
	require.NoError(t, err)
	fields := out.AsMap()
	assert.Equal(t, "Books", fields["category_name"])
	assert.Nil(t, fields["suggested_price_range"])
	assert.Equal(t, []any{}, fields["suggested_tags"])

	_, err = invoke(t, conn, "Classify", map[string]any{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestIntelligenceService_GenerateTagsAndRebuild(t *testing.T) {
	conn := newTestConn(t, &fakeRecUC{})

	out, err := invoke(t, conn, "GenerateTags", map[string]any{"title": "lamp"})
	require.NoError(t, err)
	assert.Equal(t, []any{"lamp"}, out.AsMap()["tags"])

	out, err = invoke(t, conn, "Rebuild", map[string]any{})
	require.NoError(t, err)
	fields := out.AsMap()
	assert.Equal(t, "gen-9", fields["generation"])
	assert.Equal(t, float64(2000), fields["duration_ms"])
}

func TestGRPCServer_Health(t *testing.T) {
	conn := newTestConn(t, &fakeRecUC{})

	res, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.Status)
}
