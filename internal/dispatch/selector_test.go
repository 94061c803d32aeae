package dispatch

import (
	"context"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emailvalidation9-a11y/backend/internal/biz/server"
	"github.com/emailvalidation9-a11y/backend/internal/monitoring"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
)

// prometheus collectors register globally, one instance per test binary
var testMetrics = monitoring.NewMetrics()

type fakeServerRepo struct {
	servers []*server.Server
	err     error
	updates map[uint64][]*server.ServerPatch
}

func newFakeServerRepo(servers ...*server.Server) *fakeServerRepo {
	return &fakeServerRepo{servers: servers, updates: make(map[uint64][]*server.ServerPatch)}
}

func (f *fakeServerRepo) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeServerRepo) GetByID(ctx context.Context, id uint64) (*server.Server, error) {
	for _, s := range f.servers {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeServerRepo) GetByURL(ctx context.Context, url string) (*server.Server, error) {
	for _, s := range f.servers {
		if s.URL == url {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeServerRepo) Create(ctx context.Context, s *server.Server) error {
	f.servers = append(f.servers, s)
	return nil
}

func (f *fakeServerRepo) Update(ctx context.Context, id uint64, patch *server.ServerPatch) error {
	f.updates[id] = append(f.updates[id], patch)
	return nil
}

func (f *fakeServerRepo) Delete(ctx context.Context, id uint64) error {
	return nil
}

func (f *fakeServerRepo) List(ctx context.Context, filter server.ListFilter) ([]*server.Server, int64, error) {
	return f.servers, int64(len(f.servers)), nil
}

func (f *fakeServerRepo) FindEligible(ctx context.Context) ([]*server.Server, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*server.Server
	for _, s := range f.servers {
		if s.Eligible() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeServerRepo) FindActive(ctx context.Context) ([]*server.Server, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*server.Server
	for _, s := range f.servers {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func testServer(id uint64, url string, weight int, active, healthy bool) *server.Server {
	return &server.Server{
		ID:        id,
		Name:      url,
		URL:       url,
		IsActive:  active,
		IsHealthy: healthy,
		Weight:    weight,
	}
}

func newTestSelector(repo server.Repo) *Selector {
	cfg := config.DispatchConfig{FallbackURL: "http://fallback:3000"}
	return NewSelector(cfg, repo, testMetrics, zap.NewNop())
}

func TestPickEmptyRegistryFallsBack(t *testing.T) {
	sel := newTestSelector(newFakeServerRepo())

	url, err := sel.Pick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://fallback:3000", url)
}

func TestPickSingleEligible(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-a:3000", 5, true, true),
		testServer(2, "http://engine-b:3000", 9, true, false),
		testServer(3, "http://engine-c:3000", 9, false, true),
	)
	sel := newTestSelector(repo)

	// 不健康和停用的都不参与，唯一可用的直接返回
	url, err := sel.Pick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://engine-a:3000", url)
}

func TestPickNeverSelectsIneligible(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-a:3000", 1, true, true),
		testServer(2, "http://engine-b:3000", 10, true, false),
		testServer(3, "http://engine-c:3000", 10, false, true),
		testServer(4, "http://engine-d:3000", 3, true, true),
	)
	sel := newTestSelector(repo)

	for i := 0; i < 1000; i++ {
		url, err := sel.Pick(context.Background())
		require.NoError(t, err)
		assert.NotEqual(t, "http://engine-b:3000", url)
		assert.NotEqual(t, "http://engine-c:3000", url)
	}
}

func TestPickWeightConvergence(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-a:3000", 1, true, true),
		testServer(2, "http://engine-b:3000", 9, true, true),
	)
	sel := newTestSelector(repo)
	rng := rand.New(rand.NewPCG(12, 34))
	sel.randFloat = rng.Float64

	const draws = 10000
	hits := make(map[string]int)
	for i := 0; i < draws; i++ {
		url, err := sel.Pick(context.Background())
		require.NoError(t, err)
		hits[url]++
	}

	// 权重9:1，选中频率应收敛到0.9附近
	share := float64(hits["http://engine-b:3000"]) / draws
	assert.InDelta(t, 0.9, share, 0.02)
	assert.Greater(t, hits["http://engine-a:3000"], 0)
}

func TestPickFloatEdgeFallsBackToFirst(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-a:3000", 5, true, true),
		testServer(2, "http://engine-b:3000", 5, true, true),
	)
	sel := newTestSelector(repo)
	// 抽签值落在总权重右边界之外时兜底第一台
	sel.randFloat = func() float64 { return 1.0000001 }

	url, err := sel.Pick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://engine-a:3000", url) // weight DESC, id ASC 下的第一台
}

func TestResolveForJobPrefersBoundServer(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-a:3000", 2, true, true),
		testServer(2, "http://engine-b:3000", 10, true, true),
	)
	sel := newTestSelector(repo)

	url, err := sel.ResolveForJob(context.Background(), "http://engine-a:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://engine-a:3000", url)
}

func TestResolveForJobRetargetsWhenBoundUnhealthy(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-a:3000", 2, true, false),
		testServer(2, "http://engine-b:3000", 10, true, true),
		testServer(3, "http://engine-c:3000", 4, true, true),
	)
	sel := newTestSelector(repo)

	// 绑定引擎掉线，改投可用列表里权重最高的
	url, err := sel.ResolveForJob(context.Background(), "http://engine-a:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://engine-b:3000", url)
}

func TestResolveForJobFallsBackWhenNothingEligible(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-a:3000", 2, true, false),
	)
	sel := newTestSelector(repo)

	url, err := sel.ResolveForJob(context.Background(), "http://engine-a:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://fallback:3000", url)
}

func TestResolveForJobUnknownBoundServer(t *testing.T) {
	repo := newFakeServerRepo(
		testServer(1, "http://engine-b:3000", 5, true, true),
	)
	sel := newTestSelector(repo)

	// server_used 已被从注册表删除
	url, err := sel.ResolveForJob(context.Background(), "http://gone:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://engine-b:3000", url)
}

func TestFileArtifactStorePut(t *testing.T) {
	store, err := NewFileArtifactStore(config.ArtifactsConfig{Dir: t.TempDir(), TTL: time.Hour})
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), 42, []byte("email,status\na@b.c,valid\n"))
	require.NoError(t, err)
	assert.FileExists(t, ref.Path)
	assert.Contains(t, ref.DownloadURL, "/results/job-42-")
	require.NotNil(t, ref.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *ref.ExpiresAt, time.Minute)
}
