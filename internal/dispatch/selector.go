package dispatch

import (
	"context"
	"math/rand/v2"

	"github.com/emailvalidation9-a11y/backend/internal/biz/server"
	"github.com/emailvalidation9-a11y/backend/internal/monitoring"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
	"github.com/google/wire"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewSelector, NewHealthChecker, NewFileArtifactStore)

// Selector 按权重随机选择一台可用引擎。每次调用基于当前可用列表快照
// 重新抽签，不持有任何跨调用状态，并发调用安全。
type Selector struct {
	servers     server.Repo
	fallbackURL string
	metrics     *monitoring.Metrics
	logger      *zap.Logger

	// randFloat 返回[0,1)，测试可注入固定种子
	randFloat func() float64
}

func NewSelector(cfg config.DispatchConfig, servers server.Repo, metrics *monitoring.Metrics, logger *zap.Logger) *Selector {
	return &Selector{
		servers:     servers,
		fallbackURL: cfg.FallbackURL,
		metrics:     metrics,
		logger:      logger,
		randFloat:   rand.Float64,
	}
}

// Pick 选出一台引擎的URL。可用列表为空时返回配置的兜底URL。
func (s *Selector) Pick(ctx context.Context) (string, error) {
	eligible, err := s.servers.FindEligible(ctx)
	if err != nil {
		return "", err
	}
	url := s.pickFrom(eligible)
	s.metrics.IncSelection(url)
	return url, nil
}

// pickFrom 对快照做一次加权随机抽签
func (s *Selector) pickFrom(eligible []*server.Server) string {
	if len(eligible) == 0 {
		return s.fallbackURL
	}
	if len(eligible) == 1 {
		return eligible[0].URL
	}

	totalWeight := 0
	for _, srv := range eligible {
		totalWeight += srv.Weight
	}

	r := s.randFloat() * float64(totalWeight)
	for _, srv := range eligible {
		r -= float64(srv.Weight)
		if r <= 0 {
			return srv.URL
		}
	}

	// 浮点边界情况下兜底第一台
	return eligible[0].URL
}

// ResolveForJob 为既有作业的后续操作解析目标引擎：
// 优先作业绑定的 server_used（仍在轮转中才用），其次可用列表里权重最高
// 的一台，最后是兜底URL。
func (s *Selector) ResolveForJob(ctx context.Context, serverUsed string) (string, error) {
	if serverUsed != "" {
		srv, err := s.servers.GetByURL(ctx, serverUsed)
		if err != nil {
			return "", err
		}
		if srv != nil && srv.Eligible() {
			return srv.URL, nil
		}
	}

	eligible, err := s.servers.FindEligible(ctx)
	if err != nil {
		return "", err
	}
	if len(eligible) > 0 {
		if serverUsed != "" {
			// 绑定引擎已不在轮转中，改由其它引擎代答。只有引擎集群共享
			// 作业状态时结果才有意义，记录下来便于排查空结果。
			s.logger.Warn("job re-targeted away from its original server",
				zap.String("server_used", serverUsed),
				zap.String("target", eligible[0].URL))
		}
		return eligible[0].URL, nil
	}
	return s.fallbackURL, nil
}

// FallbackURL 配置的兜底引擎地址
func (s *Selector) FallbackURL() string {
	return s.fallbackURL
}
