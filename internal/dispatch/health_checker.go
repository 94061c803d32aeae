package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/biz/server"
	"github.com/emailvalidation9-a11y/backend/internal/monitoring"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
	"go.uber.org/zap"
)

// HealthChecker 周期性巡检所有启用的引擎并更新其健康状态。
// 单个后台循环；每轮顺序探测，单台失败不影响其它服务器的更新。
type HealthChecker struct {
	logger  *zap.Logger
	config  config.HealthCheckConfig
	prober  server.Prober
	servers server.Repo
	metrics *monitoring.Metrics

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewHealthChecker(
	logger *zap.Logger,
	config config.HealthCheckConfig,
	prober server.Prober,
	servers server.Repo,
	metrics *monitoring.Metrics,
) *HealthChecker {
	return &HealthChecker{
		logger:  logger,
		config:  config,
		prober:  prober,
		servers: servers,
		metrics: metrics,
		stopCh:  make(chan struct{}),
	}
}

// Start 启动巡检循环。重复调用只生效一次。
func (h *HealthChecker) Start() {
	if !h.config.Enabled {
		h.logger.Info("health checker is disabled")
		return
	}

	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		h.logger.Warn("health checker already started")
		return
	}
	h.started = true
	h.mu.Unlock()

	h.wg.Add(1)
	go h.run()
	h.logger.Info("health checker started",
		zap.Duration("interval", h.config.Interval),
		zap.Duration("boot_delay", h.config.BootDelay))
}

// Stop 停止周期巡检，不打断进行中的探测。重复调用只生效一次。
func (h *HealthChecker) Stop() {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return
	}
	h.started = false
	h.mu.Unlock()

	close(h.stopCh)
	h.wg.Wait()
	h.logger.Info("health checker stopped")
}

func (h *HealthChecker) run() {
	defer h.wg.Done()

	// 等注册表加载完再跑第一轮
	select {
	case <-time.After(h.config.BootDelay):
	case <-h.stopCh:
		return
	}

	h.CheckAll(context.Background())

	ticker := time.NewTicker(h.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.CheckAll(context.Background())
		case <-h.stopCh:
			return
		}
	}
}

// CheckAll 巡检一轮：所有 isActive 的服务器都重新探测，包括当前不健康
// 的，否则它们永远没有恢复的机会。
func (h *HealthChecker) CheckAll(ctx context.Context) {
	servers, err := h.servers.FindActive(ctx)
	if err != nil {
		h.logger.Error("failed to load servers for health check", zap.Error(err))
		return
	}

	for _, srv := range servers {
		h.checkServer(ctx, srv)
	}
}

func (h *HealthChecker) checkServer(ctx context.Context, srv *server.Server) {
	rtt, err := h.prober.Health(ctx, srv.URL)
	now := time.Now()

	if err == nil {
		srv.ApplyProbeSuccess(rtt, now)
		h.logger.Info("health check passed",
			zap.String("name", srv.Name),
			zap.String("url", srv.URL),
			zap.Duration("rtt", rtt))
	} else {
		srv.ApplyProbeFailure(now)
		h.logger.Warn("health check failed",
			zap.String("name", srv.Name),
			zap.String("url", srv.URL),
			zap.Error(err))
	}
	h.metrics.IncHealthProbe(err == nil)

	if err := h.servers.Update(ctx, srv.ID, srv.ExportPatch()); err != nil {
		h.logger.Error("failed to persist health check result",
			zap.Uint64("server_id", srv.ID),
			zap.Error(err))
	}
}
