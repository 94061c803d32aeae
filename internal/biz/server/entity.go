package server

import (
	"math"
	"time"
)

// Server 一台验证引擎后端
type Server struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string
	URL  string

	// IsActive 管理员是否允许其参与轮转
	IsActive bool
	// IsHealthy 健康巡检结果
	IsHealthy bool
	// Weight 相对选中概率，取值[1,10]
	Weight int

	LastHealthCheck *time.Time
	TotalRequests   int64
	// SuccessRate 滚动成功率，取值[0,100]
	SuccessRate float64
	// AvgResponseTime 滚动平均响应耗时，毫秒
	AvgResponseTime float64

	CreatedBy uint64

	// aggregated patch (domain-level), not persisted directly
	patch ServerPatch
}

// NewServer builds a registry entry with the optimistic defaults: healthy
// until the first monitor cycle says otherwise.
func NewServer(name, url string, weight int, createdBy uint64) *Server {
	return &Server{
		Name:        name,
		URL:         url,
		IsActive:    true,
		IsHealthy:   true,
		Weight:      ClampWeight(weight),
		SuccessRate: 100,
		CreatedBy:   createdBy,
	}
}

func ClampWeight(w int) int {
	if w < MinWeight {
		return MinWeight
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}

// Eligible 是否可参与选择
func (s *Server) Eligible() bool {
	return s.IsActive && s.IsHealthy
}

// --- aggregated patch handling ---

func (s *Server) ClearPatch() *Server {
	s.patch = ServerPatch{}
	return s
}

// ExportPatch builds a public patch object from internal changes.
func (s *Server) ExportPatch() *ServerPatch { return &s.patch }

// ApplyProbeSuccess applies one successful health probe: mark healthy,
// record round-trip, nudge the success rate up one point.
func (s *Server) ApplyProbeSuccess(rtt time.Duration, at time.Time) {
	s.IsHealthy = true
	s.AvgResponseTime = float64(rtt.Milliseconds())
	s.SuccessRate = math.Min(100, s.SuccessRate+1)
	s.LastHealthCheck = &at
	s.patch.WithIsHealthy(true).
		WithAvgResponseTime(s.AvgResponseTime).
		WithSuccessRate(s.SuccessRate).
		WithLastHealthCheck(at)
}

// ApplyProbeFailure applies one failed health probe: mark unhealthy and
// knock five points off the success rate.
func (s *Server) ApplyProbeFailure(at time.Time) {
	s.IsHealthy = false
	s.SuccessRate = math.Max(0, s.SuccessRate-5)
	s.LastHealthCheck = &at
	s.patch.WithIsHealthy(false).
		WithSuccessRate(s.SuccessRate).
		WithLastHealthCheck(at)
}

// RecordCallMetrics folds one proxied validation call into the rolling
// success rate and (on success) the rolling mean response time.
func (s *Server) RecordCallMetrics(success bool, rtt time.Duration, at time.Time) {
	s.TotalRequests++
	n := float64(s.TotalRequests)

	outcome := 0.0
	if success {
		outcome = 100
	}
	rate := ((s.SuccessRate * (n - 1)) + outcome) / n
	s.SuccessRate = math.Round(rate*100) / 100

	if success {
		s.AvgResponseTime = ((s.AvgResponseTime * (n - 1)) + float64(rtt.Milliseconds())) / n
	}
	s.LastHealthCheck = &at

	s.patch.WithTotalRequests(s.TotalRequests).
		WithSuccessRate(s.SuccessRate).
		WithAvgResponseTime(s.AvgResponseTime).
		WithLastHealthCheck(at)
}

// SetHealthy 人工覆盖健康标记，独立于巡检
func (s *Server) SetHealthy(healthy bool) {
	s.IsHealthy = healthy
	s.patch.WithIsHealthy(healthy)
}

type ServerPatch struct {
	Name            *string
	URL             *string
	IsActive        *bool
	IsHealthy       *bool
	Weight          *int
	LastHealthCheck *time.Time
	TotalRequests   *int64
	SuccessRate     *float64
	AvgResponseTime *float64
}

func NewServerPatch() *ServerPatch {
	return new(ServerPatch)
}

func (p *ServerPatch) WithName(name string) *ServerPatch {
	p.Name = &name
	return p
}

func (p *ServerPatch) WithURL(url string) *ServerPatch {
	p.URL = &url
	return p
}

func (p *ServerPatch) WithIsActive(isActive bool) *ServerPatch {
	p.IsActive = &isActive
	return p
}

func (p *ServerPatch) WithIsHealthy(isHealthy bool) *ServerPatch {
	p.IsHealthy = &isHealthy
	return p
}

func (p *ServerPatch) WithWeight(weight int) *ServerPatch {
	weight = ClampWeight(weight)
	p.Weight = &weight
	return p
}

func (p *ServerPatch) WithLastHealthCheck(t time.Time) *ServerPatch {
	p.LastHealthCheck = &t
	return p
}

func (p *ServerPatch) WithTotalRequests(n int64) *ServerPatch {
	p.TotalRequests = &n
	return p
}

func (p *ServerPatch) WithSuccessRate(rate float64) *ServerPatch {
	p.SuccessRate = &rate
	return p
}

func (p *ServerPatch) WithAvgResponseTime(ms float64) *ServerPatch {
	p.AvgResponseTime = &ms
	return p
}
