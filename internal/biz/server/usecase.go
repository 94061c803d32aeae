package server

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/yitter/idgenerator-go/idgen"
)

var Provider = wire.NewSet(NewUsecase)

// Prober 对 {url}/health 做一次有界超时的探活
type Prober interface {
	Health(ctx context.Context, baseURL string) (time.Duration, error)
}

type CreateRequest struct {
	Name      string
	URL       string
	Weight    int
	CreatedBy uint64
}

type UpdateRequest struct {
	Name     *string
	URL      *string
	Weight   *int
	IsActive *bool
}

type TestResult struct {
	URL          string        `json:"url"`
	IsHealthy    bool          `json:"isHealthy"`
	ResponseTime time.Duration `json:"-"`
	ResponseMs   int64         `json:"responseTime"`
	Error        string        `json:"error,omitempty"`
}

type Usecase struct {
	repo   Repo
	prober Prober
}

func NewUsecase(repo Repo, prober Prober) *Usecase {
	return &Usecase{repo: repo, prober: prober}
}

// Create 注册一台引擎。URL 必须安全、未注册过、且当场可达。
func (u *Usecase) Create(ctx context.Context, req CreateRequest) (*Server, error) {
	if err := CheckURLSafety(ctx, req.URL); err != nil {
		return nil, err
	}

	existing, err := u.repo.GetByURL(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateURL
	}

	if _, err := u.prober.Health(ctx, req.URL); err != nil {
		return nil, ErrUnreachable
	}

	srv := NewServer(req.Name, req.URL, req.Weight, req.CreatedBy)
	srv.ID = uint64(idgen.NextId())
	if err := u.repo.Create(ctx, srv); err != nil {
		return nil, err
	}
	return srv, nil
}

// Update 修改注册信息。只有URL变更时才重新做安全检查与探活。
func (u *Usecase) Update(ctx context.Context, id uint64, req UpdateRequest) (*Server, error) {
	srv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if srv == nil {
		return nil, ErrNotFound
	}

	patch := NewServerPatch()

	if req.URL != nil && *req.URL != srv.URL {
		if err := CheckURLSafety(ctx, *req.URL); err != nil {
			return nil, err
		}
		existing, err := u.repo.GetByURL(ctx, *req.URL)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrDuplicateURL
		}
		if _, err := u.prober.Health(ctx, *req.URL); err != nil {
			return nil, ErrUnreachable
		}
		patch.WithURL(*req.URL)
		srv.URL = *req.URL
	}
	if req.Name != nil {
		patch.WithName(*req.Name)
		srv.Name = *req.Name
	}
	if req.Weight != nil {
		patch.WithWeight(*req.Weight)
		srv.Weight = ClampWeight(*req.Weight)
	}
	if req.IsActive != nil {
		patch.WithIsActive(*req.IsActive)
		srv.IsActive = *req.IsActive
	}

	if err := u.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return srv, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*Server, error) {
	srv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if srv == nil {
		return nil, ErrNotFound
	}
	return srv, nil
}

func (u *Usecase) List(ctx context.Context, filter ListFilter) ([]*Server, int64, error) {
	filter.Normalize()
	return u.repo.List(ctx, filter)
}

// Delete 硬删除。已派发的作业仍保留 server_used 字符串，不受影响。
func (u *Usecase) Delete(ctx context.Context, id uint64) error {
	srv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if srv == nil {
		return ErrNotFound
	}
	return u.repo.Delete(ctx, id)
}

// SetHealth 人工覆盖健康标记，独立于自动巡检
func (u *Usecase) SetHealth(ctx context.Context, id uint64, healthy bool) (*Server, error) {
	srv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if srv == nil {
		return nil, ErrNotFound
	}
	srv.SetHealthy(healthy)
	if err := u.repo.Update(ctx, id, srv.ExportPatch()); err != nil {
		return nil, err
	}
	return srv, nil
}

// Test 探活但不落库，可用于未注册的URL
func (u *Usecase) Test(ctx context.Context, id uint64, rawURL string) (*TestResult, error) {
	testURL := rawURL
	if testURL == "" {
		srv, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if srv == nil {
			return nil, ErrNotFound
		}
		testURL = srv.URL
	}

	rtt, err := u.prober.Health(ctx, testURL)
	result := &TestResult{
		URL:          testURL,
		IsHealthy:    err == nil,
		ResponseTime: rtt,
		ResponseMs:   rtt.Milliseconds(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result, nil
}

// RecordCallMetrics 把一次代理调用的结果折算进该服务器的滚动指标
func (u *Usecase) RecordCallMetrics(ctx context.Context, serverURL string, success bool, rtt time.Duration) error {
	srv, err := u.repo.GetByURL(ctx, serverURL)
	if err != nil {
		return err
	}
	if srv == nil {
		// 兜底URL不在注册表里，没有指标可更新
		return nil
	}
	srv.RecordCallMetrics(success, rtt, time.Now())
	return u.repo.Update(ctx, srv.ID, srv.ExportPatch())
}
