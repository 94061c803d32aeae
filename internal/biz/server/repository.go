package server

import (
	"context"

	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

type Repo interface {
	commonrepo.Transaction
	GetByID(ctx context.Context, id uint64) (*Server, error)
	GetByURL(ctx context.Context, url string) (*Server, error)
	Create(ctx context.Context, server *Server) error
	Update(ctx context.Context, id uint64, patch *ServerPatch) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, filter ListFilter) ([]*Server, int64, error)

	// FindEligible 返回 isActive && isHealthy 的服务器，按权重降序
	FindEligible(ctx context.Context) ([]*Server, error)
	// FindActive 返回所有启用的服务器，健康与否都要重新探测
	FindActive(ctx context.Context) ([]*Server, error)
}
