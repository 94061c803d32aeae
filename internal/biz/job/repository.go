package job

import (
	"context"
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

type Repo interface {
	commonrepo.Transaction
	GetByID(ctx context.Context, id uint64) (*Job, error)
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, id uint64, patch *JobPatch) error
	ListByOwner(ctx context.Context, ownerID uint64, page, limit int) ([]*Job, int64, error)

	// MarkCompleted 行级条件更新：仅当 completed_at 仍为空时写入终态。
	// 返回值表示本次调用是否赢得了这次状态翻转，赢家负责一次性结算。
	MarkCompleted(ctx context.Context, id uint64, patch *JobPatch) (bool, error)

	// FindStuck 返回在截止时间之前创建、仍未到终态的作业
	FindStuck(ctx context.Context, before time.Time) ([]*Job, error)
}
