package account

import (
	"context"
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

type Repo interface {
	commonrepo.Transaction
	GetByID(ctx context.Context, id uint64) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, id uint64, patch *AccountPatch) error
}

// UsageKind 按类型维度统计日用量
type UsageKind string

const (
	UsageSingle UsageKind = "single"
	UsageBulk   UsageKind = "bulk"
)

// UsageRepo 按 (账户, 自然日) 一行累加用量，要求单条SQL原子递增
type UsageRepo interface {
	IncrementDaily(ctx context.Context, ownerID uint64, day time.Time, kind UsageKind, validations int, creditsUsed int64) error
}

// Day truncates a timestamp to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
