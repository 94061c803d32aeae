package usagerepo

import (
	"context"
	"fmt"
	"time"

	domain "github.com/emailvalidation9-a11y/backend/internal/biz/account"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
	"github.com/google/wire"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.UsageRepo {
	return &MysqlRepositoryImpl{
		DefaultRepo: commonrepo.NewDefaultRepo(db),
	}
}

// IncrementDaily 以 (owner, day) 为主键upsert，计数在SQL里原子递增
func (m *MysqlRepositoryImpl) IncrementDaily(ctx context.Context, ownerID uint64, day time.Time, kind domain.UsageKind, validations int, creditsUsed int64) error {
	var kindColumn string
	switch kind {
	case domain.UsageSingle:
		kindColumn = "single_count"
	case domain.UsageBulk:
		kindColumn = "bulk_count"
	default:
		return fmt.Errorf("unknown usage kind: %s", kind)
	}

	po := UsageStat{
		OwnerID:     ownerID,
		Day:         day,
		Total:       validations,
		CreditsUsed: creditsUsed,
	}
	switch kind {
	case domain.UsageSingle:
		po.Single = validations
	case domain.UsageBulk:
		po.Bulk = validations
	}

	return m.Db(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			kindColumn:     gorm.Expr(kindColumn+" + ?", validations),
			"total_count":  gorm.Expr("total_count + ?", validations),
			"credits_used": gorm.Expr("credits_used + ?", creditsUsed),
		}),
	}).Create(&po).Error
}
