package usagerepo

import (
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

type UsageStat struct {
	commonrepo.Mode
	OwnerID     uint64    `gorm:"column:owner_id;not null;uniqueIndex:idx_owner_day"`
	Day         time.Time `gorm:"column:day;type:date;not null;uniqueIndex:idx_owner_day"`
	Single      int       `gorm:"column:single_count;default:0"`
	Bulk        int       `gorm:"column:bulk_count;default:0"`
	Total       int       `gorm:"column:total_count;default:0"`
	CreditsUsed int64     `gorm:"column:credits_used;default:0"`
}

func (UsageStat) TableName() string {
	return "usage_stats"
}
