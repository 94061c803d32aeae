package accountrepo

import (
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

type Account struct {
	commonrepo.Mode
	Name             string `gorm:"column:name;size:50;not null"`
	Email            string `gorm:"column:email;size:255;not null;uniqueIndex"`
	Credits          int64  `gorm:"column:credits;default:100"`
	TotalValidations int64  `gorm:"column:total_validations;default:0"`
	PlanName         string `gorm:"column:plan_name;size:50;default:free"`
	PlanCreditsLimit int64  `gorm:"column:plan_credits_limit;default:100"`
}

func (Account) TableName() string {
	return "accounts"
}
