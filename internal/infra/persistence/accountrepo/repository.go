package accountrepo

import (
	"context"
	"errors"

	domain "github.com/emailvalidation9-a11y/backend/internal/biz/account"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
	"github.com/google/wire"
	"gorm.io/gorm"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{
		DefaultRepo: commonrepo.NewDefaultRepo(db),
	}
}

func (m *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.Account, error) {
	var po Account
	if err := m.Db(ctx).First(&po, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (m *MysqlRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	po := new(Account).FromDomain(account)
	return m.Db(ctx).Create(po).Error
}

func (m *MysqlRepositoryImpl) Update(ctx context.Context, id uint64, patch *domain.AccountPatch) error {
	values := patchToMap(patch)
	if len(values) == 0 {
		return nil
	}
	return m.Db(ctx).Model(&Account{}).Where("id = ?", id).Updates(values).Error
}
