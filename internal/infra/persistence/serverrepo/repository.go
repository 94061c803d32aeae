package serverrepo

import (
	"context"
	"errors"

	domain "github.com/emailvalidation9-a11y/backend/internal/biz/server"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
	"github.com/google/wire"
	"github.com/samber/lo"
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

func (m *MysqlRepositoryImpl) Create(ctx context.Context, server *domain.Server) error {
	po := new(ValidationServer).FromDomain(server)
	return m.Db(ctx).Create(po).Error
}

func (m *MysqlRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return m.Db(ctx).Delete(&ValidationServer{}, id).Error
}

func (m *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.Server, error) {
	var po ValidationServer
	if err := m.Db(ctx).First(&po, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (m *MysqlRepositoryImpl) GetByURL(ctx context.Context, url string) (*domain.Server, error) {
	var po ValidationServer
	if err := m.Db(ctx).Where("url = ?", url).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (m *MysqlRepositoryImpl) Update(ctx context.Context, id uint64, patch *domain.ServerPatch) error {
	values := patchToMap(patch)
	if len(values) == 0 {
		return nil
	}
	return m.Db(ctx).Model(&ValidationServer{}).Where("id = ?", id).Updates(values).Error
}

func (m *MysqlRepositoryImpl) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Server, int64, error) {
	query := m.Db(ctx).Model(&ValidationServer{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR url LIKE ?", like, like)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []*ValidationServer
	if err := query.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.Limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po *ValidationServer, _ int) *domain.Server {
		return po.ToDomain()
	}), total, nil
}

func (m *MysqlRepositoryImpl) FindEligible(ctx context.Context) ([]*domain.Server, error) {
	var pos []*ValidationServer
	if err := m.Db(ctx).
		Where("is_active = ?", true).
		Where("is_healthy = ?", true).
		Order("weight DESC, id ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return lo.Map(pos, func(po *ValidationServer, _ int) *domain.Server {
		return po.ToDomain()
	}), nil
}

func (m *MysqlRepositoryImpl) FindActive(ctx context.Context) ([]*domain.Server, error) {
	var pos []*ValidationServer
	if err := m.Db(ctx).Where("is_active = ?", true).Order("id ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	return lo.Map(pos, func(po *ValidationServer, _ int) *domain.Server {
		return po.ToDomain()
	}), nil
}
