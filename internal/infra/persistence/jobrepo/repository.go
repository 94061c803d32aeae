package jobrepo

import (
	"context"
	"errors"
	"time"

	domain "github.com/emailvalidation9-a11y/backend/internal/biz/job"
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

func (m *MysqlRepositoryImpl) Create(ctx context.Context, job *domain.Job) error {
	po := new(ValidationJob).FromDomain(job)
	return m.Db(ctx).Create(po).Error
}

func (m *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.Job, error) {
	var po ValidationJob
	if err := m.Db(ctx).First(&po, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (m *MysqlRepositoryImpl) Update(ctx context.Context, id uint64, patch *domain.JobPatch) error {
	values := patchToMap(patch)
	if len(values) == 0 {
		return nil
	}
	return m.Db(ctx).Model(&ValidationJob{}).Where("id = ?", id).Updates(values).Error
}

func (m *MysqlRepositoryImpl) ListByOwner(ctx context.Context, ownerID uint64, page, limit int) ([]*domain.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	query := m.Db(ctx).Model(&ValidationJob{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []*ValidationJob
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po *ValidationJob, _ int) *domain.Job {
		return po.ToDomain()
	}), total, nil
}

// MarkCompleted 条件写入终态，completed_at 已有值时一行都不会更新
func (m *MysqlRepositoryImpl) MarkCompleted(ctx context.Context, id uint64, patch *domain.JobPatch) (bool, error) {
	values := patchToMap(patch)
	if len(values) == 0 {
		return false, nil
	}
	tx := m.Db(ctx).Model(&ValidationJob{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(values)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (m *MysqlRepositoryImpl) FindStuck(ctx context.Context, before time.Time) ([]*domain.Job, error) {
	var pos []*ValidationJob
	if err := m.Db(ctx).
		Where("status IN ?", []domain.JobStatus{domain.StatusQueued, domain.StatusProcessing}).
		Where("created_at < ?", before).
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return lo.Map(pos, func(po *ValidationJob, _ int) *domain.Job {
		return po.ToDomain()
	}), nil
}
