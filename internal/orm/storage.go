package orm

import (
	"fmt"

	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/accountrepo"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/jobrepo"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/serverrepo"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/usagerepo"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
	"github.com/google/wire"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Provider = wire.NewSet(New, ProvideDB)

type Storage struct {
	db *gorm.DB
}

func New(cfg config.DatabaseConfig) (*Storage, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true, // 禁用外键约束创建，保留关联关系
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)

	if err := db.AutoMigrate(
		&serverrepo.ValidationServer{},
		&jobrepo.ValidationJob{},
		&accountrepo.Account{},
		&usagerepo.UsageStat{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

func ProvideDB(s *Storage) commonrepo.DB {
	return s.db
}

func (s *Storage) DB() *gorm.DB {
	return s.db
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
