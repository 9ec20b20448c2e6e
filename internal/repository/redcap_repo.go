package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// RedcapRepository REDCap 配置数据访问接口
type RedcapRepository interface {
	Find(ctx context.Context, project int, instrument, url string) (*model.RedcapConfig, error)
	GetOrCreate(ctx context.Context, project int, instrument, url string) (*model.RedcapConfig, error)
}

// redcapRepo RedcapRepository 的 GORM 实现
type redcapRepo struct {
	db *gorm.DB
}

// NewRedcapRepo 创建 RedcapRepository 实例
func NewRedcapRepo(db *gorm.DB) RedcapRepository {
	return &redcapRepo{db: db}
}

func byRedcapKey(tx *gorm.DB, project int, instrument, url string) *gorm.DB {
	return tx.Where("project = ? AND instrument = ? AND url = ?", project, instrument, url)
}

func (r *redcapRepo) Find(ctx context.Context, project int, instrument, url string) (*model.RedcapConfig, error) {
	var cfg model.RedcapConfig
	err := byRedcapKey(r.db.WithContext(ctx), project, instrument, url).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *redcapRepo) GetOrCreate(ctx context.Context, project int, instrument, url string) (*model.RedcapConfig, error) {
	cfg, err := r.Find(ctx, project, instrument, url)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	row := &model.RedcapConfig{Project: project, Instrument: instrument, URL: url}
	return createOrGet(ctx, r.db, row, func(tx *gorm.DB) *gorm.DB {
		return byRedcapKey(tx, project, instrument, url)
	})
}
