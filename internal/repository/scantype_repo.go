package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// ScantypeRepository 扫描类型数据访问接口
type ScantypeRepository interface {
	List(ctx context.Context) ([]model.Scantype, error)
	GetByName(ctx context.Context, name string) (*model.Scantype, error)
	GetOrCreate(ctx context.Context, name string) (*model.Scantype, error)
}

// scantypeRepo ScantypeRepository 的 GORM 实现
type scantypeRepo struct {
	db *gorm.DB
}

// NewScantypeRepo 创建 ScantypeRepository 实例
func NewScantypeRepo(db *gorm.DB) ScantypeRepository {
	return &scantypeRepo{db: db}
}

func (r *scantypeRepo) List(ctx context.Context) ([]model.Scantype, error) {
	var types []model.Scantype
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *scantypeRepo) GetByName(ctx context.Context, name string) (*model.Scantype, error) {
	var st model.Scantype
	err := r.db.WithContext(ctx).
		Where("UPPER(name) = ?", strings.ToUpper(name)).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *scantypeRepo) GetOrCreate(ctx context.Context, name string) (*model.Scantype, error) {
	st, err := r.GetByName(ctx, name)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return createOrGet(ctx, r.db, &model.Scantype{Name: name}, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("UPPER(name) = ?", strings.ToUpper(name))
	})
}
