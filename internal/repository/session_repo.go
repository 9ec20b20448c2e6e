package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// SessionRepository 访视会话数据访问接口
type SessionRepository interface {
	Get(ctx context.Context, name string, num int) (*model.Session, error)
	// FindByName 名称精确匹配（大小写不敏感），num 非空时同时匹配会话序号
	FindByName(ctx context.Context, name string, num *int, limit int) ([]model.Session, error)
	// Search 名称子串匹配
	Search(ctx context.Context, text string, limit int) ([]model.Session, error)
}

// sessionRepo SessionRepository 的 GORM 实现
type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Get(ctx context.Context, name string, num int) (*model.Session, error) {
	var sess model.Session
	err := r.db.WithContext(ctx).
		Where("UPPER(name) = ? AND num = ?", strings.ToUpper(name), num).
		First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionRepo) FindByName(ctx context.Context, name string, num *int, limit int) ([]model.Session, error) {
	db := withLimit(r.db.WithContext(ctx), limit).
		Where("UPPER(name) = ?", strings.ToUpper(name))
	if num != nil {
		db = db.Where("num = ?", *num)
	}

	var sessions []model.Session
	err := db.Order("name ASC, num ASC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) Search(ctx context.Context, text string, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := withLimit(r.db.WithContext(ctx), limit).
		Where(containsClause("name"), containsPattern(text)).
		Order("name ASC, num ASC").
		Find(&sessions).Error
	return sessions, err
}
