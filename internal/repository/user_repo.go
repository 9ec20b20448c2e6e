package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	// Search 用户名子串匹配（大小写不敏感）
	Search(ctx context.Context, username string) ([]model.User, error)
	ListGrants(ctx context.Context, userID uint) ([]model.StudyUser, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Search(ctx context.Context, username string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where(containsClause("username"), containsPattern(username)).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListGrants(ctx context.Context, userID uint) ([]model.StudyUser, error) {
	var grants []model.StudyUser
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("study_id ASC").
		Find(&grants).Error
	return grants, err
}
