package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// SiteRepository 站点数据访问接口
type SiteRepository interface {
	List(ctx context.Context) ([]model.Site, error)
	GetByCode(ctx context.Context, code string) (*model.Site, error)
	// ListForUser 用户可见的站点：授权研究下的站点，site_id 为空的授权覆盖该研究全部站点
	ListForUser(ctx context.Context, userID uint) ([]model.Site, error)
}

// siteRepo SiteRepository 的 GORM 实现
type siteRepo struct {
	db *gorm.DB
}

// NewSiteRepo 创建 SiteRepository 实例
func NewSiteRepo(db *gorm.DB) SiteRepository {
	return &siteRepo{db: db}
}

func (r *siteRepo) List(ctx context.Context) ([]model.Site, error) {
	var sites []model.Site
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&sites).Error
	return sites, err
}

func (r *siteRepo) GetByCode(ctx context.Context, code string) (*model.Site, error) {
	var site model.Site
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		First(&site).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepo) ListForUser(ctx context.Context, userID uint) ([]model.Site, error) {
	var sites []model.Site
	err := r.db.WithContext(ctx).
		Where("sites.id IN (SELECT ss.site_id FROM study_sites ss "+
			"JOIN study_users su ON su.study_id = ss.study_id "+
			"WHERE su.user_id = ? AND (su.site_id IS NULL OR su.site_id = ss.site_id))", userID).
		Order("code ASC").
		Find(&sites).Error
	return sites, err
}
