package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// StudyRepository 研究数据访问接口
type StudyRepository interface {
	List(ctx context.Context) ([]model.Study, error)
	GetByCode(ctx context.Context, code string) (*model.Study, error)
	GetOrCreate(ctx context.Context, code string) (*model.Study, error)
	// ListByTagSite 存在满足条件的研究/站点关联的研究：
	// 关联标签或其备用标签等于 tag，且站点代码等于 siteCode；空值表示不限制
	ListByTagSite(ctx context.Context, tag, siteCode string) ([]model.Study, error)
	// ListForUser 用户被授权的研究
	ListForUser(ctx context.Context, userID uint) ([]model.Study, error)
	ListSites(ctx context.Context, studyID uint) ([]model.StudySite, error)
}

// studyRepo StudyRepository 的 GORM 实现
type studyRepo struct {
	db *gorm.DB
}

// NewStudyRepo 创建 StudyRepository 实例
func NewStudyRepo(db *gorm.DB) StudyRepository {
	return &studyRepo{db: db}
}

func (r *studyRepo) List(ctx context.Context) ([]model.Study, error) {
	var studies []model.Study
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&studies).Error
	return studies, err
}

func (r *studyRepo) GetByCode(ctx context.Context, code string) (*model.Study, error) {
	var study model.Study
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		First(&study).Error
	if err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *studyRepo) GetOrCreate(ctx context.Context, code string) (*model.Study, error) {
	code = strings.ToUpper(code)
	study, err := r.GetByCode(ctx, code)
	if err == nil {
		return study, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return createOrGet(ctx, r.db, model.NewStudy(code), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("UPPER(code) = ?", code)
	})
}

func (r *studyRepo) ListByTagSite(ctx context.Context, tag, siteCode string) ([]model.Study, error) {
	clause := "ss.study_id = studies.id"
	var args []interface{}
	if tag != "" {
		tag = strings.ToUpper(tag)
		clause += " AND (UPPER(ss.code) = ? OR EXISTS (SELECT 1 FROM alt_study_codes alt " +
			"WHERE alt.study_id = ss.study_id AND alt.site_id = ss.site_id AND UPPER(alt.code) = ?))"
		args = append(args, tag, tag)
	}
	if siteCode != "" {
		clause += " AND UPPER(sites.code) = ?"
		args = append(args, strings.ToUpper(siteCode))
	}

	var studies []model.Study
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM study_sites ss JOIN sites ON sites.id = ss.site_id WHERE "+clause+")", args...).
		Order("code ASC").
		Find(&studies).Error
	return studies, err
}

func (r *studyRepo) ListForUser(ctx context.Context, userID uint) ([]model.Study, error) {
	var studies []model.Study
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM study_users su WHERE su.study_id = studies.id AND su.user_id = ?)", userID).
		Order("code ASC").
		Find(&studies).Error
	return studies, err
}

func (r *studyRepo) ListSites(ctx context.Context, studyID uint) ([]model.StudySite, error) {
	var links []model.StudySite
	err := r.db.WithContext(ctx).
		Preload("Site").
		Where("study_id = ?", studyID).
		Order("site_id ASC").
		Find(&links).Error
	return links, err
}
