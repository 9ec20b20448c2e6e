package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// TimepointRepository 受试者时间点数据访问接口
type TimepointRepository interface {
	GetByName(ctx context.Context, name string) (*model.Timepoint, error)
	// GetByBids 按 BIDS 名称与 BIDS 会话查找，studyID 非空时限定所属研究
	GetByBids(ctx context.Context, bidsName, bidsSession string, studyID *uint) (*model.Timepoint, error)
	// ListNames 研究下的时间点名称，siteID 为空表示全部站点
	ListNames(ctx context.Context, studyID uint, siteID *uint, includePhantoms bool) ([]string, error)
	Search(ctx context.Context, text string, limit int) ([]model.Timepoint, error)
}

// timepointRepo TimepointRepository 的 GORM 实现
type timepointRepo struct {
	db *gorm.DB
}

// NewTimepointRepo 创建 TimepointRepository 实例
func NewTimepointRepo(db *gorm.DB) TimepointRepository {
	return &timepointRepo{db: db}
}

func (r *timepointRepo) GetByName(ctx context.Context, name string) (*model.Timepoint, error) {
	var tp model.Timepoint
	err := r.db.WithContext(ctx).
		Preload("Site").
		Where("UPPER(name) = ?", strings.ToUpper(name)).
		First(&tp).Error
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func (r *timepointRepo) GetByBids(ctx context.Context, bidsName, bidsSession string, studyID *uint) (*model.Timepoint, error) {
	db := r.db.WithContext(ctx).
		Preload("Site").
		Where("bids_name = ? AND bids_session = ?", bidsName, bidsSession)
	if studyID != nil {
		db = db.Where("EXISTS (SELECT 1 FROM study_timepoints st WHERE st.timepoint = timepoints.name AND st.study_id = ?)", *studyID)
	}

	var tp model.Timepoint
	if err := db.First(&tp).Error; err != nil {
		return nil, err
	}
	return &tp, nil
}

func (r *timepointRepo) ListNames(ctx context.Context, studyID uint, siteID *uint, includePhantoms bool) ([]string, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Timepoint{}).
		Joins("JOIN study_timepoints ON study_timepoints.timepoint = timepoints.name").
		Where("study_timepoints.study_id = ?", studyID)
	if siteID != nil {
		db = db.Where("timepoints.site_id = ?", *siteID)
	}
	if !includePhantoms {
		db = db.Where("timepoints.is_phantom = ?", false)
	}

	var names []string
	err := db.Order("timepoints.name ASC").
		Pluck("timepoints.name", &names).Error
	return names, err
}

func (r *timepointRepo) Search(ctx context.Context, text string, limit int) ([]model.Timepoint, error) {
	var tps []model.Timepoint
	err := withLimit(r.db.WithContext(ctx), limit).
		Where(containsClause("name"), containsPattern(text)).
		Order("name ASC").
		Find(&tps).Error
	return tps, err
}
