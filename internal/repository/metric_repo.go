package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/filter"
	"github.com/tomwright01/dashboard/internal/model"
)

// MetricRepository 指标数据访问接口
type MetricRepository interface {
	// ListValues 指标值扁平记录。基线排除（bl_comment 非空）的扫描始终被过滤，按会话名排序
	ListValues(ctx context.Context, f *filter.Filter) ([]model.MetricValueRecord, error)
	// ListTypes 研究/站点/扫描类型/指标类型 的去重组合
	ListTypes(ctx context.Context, f *filter.Filter) ([]model.MetricTypeRecord, error)
}

// metricRepo MetricRepository 的 GORM 实现
type metricRepo struct {
	db *gorm.DB
}

// NewMetricRepo 创建 MetricRepository 实例
func NewMetricRepo(db *gorm.DB) MetricRepository {
	return &metricRepo{db: db}
}

const metricValueColumns = "metric_values.value AS value, " +
	"metrictypes.id AS metrictype_id, metrictypes.name AS metrictype_name, " +
	"scans.id AS scan_id, scans.name AS scan_name, " +
	"scantypes.id AS scantype_id, scantypes.name AS scantype_name, " +
	"sessions.id AS session_id, sessions.name AS session_name, " +
	"sites.id AS site_id, sites.name AS site_name, " +
	"studies.id AS study_id, studies.name AS study_name"

// metricValueChain 连接 指标值→指标类型→扫描→扫描类型→会话→时间点→站点→研究 的完整路径
func (r *metricRepo) metricValueChain(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("metric_values").
		Joins("JOIN metrictypes ON metrictypes.id = metric_values.metrictype_id").
		Joins("JOIN scans ON scans.id = metric_values.scan_id").
		Joins("JOIN scantypes ON scantypes.name = scans.tag").
		Joins("JOIN session_scans ON session_scans.scan_id = scans.id").
		Joins("JOIN sessions ON sessions.id = session_scans.session_id").
		Joins("JOIN timepoints ON timepoints.name = sessions.name").
		Joins("JOIN sites ON sites.id = timepoints.site_id").
		Joins("JOIN study_timepoints ON study_timepoints.timepoint = timepoints.name").
		Joins("JOIN studies ON studies.id = study_timepoints.study_id").
		Where("scans.bl_comment IS NULL")
}

func (r *metricRepo) ListValues(ctx context.Context, f *filter.Filter) ([]model.MetricValueRecord, error) {
	db := r.metricValueChain(ctx).Select(metricValueColumns)
	if f != nil {
		db = f.Apply(db)
	}

	var rows []model.MetricValueRecord
	err := db.Order("sessions.name ASC").
		Order("metric_values.id ASC").
		Scan(&rows).Error
	return rows, err
}

const metricTypeColumns = "studies.id AS study_id, studies.name AS study_name, " +
	"sites.id AS site_id, sites.name AS site_name, " +
	"scantypes.id AS scantype_id, scantypes.name AS scantype_name, " +
	"metrictypes.id AS metrictype_id, metrictypes.name AS metrictype_name"

func (r *metricRepo) ListTypes(ctx context.Context, f *filter.Filter) ([]model.MetricTypeRecord, error) {
	db := r.db.WithContext(ctx).
		Table("studies").
		Joins("JOIN study_sites ON study_sites.study_id = studies.id").
		Joins("JOIN sites ON sites.id = study_sites.site_id").
		Joins("JOIN study_scantypes ON study_scantypes.study_id = studies.id").
		Joins("JOIN scantypes ON scantypes.id = study_scantypes.scantype_id").
		Joins("JOIN metrictypes ON metrictypes.scantype_id = scantypes.id").
		Distinct(metricTypeColumns)
	if f != nil {
		db = f.Apply(db)
	}

	var rows []model.MetricTypeRecord
	err := db.Order("studies.id ASC, sites.id ASC, scantypes.id ASC, metrictypes.id ASC").
		Scan(&rows).Error
	return rows, err
}
