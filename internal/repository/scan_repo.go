package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// ScanField 可做子串搜索的扫描列
type ScanField int

const (
	ScanFieldName ScanField = iota
	ScanFieldTimepoint
	ScanFieldTag
	ScanFieldDescription
)

var scanFieldColumns = map[ScanField]string{
	ScanFieldName:        "scans.name",
	ScanFieldTimepoint:   "scans.timepoint",
	ScanFieldTag:         "scans.tag",
	ScanFieldDescription: "scans.description",
}

func (f ScanField) String() string {
	switch f {
	case ScanFieldName:
		return "name"
	case ScanFieldTimepoint:
		return "timepoint"
	case ScanFieldTag:
		return "tag"
	case ScanFieldDescription:
		return "description"
	}
	return "unknown"
}

// ScanLookup 按名称精确查找扫描的条件
type ScanLookup struct {
	Name      string
	Timepoint string // 可选
	Repeat    *int   // 可选
	Bids      bool   // Name 为 BIDS 名称
}

// ScanRepository 扫描数据访问接口
type ScanRepository interface {
	Find(ctx context.Context, q ScanLookup) ([]model.Scan, error)
	// FindByTimepoint 时间点精确匹配，repeat 非空时同时匹配重复序号
	FindByTimepoint(ctx context.Context, timepoint string, repeat *int, limit int) ([]model.Scan, error)
	// Search 在单列上做大小写不敏感的子串匹配
	Search(ctx context.Context, field ScanField, text string, limit int) ([]model.Scan, error)
}

// scanRepo ScanRepository 的 GORM 实现
type scanRepo struct {
	db *gorm.DB
}

// NewScanRepo 创建 ScanRepository 实例
func NewScanRepo(db *gorm.DB) ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Find(ctx context.Context, q ScanLookup) ([]model.Scan, error) {
	db := r.db.WithContext(ctx)
	if q.Bids {
		db = db.Where("bids_name = ?", q.Name)
	} else {
		db = db.Where("UPPER(name) = ?", strings.ToUpper(q.Name))
	}
	if q.Timepoint != "" {
		db = db.Where("UPPER(timepoint) = ?", strings.ToUpper(q.Timepoint))
	}
	if q.Repeat != nil {
		db = db.Where(`"repeat" = ?`, *q.Repeat)
	}

	var scans []model.Scan
	err := db.Order("name ASC").Find(&scans).Error
	return scans, err
}

func (r *scanRepo) FindByTimepoint(ctx context.Context, timepoint string, repeat *int, limit int) ([]model.Scan, error) {
	db := withLimit(r.db.WithContext(ctx), limit).
		Where("UPPER(timepoint) = ?", strings.ToUpper(timepoint))
	if repeat != nil {
		db = db.Where(`"repeat" = ?`, *repeat)
	}

	var scans []model.Scan
	err := db.Order("name ASC").Find(&scans).Error
	return scans, err
}

func (r *scanRepo) Search(ctx context.Context, field ScanField, text string, limit int) ([]model.Scan, error) {
	column, ok := scanFieldColumns[field]
	if !ok {
		return nil, nil
	}

	var scans []model.Scan
	err := withLimit(r.db.WithContext(ctx), limit).
		Where(containsClause(column), containsPattern(text)).
		Order("scans.name ASC").
		Find(&scans).Error
	return scans, err
}
