package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/model"
)

// QCQuery QC 记录查询条件（已完成默认值与状态推导）
type QCQuery struct {
	States          []model.QCStatus // 允许出现的状态，为空则不返回任何记录
	Studies         []string         // 研究代码
	Sites           []string         // 站点代码
	Tags            []string
	Comments        []string // 精确匹配，大小写不敏感
	IncludePhantoms bool
	UserID          *uint
	Sort            bool
}

// QCRepository QC 审核记录数据访问接口
type QCRepository interface {
	List(ctx context.Context, q QCQuery) ([]model.QCRecord, error)
	GetChecklist(ctx context.Context, scanID uint) (*model.ScanChecklist, error)
}

// qcRepo QCRepository 的 GORM 实现
type qcRepo struct {
	db *gorm.DB
}

// NewQCRepo 创建 QCRepository 实例
func NewQCRepo(db *gorm.DB) QCRepository {
	return &qcRepo{db: db}
}

// qcStateExpr 在 SQL 中由 approved/comment 推导一次 QC 状态，与 model.ClassifyQC 保持一致
const qcStateExpr = "CASE WHEN scan_checklists.approved IS NULL THEN 'unreviewed' " +
	"WHEN scan_checklists.approved THEN " +
	"CASE WHEN scan_checklists.comment IS NULL THEN 'approved' ELSE 'flagged' END " +
	"ELSE 'blacklisted' END"

func (r *qcRepo) List(ctx context.Context, q QCQuery) ([]model.QCRecord, error) {
	if len(q.States) == 0 {
		return []model.QCRecord{}, nil
	}
	states := make([]string, 0, len(q.States))
	for _, s := range q.States {
		states = append(states, string(s))
	}

	db := r.db.WithContext(ctx).
		Table("scans").
		Select("scans.name AS name, scan_checklists.approved AS approved, scan_checklists.comment AS comment").
		Joins("LEFT JOIN scan_checklists ON scan_checklists.scan_id = scans.id").
		Where("("+qcStateExpr+") IN ?", states)

	if len(q.Sites) > 0 || q.UserID != nil || !q.IncludePhantoms {
		db = db.Joins("JOIN timepoints ON timepoints.name = scans.timepoint")
	}
	if !q.IncludePhantoms {
		db = db.Where("timepoints.is_phantom = ?", false)
	}
	if len(q.Studies) > 0 {
		db = db.Where("EXISTS (SELECT 1 FROM study_timepoints st JOIN studies s ON s.id = st.study_id "+
			"WHERE st.timepoint = scans.timepoint AND UPPER(s.code) IN ?)", upperAll(q.Studies))
	}
	if len(q.Sites) > 0 {
		db = db.Where("timepoints.site_id IN (SELECT id FROM sites WHERE UPPER(code) IN ?)", upperAll(q.Sites))
	}
	if len(q.Tags) > 0 {
		db = db.Where("UPPER(scans.tag) IN ?", upperAll(q.Tags))
	}
	if len(q.Comments) > 0 {
		lowered := make([]string, 0, len(q.Comments))
		for _, c := range q.Comments {
			lowered = append(lowered, strings.ToLower(c))
		}
		db = db.Where("LOWER(scan_checklists.comment) IN ?", lowered)
	}
	if q.UserID != nil {
		db = db.Where("EXISTS (SELECT 1 FROM study_timepoints st JOIN study_users su ON su.study_id = st.study_id "+
			"WHERE st.timepoint = scans.timepoint AND su.user_id = ? "+
			"AND (su.site_id IS NULL OR su.site_id = timepoints.site_id))", *q.UserID)
	}
	if q.Sort {
		db = db.Order("scans.name ASC")
	}

	var rows []model.QCRecord
	err := db.Scan(&rows).Error
	return rows, err
}

func (r *qcRepo) GetChecklist(ctx context.Context, scanID uint) (*model.ScanChecklist, error) {
	var c model.ScanChecklist
	err := r.db.WithContext(ctx).
		Where("scan_id = ?", scanID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
