package model

// QCStatus 扫描 QC 的封闭状态集合，只由 approved/comment 两个字段推导一次
type QCStatus string

const (
	QCUnreviewed  QCStatus = "unreviewed"
	QCApproved    QCStatus = "approved"
	QCFlagged     QCStatus = "flagged"
	QCBlacklisted QCStatus = "blacklisted"
)

// ClassifyQC 根据审核标记与备注推导 QC 状态
//
//	approved=nil            → Unreviewed
//	approved=true,  无备注  → Approved
//	approved=true,  有备注  → Flagged
//	approved=false          → Blacklisted
func ClassifyQC(approved *bool, comment *string) QCStatus {
	switch {
	case approved == nil:
		return QCUnreviewed
	case *approved && comment == nil:
		return QCApproved
	case *approved:
		return QCFlagged
	default:
		return QCBlacklisted
	}
}

// Reviewed 是否已审核
func (s QCStatus) Reviewed() bool { return s != QCUnreviewed }

// Valid 是否为已知状态
func (s QCStatus) Valid() bool {
	switch s {
	case QCUnreviewed, QCApproved, QCFlagged, QCBlacklisted:
		return true
	}
	return false
}
