package model

// ScanChecklist 扫描 QC 审核记录，对应 scan_checklists
// Approved 为空表示尚未审核；状态解释见 ClassifyQC
type ScanChecklist struct {
	ScanID   uint    `gorm:"primaryKey" json:"scan_id"`
	Approved *bool   `json:"approved"`
	Comment  *string `gorm:"type:text"  json:"comment"`
	UserID   *uint   `gorm:"index"      json:"user_id,omitempty"`
	Timestamps
}

// TableName 指定表名
func (ScanChecklist) TableName() string { return "scan_checklists" }

// Status 返回该审核记录的 QC 状态
func (c *ScanChecklist) Status() QCStatus {
	if c == nil {
		return QCUnreviewed
	}
	return ClassifyQC(c.Approved, c.Comment)
}

// QCRecord QC 查询的扁平结果：扫描名、审核标记、备注
type QCRecord struct {
	Name     string
	Approved *bool
	Comment  *string
}

// Status 返回该行的 QC 状态
func (r QCRecord) Status() QCStatus {
	return ClassifyQC(r.Approved, r.Comment)
}
