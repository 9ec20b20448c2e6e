package model

// Scan 扫描序列表，对应 scans
// BlComment 非空表示该扫描已被基线排除，不参与任何指标查询
type Scan struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name        string  `gorm:"type:varchar(255);not null;index"  json:"name"`
	BidsName    string  `gorm:"type:varchar(255);index"           json:"bids_name,omitempty"`
	Timepoint   string  `gorm:"column:timepoint;type:varchar(128);not null;index" json:"timepoint"`
	Repeat      int     `gorm:"column:repeat;not null;default:1"  json:"repeat"`
	Tag         string  `gorm:"type:varchar(64);not null;index"   json:"tag"`
	Description string  `gorm:"type:varchar(255)"                 json:"description,omitempty"`
	BlComment   *string `gorm:"type:text"                         json:"bl_comment,omitempty"`
}

// TableName 指定表名
func (Scan) TableName() string { return "scans" }

// SessionScan 会话与扫描的多对多关联
type SessionScan struct {
	SessionID uint `gorm:"primaryKey"       json:"session_id"`
	ScanID    uint `gorm:"primaryKey;index" json:"scan_id"`
}

// TableName 指定表名
func (SessionScan) TableName() string { return "session_scans" }

// Scantype 扫描类型（标签）表，对应 scantypes，Name 即 scans.tag 的取值
type Scantype struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name string `gorm:"type:varchar(64);not null;uniqueIndex" json:"name"`
	Timestamps
}

// TableName 指定表名
func (Scantype) TableName() string { return "scantypes" }
