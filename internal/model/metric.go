package model

// Metrictype 指标类型表，对应 metrictypes，隶属于某个扫描类型
type Metrictype struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name       string `gorm:"type:varchar(64);not null;index" json:"name"`
	ScantypeID uint   `gorm:"not null;index"                  json:"scantype_id"`
}

// TableName 指定表名
func (Metrictype) TableName() string { return "metrictypes" }

// MetricValue 指标值表，对应 metric_values
type MetricValue struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Value        float64 `gorm:"not null"                 json:"value"`
	MetrictypeID uint    `gorm:"not null;index"           json:"metrictype_id"`
	ScanID       uint    `gorm:"not null;index"           json:"scan_id"`
}

// TableName 指定表名
func (MetricValue) TableName() string { return "metric_values" }

// ── 查询投影（非表） ──

// MetricValueRecord 指标值查询的扁平结果行
type MetricValueRecord struct {
	Value          float64
	MetrictypeID   uint
	MetrictypeName string
	ScanID         uint
	ScanName       string
	ScantypeID     uint
	ScantypeName   string
	SessionID      uint
	SessionName    string
	SiteID         uint
	SiteName       string
	StudyID        uint
	StudyName      string
}

// MetricTypeRecord 研究/站点/扫描类型/指标类型 四元组
type MetricTypeRecord struct {
	StudyID        uint
	StudyName      string
	SiteID         uint
	SiteName       string
	ScantypeID     uint
	ScantypeName   string
	MetrictypeID   uint
	MetrictypeName string
}
