package model

// Study 研究项目表，对应 studies
// Code 为命名规范中的研究代码（如 SPN01），比较时大小写不敏感
type Study struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"          json:"id"`
	Code        string `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Name        string `gorm:"type:varchar(255)"                 json:"name"`
	Nickname    string `gorm:"type:varchar(64);index"            json:"nickname"`
	Description string `gorm:"type:text"                         json:"description,omitempty"`
	Timestamps
}

// TableName 指定表名
func (Study) TableName() string { return "studies" }

// NewStudy 按研究代码构造一条新记录（名称默认与代码一致）
func NewStudy(code string) *Study {
	return &Study{Code: code, Name: code, Nickname: code}
}

// Site 采集站点表，对应 sites
type Site struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"              json:"id"`
	Code string `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(255)"                     json:"name"`
	Timestamps
}

// TableName 指定表名
func (Site) TableName() string { return "sites" }

// StudySite 研究与站点的关联，Code 为该站点在命名中使用的研究标签
type StudySite struct {
	StudyID uint   `gorm:"primaryKey"        json:"study_id"`
	SiteID  uint   `gorm:"primaryKey"        json:"site_id"`
	Code    string `gorm:"type:varchar(32);index" json:"code"`

	Site *Site `gorm:"foreignKey:SiteID;references:ID" json:"site,omitempty"`
}

// TableName 指定表名
func (StudySite) TableName() string { return "study_sites" }

// AltStudyCode 研究/站点组合的备用标签
type AltStudyCode struct {
	StudyID uint   `gorm:"primaryKey"                  json:"study_id"`
	SiteID  uint   `gorm:"primaryKey"                  json:"site_id"`
	Code    string `gorm:"type:varchar(32);primaryKey" json:"code"`
}

// TableName 指定表名
func (AltStudyCode) TableName() string { return "alt_study_codes" }

// StudyScantype 研究启用的扫描类型
type StudyScantype struct {
	StudyID    uint `gorm:"primaryKey" json:"study_id"`
	ScantypeID uint `gorm:"primaryKey" json:"scantype_id"`
}

// TableName 指定表名
func (StudyScantype) TableName() string { return "study_scantypes" }
