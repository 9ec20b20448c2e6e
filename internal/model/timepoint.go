package model

// Timepoint 受试者时间点表，对应 timepoints
// Name 形如 STUDY_SITE_SUBJECT_TIMEPOINT，是 sessions.name 的取值来源
type Timepoint struct {
	Name        string `gorm:"type:varchar(128);primaryKey" json:"name"`
	BidsName    string `gorm:"type:varchar(128);index"      json:"bids_name,omitempty"`
	BidsSession string `gorm:"type:varchar(32)"             json:"bids_session,omitempty"`
	IsPhantom   bool   `gorm:"not null;default:false"       json:"is_phantom"`
	SiteID      uint   `gorm:"not null;index"               json:"site_id"`

	Site *Site `gorm:"foreignKey:SiteID;references:ID" json:"site,omitempty"`
}

// TableName 指定表名
func (Timepoint) TableName() string { return "timepoints" }

// StudyTimepoint 研究与时间点的关联（一个时间点可属于多个研究）
type StudyTimepoint struct {
	StudyID   uint   `gorm:"primaryKey"                                        json:"study_id"`
	Timepoint string `gorm:"column:timepoint;type:varchar(128);primaryKey;index" json:"timepoint"`
}

// TableName 指定表名
func (StudyTimepoint) TableName() string { return "study_timepoints" }

// Session 访视会话表，对应 sessions，(name, num) 唯一
type Session struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"                                 json:"id"`
	Name string `gorm:"type:varchar(128);not null;uniqueIndex:idx_sessions_name_num" json:"name"`
	Num  int    `gorm:"not null;uniqueIndex:idx_sessions_name_num"               json:"num"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }
