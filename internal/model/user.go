package model

import "strings"

// User 用户表，对应 users
type User struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"               json:"id"`
	Username       string `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	FirstName      string `gorm:"type:varchar(100)"                      json:"first_name"`
	LastName       string `gorm:"type:varchar(100)"                      json:"last_name"`
	DashboardAdmin bool   `gorm:"not null;default:false"                 json:"dashboard_admin"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 返回 "名 姓"，缺省时回退到用户名
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// StudyUser 用户的研究可见性授权
// SiteID 为空表示该研究下全部站点可见
type StudyUser struct {
	ID      uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  uint  `gorm:"not null;index"           json:"user_id"`
	StudyID uint  `gorm:"not null;index"           json:"study_id"`
	SiteID  *uint `gorm:"index"                    json:"site_id,omitempty"`
}

// TableName 指定表名
func (StudyUser) TableName() string { return "study_users" }
