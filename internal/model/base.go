package model

import "time"

// Timestamps 通用审计字段（参考数据与 QC 记录嵌入）
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// All 返回全部需要建表的模型，供 AutoMigrate（sqlite 开发库与测试）使用
func All() []interface{} {
	return []interface{}{
		&Study{},
		&Site{},
		&StudySite{},
		&AltStudyCode{},
		&Timepoint{},
		&StudyTimepoint{},
		&Session{},
		&Scan{},
		&SessionScan{},
		&Scantype{},
		&StudyScantype{},
		&Metrictype{},
		&MetricValue{},
		&User{},
		&StudyUser{},
		&ScanChecklist{},
		&RedcapConfig{},
	}
}
