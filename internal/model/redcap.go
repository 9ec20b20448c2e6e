package model

// RedcapConfig REDCap 表单接入配置，对应 redcap_configs
type RedcapConfig struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"                                      json:"id"`
	Project    int    `gorm:"not null;uniqueIndex:idx_redcap_configs_key"                   json:"project"`
	Instrument string `gorm:"type:varchar(255);not null;uniqueIndex:idx_redcap_configs_key" json:"instrument"`
	URL        string `gorm:"column:url;type:varchar(1024);not null;uniqueIndex:idx_redcap_configs_key" json:"url"`
	Timestamps
}

// TableName 指定表名
func (RedcapConfig) TableName() string { return "redcap_configs" }
