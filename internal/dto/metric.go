package dto

// ── 指标查询 DTO ──

// MetricValuesRequest 指标值查询的非过滤参数，过滤条件由 handler 从表单中收集
type MetricValuesRequest struct {
	ByName bool `form:"byname"`
}

// MetricValueResponse 指标值扁平记录
type MetricValueResponse struct {
	Value          float64 `json:"value"`
	MetrictypeID   uint    `json:"metrictype_id"`
	MetrictypeName string  `json:"metrictype_name"`
	ScanID         uint    `json:"scan_id"`
	ScanName       string  `json:"scan_name"`
	ScantypeID     uint    `json:"scantype_id"`
	ScantypeName   string  `json:"scantype_name"`
	SessionID      uint    `json:"session_id"`
	SessionName    string  `json:"session_name"`
	SiteID         uint    `json:"site_id"`
	SiteName       string  `json:"site_name"`
	StudyID        uint    `json:"study_id"`
	StudyName      string  `json:"study_name"`
}

// MetricTypeResponse 研究/站点/扫描类型/指标类型 组合
type MetricTypeResponse struct {
	StudyID        uint   `json:"study_id"`
	StudyName      string `json:"study_name"`
	SiteID         uint   `json:"site_id"`
	SiteName       string `json:"site_name"`
	ScantypeID     uint   `json:"scantype_id"`
	ScantypeName   string `json:"scantype_name"`
	MetrictypeID   uint   `json:"metrictype_id"`
	MetrictypeName string `json:"metrictype_name"`
}

// OptionItem 级联下拉框选项
type OptionItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MetricOptionsResponse 级联下拉框选项集合
type MetricOptionsResponse struct {
	Studies     []OptionItem `json:"studies"`
	Sites       []OptionItem `json:"sites"`
	Scantypes   []OptionItem `json:"scantypes"`
	Metrictypes []OptionItem `json:"metrictypes"`
}
