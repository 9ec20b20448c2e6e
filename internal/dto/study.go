package dto

// ── 研究与参考数据 DTO ──

// StudyListRequest 研究列表查询参数
type StudyListRequest struct {
	Name string `form:"name" binding:"omitempty,max=32"`
	Tag  string `form:"tag"  binding:"omitempty,max=32"`
	Site string `form:"site" binding:"omitempty,max=32"`
}

// StudyResponse 研究信息
type StudyResponse struct {
	ID          uint                `json:"id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Nickname    string              `json:"nickname"`
	Description string              `json:"description,omitempty"`
	Sites       []StudySiteResponse `json:"sites,omitempty"`
}

// StudySiteResponse 研究下的站点及其标签
type StudySiteResponse struct {
	SiteID   uint   `json:"site_id"`
	SiteCode string `json:"site_code"`
	Tag      string `json:"tag"`
}

// ScantypeResponse 扫描类型
type ScantypeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TimepointListRequest 研究时间点查询参数
type TimepointListRequest struct {
	Site     string `form:"site"`
	Phantoms bool   `form:"phantoms"`
}

// TimepointResponse 受试者时间点
type TimepointResponse struct {
	Name        string `json:"name"`
	BidsName    string `json:"bids_name,omitempty"`
	BidsSession string `json:"bids_session,omitempty"`
	IsPhantom   bool   `json:"is_phantom"`
	SiteID      uint   `json:"site_id"`
}

// RedcapConfigResponse REDCap 接入配置
type RedcapConfigResponse struct {
	ID         uint   `json:"id"`
	Project    int    `json:"project"`
	Instrument string `json:"instrument"`
	URL        string `json:"url"`
}

// CreateStudyRequest 按研究代码获取或创建研究
type CreateStudyRequest struct {
	Name string `form:"name" json:"name" binding:"required,max=32"`
}

// CreateScantypeRequest 按名称获取或创建扫描类型
type CreateScantypeRequest struct {
	Name string `form:"name" json:"name" binding:"required,max=64"`
}

// RedcapConfigRequest REDCap 配置查询参数，project 在 Service 层转换为整数
type RedcapConfigRequest struct {
	Project    string `form:"project"    json:"project"    binding:"required"`
	Instrument string `form:"instrument" json:"instrument" binding:"required,max=255"`
	URL        string `form:"url"        json:"url"        binding:"required,max=1024"`
}
