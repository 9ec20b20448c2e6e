package dto

// ── 搜索栏 DTO ──

// 搜索类型
const (
	SearchAll      = "all"
	SearchSubjects = "subjects"
	SearchSessions = "sessions"
	SearchScans    = "scans"
)

// SearchRequest 搜索栏请求
type SearchRequest struct {
	Query string `form:"q"    binding:"required,max=255"`
	Type  string `form:"type" binding:"omitempty,oneof=all subjects sessions scans"`
}

// GetType 搜索类型（默认 all）
func (r *SearchRequest) GetType() string {
	if r.Type == "" {
		return SearchAll
	}
	return r.Type
}

// SubjectResult 受试者时间点匹配结果
type SubjectResult struct {
	Name      string `json:"name"`
	BidsName  string `json:"bids_name,omitempty"`
	IsPhantom bool   `json:"is_phantom"`
	SiteID    uint   `json:"site_id"`
}

// SessionResult 会话匹配结果
type SessionResult struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Num  int    `json:"num"`
}

// ScanResult 扫描匹配结果
type ScanResult struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Timepoint   string `json:"timepoint"`
	Repeat      int    `json:"repeat"`
	Tag         string `json:"tag"`
	Description string `json:"description,omitempty"`
}

// SearchResponse 搜索栏响应
type SearchResponse struct {
	Query    string          `json:"query"`
	Subjects []SubjectResult `json:"subjects"`
	Sessions []SessionResult `json:"sessions"`
	Scans    []ScanResult    `json:"scans"`
}

// ScanLookupRequest 按名称精确查找扫描
type ScanLookupRequest struct {
	Name      string `form:"name"      binding:"required,max=255"`
	Timepoint string `form:"timepoint" binding:"omitempty,max=128"`
	Repeat    *int   `form:"repeat"    binding:"omitempty,min=1"`
	Bids      bool   `form:"bids"`
}
