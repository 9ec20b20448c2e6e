package dto

// ── 用户模块 DTO ──

// UserSearchRequest 用户查询参数
type UserSearchRequest struct {
	Username string `form:"username" binding:"omitempty,max=100"`
}

// SiteResponse 站点信息
type SiteResponse struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
