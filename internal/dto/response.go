package dto

// ── 用户模块响应 ──

// UserResponse 用户信息响应
type UserResponse struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	DashboardAdmin bool   `json:"dashboard_admin"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
