package dto

// ── QC 审核 DTO ──

// QCQueryRequest QC 记录查询参数
// Approved/Flagged/Blacklisted 为包含开关，未传时默认包含
type QCQueryRequest struct {
	Approved        *bool    `form:"approved"`
	Flagged         *bool    `form:"flagged"`
	Blacklisted     *bool    `form:"blacklisted"`
	IncludeNew      bool     `form:"include_new"`
	IncludePhantoms bool     `form:"include_phantoms"`
	Study           []string `form:"study"`
	Site            []string `form:"site"`
	Tag             []string `form:"tag"`
	Comment         []string `form:"comment"`
	UserID          *uint    `form:"user_id"`
	Sort            bool     `form:"sort"`
}

// OutstandingRequest 待审核列表查询参数
type OutstandingRequest struct {
	Study []string `form:"study"`
	Site  []string `form:"site"`
}

// QCRecordResponse QC 记录 {name, approved, comment}，附带推导出的状态
type QCRecordResponse struct {
	Name     string  `json:"name"`
	Approved *bool   `json:"approved"`
	Comment  *string `json:"comment"`
	Status   string  `json:"status"`
}
