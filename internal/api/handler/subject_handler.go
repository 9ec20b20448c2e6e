package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/response"
)

// SubjectHandler 会话 / 时间点 / 扫描精确查询 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// GetSession 按名称与序号获取会话
// GET /api/v1/sessions/:name/:num
func (h *SubjectHandler) GetSession(c *gin.Context) {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil || num < 1 {
		response.BadRequest(c, response.CodeValidation, "num 必须为正整数")
		return
	}

	sess, err := h.subjectSvc.GetSession(c.Request.Context(), c.Param("name"), num)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, sess)
}

// GetTimepoint 获取时间点；带 bids_session 时 :name 视为 BIDS 名称
// GET /api/v1/timepoints/:name?bids_session=&study=
func (h *SubjectHandler) GetTimepoint(c *gin.Context) {
	tp, err := h.subjectSvc.GetTimepoint(c.Request.Context(), c.Param("name"), c.Query("bids_session"), c.Query("study"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, tp)
}

// FindScans 按名称精确查找扫描
// GET /api/v1/scans?name=&timepoint=&repeat=&bids=
func (h *SubjectHandler) FindScans(c *gin.Context) {
	var req dto.ScanLookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	scans, err := h.subjectSvc.GetScan(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, scans, len(scans))
}
