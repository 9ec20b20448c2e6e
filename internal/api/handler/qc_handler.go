package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/response"
)

// QCHandler QC 审核记录 HTTP 处理器
type QCHandler struct {
	qcSvc     service.QCService
	exportSvc service.ExportService
}

// NewQCHandler 创建 QCHandler
func NewQCHandler(qcSvc service.QCService, exportSvc service.ExportService) *QCHandler {
	return &QCHandler{qcSvc: qcSvc, exportSvc: exportSvc}
}

// ListScans 按 QC 状态与过滤条件查询扫描
// GET /api/v1/qc/scans?approved=&flagged=&blacklisted=&include_new=&study=&site=&tag=&comment=&user_id=
func (h *QCHandler) ListScans(c *gin.Context) {
	var req dto.QCQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	records, err := h.qcSvc.GetScanQC(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, records, len(records))
}

// Outstanding 尚未审核的扫描
// GET /api/v1/qc/outstanding?study=&site=
func (h *QCHandler) Outstanding(c *gin.Context) {
	var req dto.OutstandingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	records, err := h.qcSvc.OutstandingReviews(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, records, len(records))
}

// ExportScans QC 查询结果导出为 Excel
// GET /api/v1/qc/scans/export
func (h *QCHandler) ExportScans(c *gin.Context) {
	var req dto.QCQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportQC(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}
