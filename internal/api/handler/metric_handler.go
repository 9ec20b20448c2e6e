package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MetricHandler 指标查询 HTTP 处理器
//
// 过滤条件可重复传参或逗号拼接，GET 与表单 POST 等价。
type MetricHandler struct {
	metricSvc service.MetricService
	exportSvc service.ExportService
}

// NewMetricHandler 创建 MetricHandler
func NewMetricHandler(metricSvc service.MetricService, exportSvc service.ExportService) *MetricHandler {
	return &MetricHandler{metricSvc: metricSvc, exportSvc: exportSvc}
}

// ListTypes 研究/站点/扫描类型/指标类型 组合
// GET|POST /api/v1/metrics/types
func (h *MetricHandler) ListTypes(c *gin.Context) {
	types, err := h.metricSvc.QueryTypes(c.Request.Context(), filterValues(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, types, len(types))
}

// Options 级联下拉框选项
// GET|POST /api/v1/metrics/options
func (h *MetricHandler) Options(c *gin.Context) {
	opts, err := h.metricSvc.Options(c.Request.Context(), filterValues(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, opts)
}

// ListValues 指标值
// GET|POST /api/v1/metrics/values?byname=true
func (h *MetricHandler) ListValues(c *gin.Context) {
	var req dto.MetricValuesRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	values, err := h.metricSvc.QueryValues(c.Request.Context(), filterValues(c), req.ByName)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, values, len(values))
}

// ExportValues 指标值导出为 Excel
// GET|POST /api/v1/metrics/values/export
func (h *MetricHandler) ExportValues(c *gin.Context) {
	var req dto.MetricValuesRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportMetricValues(c.Request.Context(), filterValues(c), req.ByName)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}
