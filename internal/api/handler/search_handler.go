package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/response"
)

// SearchHandler 搜索栏 HTTP 处理器
type SearchHandler struct {
	searchSvc service.SearchService
}

// NewSearchHandler 创建 SearchHandler
func NewSearchHandler(searchSvc service.SearchService) *SearchHandler {
	return &SearchHandler{searchSvc: searchSvc}
}

// Search 受试者 / 会话 / 扫描联合搜索
// GET /api/v1/search?q=xxx&type=all
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	result, err := h.searchSvc.Search(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
