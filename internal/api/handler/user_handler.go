package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/response"
)

// UserHandler 用户与可见范围 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 按用户名查找
// GET /api/v1/users?username=
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	users, err := h.userSvc.FindUsers(c.Request.Context(), req.Username)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, users, len(users))
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userSvc.GetUser(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, user)
}

// ListStudies 用户可见的研究
// GET /api/v1/users/:id/studies
func (h *UserHandler) ListStudies(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	studies, err := h.userSvc.UserStudies(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, studies, len(studies))
}

// ListSites 用户可见的站点
// GET /api/v1/users/:id/sites
func (h *UserHandler) ListSites(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	sites, err := h.userSvc.UserSites(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, sites, len(sites))
}
