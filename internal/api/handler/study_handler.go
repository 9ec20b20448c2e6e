package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/response"
)

// StudyHandler 研究与参考数据 HTTP 处理器
//
// GET 只读查询；POST 为 create-if-missing，供数据接入流程调用，重复调用返回同一条记录。
type StudyHandler struct {
	studySvc   service.StudyService
	subjectSvc service.SubjectService
}

// NewStudyHandler 创建 StudyHandler
func NewStudyHandler(studySvc service.StudyService, subjectSvc service.SubjectService) *StudyHandler {
	return &StudyHandler{studySvc: studySvc, subjectSvc: subjectSvc}
}

// ListStudies 研究列表
// GET /api/v1/studies?name=&tag=&site=
func (h *StudyHandler) ListStudies(c *gin.Context) {
	var req dto.StudyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	studies, err := h.studySvc.GetStudies(c.Request.Context(), &req, false)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, studies, len(studies))
}

// CreateStudy 获取或创建研究
// POST /api/v1/studies
func (h *StudyHandler) CreateStudy(c *gin.Context) {
	var req dto.CreateStudyRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	studies, err := h.studySvc.GetStudies(c.Request.Context(), &dto.StudyListRequest{Name: req.Name}, true)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if len(studies) == 0 {
		response.InternalError(c)
		return
	}
	response.OK(c, studies[0])
}

// GetStudy 研究详情（含站点）
// GET /api/v1/studies/:code
func (h *StudyHandler) GetStudy(c *gin.Context) {
	study, err := h.studySvc.GetStudy(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, study)
}

// ListTimepoints 研究下的时间点名称
// GET /api/v1/studies/:code/timepoints?site=&phantoms=
func (h *StudyHandler) ListTimepoints(c *gin.Context) {
	var req dto.TimepointListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	names, err := h.subjectSvc.GetStudyTimepoints(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, names, len(names))
}

// ListScantypes 扫描类型
// GET /api/v1/scantypes?name=
func (h *StudyHandler) ListScantypes(c *gin.Context) {
	types, err := h.studySvc.GetScantypes(c.Request.Context(), c.Query("name"), false)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKList(c, types, len(types))
}

// CreateScantype 获取或创建扫描类型
// POST /api/v1/scantypes
func (h *StudyHandler) CreateScantype(c *gin.Context) {
	var req dto.CreateScantypeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	types, err := h.studySvc.GetScantypes(c.Request.Context(), req.Name, true)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if len(types) == 0 {
		response.InternalError(c)
		return
	}
	response.OK(c, types[0])
}

// GetRedcapConfig 查询 REDCap 接入配置
// GET /api/v1/redcap?project=&instrument=&url=
func (h *StudyHandler) GetRedcapConfig(c *gin.Context) {
	h.redcapConfig(c, false)
}

// CreateRedcapConfig 获取或创建 REDCap 接入配置
// POST /api/v1/redcap
func (h *StudyHandler) CreateRedcapConfig(c *gin.Context) {
	h.redcapConfig(c, true)
}

func (h *StudyHandler) redcapConfig(c *gin.Context, create bool) {
	var req dto.RedcapConfigRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
		return
	}

	cfg, err := h.studySvc.GetRedcapConfig(c.Request.Context(), req.Project, req.Instrument, req.URL, create)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, cfg)
}
