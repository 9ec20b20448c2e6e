package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/config"
	"github.com/tomwright01/dashboard/internal/api/handler"
	"github.com/tomwright01/dashboard/internal/api/middleware"
	"github.com/tomwright01/dashboard/pkg/metrics"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时不限流；m 为 nil 时不暴露 /metrics
func Setup(cfg *config.Config, h *handler.Handler, m *metrics.Metrics, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 / 指标 ──
	r.GET("/health", h.Health.Health)
	if m != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window))
	{
		// 搜索栏
		v1.GET("/search", h.Search.Search)

		// 指标模块（过滤条件较多时以表单 POST 提交）
		metricsGroup := v1.Group("/metrics")
		{
			metricsGroup.GET("/types", h.Metric.ListTypes)
			metricsGroup.POST("/types", h.Metric.ListTypes)
			metricsGroup.GET("/options", h.Metric.Options)
			metricsGroup.POST("/options", h.Metric.Options)
			metricsGroup.GET("/values", h.Metric.ListValues)
			metricsGroup.POST("/values", h.Metric.ListValues)
			metricsGroup.GET("/values/export", h.Metric.ExportValues)
			metricsGroup.POST("/values/export", h.Metric.ExportValues)
		}

		// QC 审核模块
		qc := v1.Group("/qc")
		{
			qc.GET("/scans", h.QC.ListScans)
			qc.GET("/scans/export", h.QC.ExportScans)
			qc.GET("/outstanding", h.QC.Outstanding)
		}

		// 研究与参考数据
		studies := v1.Group("/studies")
		{
			studies.GET("", h.Study.ListStudies)
			studies.POST("", h.Study.CreateStudy)
			studies.GET("/:code", h.Study.GetStudy)
			studies.GET("/:code/timepoints", h.Study.ListTimepoints)
		}
		v1.GET("/scantypes", h.Study.ListScantypes)
		v1.POST("/scantypes", h.Study.CreateScantype)
		v1.GET("/redcap", h.Study.GetRedcapConfig)
		v1.POST("/redcap", h.Study.CreateRedcapConfig)

		// 受试者 / 会话 / 扫描
		v1.GET("/sessions/:name/:num", h.Subject.GetSession)
		v1.GET("/timepoints/:name", h.Subject.GetTimepoint)
		v1.GET("/scans", h.Subject.FindScans)

		// 用户模块
		users := v1.Group("/users")
		{
			users.GET("", h.User.ListUsers)
			users.GET("/:id", h.User.GetUser)
			users.GET("/:id/studies", h.User.ListStudies)
			users.GET("/:id/sites", h.User.ListSites)
		}
	}

	return r
}
