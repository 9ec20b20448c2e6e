package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
)

// PingFunc 依赖项健康检查
type PingFunc func(ctx context.Context) error

// HealthHandler 健康检查 HTTP 处理器
type HealthHandler struct {
	pingDB       PingFunc
	cacheBackend string
}

// NewHealthHandler 创建 HealthHandler，cacheBackend 为 "redis" / "memory" / "none"
func NewHealthHandler(pingDB PingFunc, cacheBackend string) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, cacheBackend: cacheBackend}
}

// Health 健康检查，数据库不可用时返回 503
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Database: "ok", Cache: h.cacheBackend}

	if h.pingDB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.pingDB(ctx); err != nil {
			_ = c.Error(err)
			resp.Status = "degraded"
			resp.Database = "unavailable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}
