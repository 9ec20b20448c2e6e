package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
	"github.com/tomwright01/dashboard/pkg/response"
)

// handleServiceError 统一的业务错误翻译：
//   - ValidationError → 400
//   - ErrNotFound 及其包装 → 404
//   - 其余 → 500（详细错误只写入日志）
func handleServiceError(c *gin.Context, err error) {
	switch {
	case pkgerrors.IsValidation(err):
		response.ValidationFailed(c, err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, response.CodeNotFound, notFoundMessage(err))
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// notFoundMessage 取包装链最外层的描述，如 "研究不存在"
func notFoundMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ":"); i > 0 {
		return msg[:i]
	}
	return msg
}
