package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/pkg/response"
)

// codeBodyTooLarge 请求体超限
const codeBodyTooLarge = 41300

// BodyLimit 请求体大小限制中间件，maxBytes<=0 表示不限制。
// 过滤条件较多时前端以表单 POST 提交，限制只作用于请求体。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()

		if c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, err := range c.Errors {
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
				return
			}
		}
	}
}
