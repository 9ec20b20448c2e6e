package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/filter"
	"github.com/tomwright01/dashboard/pkg/response"
)

// filterAliases 前端使用的参数名 → 过滤逻辑键
var filterAliases = map[string]string{
	"study":         filter.KeyStudies,
	"study_id":      filter.KeyStudies,
	"site":          filter.KeySites,
	"site_id":       filter.KeySites,
	"session":       filter.KeySessions,
	"session_id":    filter.KeySessions,
	"scan":          filter.KeyScans,
	"scan_id":       filter.KeyScans,
	"scantype":      filter.KeyScantypes,
	"scantype_id":   filter.KeyScantypes,
	"metrictype":    filter.KeyMetrictypes,
	"metrictype_id": filter.KeyMetrictypes,
	"is_phantom":    filter.KeyIsPhantom,
}

// controlParams 不属于过滤条件的参数
var controlParams = map[string]bool{
	"byname": true,
}

// filterValues 合并 query 与表单中的过滤条件。
// 参数名大小写不敏感，兼容 "key[]" 形式；未知键原样保留，由 Filter Composer 丢弃并记录。
func filterValues(c *gin.Context) filter.Values {
	values := filter.Values{}
	collect := func(src map[string][]string) {
		for k, v := range src {
			key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(k)), "[]")
			if controlParams[key] {
				continue
			}
			if alias, ok := filterAliases[key]; ok {
				key = alias
			}
			values[key] = append(values[key], v...)
		}
	}

	collect(c.Request.URL.Query())
	if c.Request.Method == http.MethodPost {
		if err := c.Request.ParseForm(); err == nil {
			collect(c.Request.PostForm)
		}
	}
	return values
}

// parseUintParam 解析路径中的正整数参数，失败时写入 400 响应
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		response.BadRequest(c, response.CodeValidation, name+" 必须为正整数")
		return 0, false
	}
	return uint(n), true
}
