package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/pkg/response"
)

// RequireBackend 数据库未配置（演示模式）时直接返回后端不可用
// 只挂在必须访问数据库的路由组上，可降级的接口不经过这里
func RequireBackend(available bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !available {
			response.Error(c, apperrors.CodeBackendUnavailable)
			c.Abort()
			return
		}
		c.Next()
	}
}
