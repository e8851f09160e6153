package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"sudooom.devconnect/internal/auth"
	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/pkg/response"
)

// JWTAuth JWT 认证中间件
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c.GetHeader("Authorization"))
		if token == "" {
			// WebSocket 握手无法自定义 header，允许从 query 传 token
			token = c.Query("token")
		}
		if token == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			if err == auth.ErrTokenExpired {
				response.Error(c, apperrors.CodeTokenExpired)
			} else {
				response.Error(c, apperrors.CodeTokenInvalid)
			}
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// ExtractToken 从 Authorization header 提取 token
func ExtractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}

// GetUserID 从 context 获取 user_id
func GetUserID(c *gin.Context) int64 {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	return userID.(int64)
}

// GetUsername 从 context 获取 username
func GetUsername(c *gin.Context) string {
	username, exists := c.Get("username")
	if !exists {
		return ""
	}
	return username.(string)
}
