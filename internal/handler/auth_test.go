package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.devconnect/internal/auth"
	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/service"
	"sudooom.devconnect/pkg/snowflake"
)

// 测试访客登录：不依赖数据库，签发的 Token 可通过校验
func TestAuthHandler_Guest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService("test-secret", 2*time.Hour, 168*time.Hour)
	idGen, err := snowflake.NewNode(1)
	require.NoError(t, err)

	// 演示模式下 userRepo 为 nil，访客登录不能触碰它
	h := NewAuthHandler(service.NewAuthService(nil, jwtService, idGen))

	r := gin.New()
	r.POST("/auth/guest", h.Guest)

	req, _ := http.NewRequest(http.MethodPost, "/auth/guest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, apperrors.CodeSuccess, resp.Code)

	var login service.LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	assert.NotZero(t, login.UserID)
	assert.Contains(t, login.Username, "guest_")
	assert.NotEmpty(t, login.AccessToken)

	claims, err := jwtService.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.UserID, claims.UserID)
	assert.Equal(t, login.Username, claims.Username)
}

// 测试两次访客登录得到不同身份
func TestAuthHandler_Guest_DistinctIdentities(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService("test-secret", 2*time.Hour, 168*time.Hour)
	idGen, err := snowflake.NewNode(1)
	require.NoError(t, err)

	authService := service.NewAuthService(nil, jwtService, idGen)

	first, err := authService.GuestLogin()
	require.NoError(t, err)
	second, err := authService.GuestLogin()
	require.NoError(t, err)

	assert.NotEqual(t, first.UserID, second.UserID)
}
