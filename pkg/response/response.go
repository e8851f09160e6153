package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.devconnect/internal/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 常用错误信息
var codeMessages = map[int]string{
	apperrors.CodeSuccess:              "success",
	apperrors.CodeUsernameExists:       "username already exists",
	apperrors.CodeInvalidCredentials:   "invalid username or password",
	apperrors.CodeTokenInvalid:         "token is invalid",
	apperrors.CodeTokenExpired:         "token has expired",
	apperrors.CodeUserNotFound:         "user not found",
	apperrors.CodeInvalidParams:        "invalid parameters",
	apperrors.CodeConversationNotFound: "conversation not found",
	apperrors.CodeNotParticipant:       "not a participant of this conversation",
	apperrors.CodeMessageNotFound:      "message not found",
	apperrors.CodeEventNotFound:        "event not found",
	apperrors.CodePostNotFound:         "post not found",
	apperrors.CodeCommunityNotFound:    "community not found",
	apperrors.CodeServerError:          "internal server error",
	apperrors.CodeDBError:              "database error",
	apperrors.CodeBackendUnavailable:   "backend unavailable, running in demo mode",
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    apperrors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int) {
	message := codeMessages[code]
	if message == "" {
		message = "unknown error"
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ErrorWithMsg 自定义错误消息
func ErrorWithMsg(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ErrorFromAppError 从 AppError 生成错误响应
func ErrorFromAppError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	message := apperrors.GetMessage(err)
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// Unauthorized 未认证
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{
		Code:    apperrors.CodeTokenInvalid,
		Message: codeMessages[apperrors.CodeTokenInvalid],
		Data:    nil,
	})
}

// TooManyRequests 请求过多
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, Response{
		Code:    apperrors.CodeTooManyRequest,
		Message: "too many requests, please try again later",
		Data:    nil,
	})
}
