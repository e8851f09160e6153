package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误类型
// 用于统一管理业务错误，包含错误码和错误消息
type AppError struct {
	Code    int    // 错误码
	Message string // 用户可见的错误消息
	Err     error  // 原始错误（可选，用于调试）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新错误
func NewError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装原始错误
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Is 判断是否为指定错误
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode 获取错误码，如果不是 AppError 返回默认错误码
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError // 默认返回服务器错误
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// ============== 错误码定义 ==============

const (
	CodeSuccess = 0

	// 认证相关 10000-10999
	CodeUsernameExists     = 10001
	CodeInvalidCredentials = 10002
	CodeTokenInvalid       = 10003
	CodeTokenExpired       = 10004
	CodeUserDisabled       = 10005

	// 用户相关 11000-11999
	CodeUserNotFound  = 11001
	CodeInvalidParams = 11002

	// 会话/消息相关 12000-12999
	CodeConversationNotFound = 12001
	CodeNotParticipant       = 12002
	CodeMessageNotFound      = 12003
	CodeEmptyParticipants    = 12004

	// 活动相关 13000-13999
	CodeEventNotFound      = 13001
	CodeEventFull          = 13002
	CodeRegistrationClosed = 13003

	// 帖子/社区相关 14000-14999
	CodePostNotFound        = 14001
	CodeCommunityNotFound   = 14002
	CodeCommunityNameExists = 14003

	// 系统错误 50000-50999
	CodeServerError        = 50001
	CodeDBError            = 50002
	CodeTooManyRequest     = 50003
	CodeBackendUnavailable = 50004
)

// ============== 预定义错误 ==============

// 认证相关
var (
	ErrUsernameExists     = NewError(CodeUsernameExists, "username already exists")
	ErrInvalidCredentials = NewError(CodeInvalidCredentials, "invalid username or password")
	ErrTokenInvalid       = NewError(CodeTokenInvalid, "token is invalid")
	ErrTokenExpired       = NewError(CodeTokenExpired, "token has expired")
	ErrUserDisabled       = NewError(CodeUserDisabled, "user is disabled")
)

// 用户相关
var (
	ErrUserNotFound  = NewError(CodeUserNotFound, "user not found")
	ErrInvalidParams = NewError(CodeInvalidParams, "invalid parameters")
)

// 会话/消息相关
var (
	ErrConversationNotFound = NewError(CodeConversationNotFound, "conversation not found")
	ErrNotParticipant       = NewError(CodeNotParticipant, "not a participant of this conversation")
	ErrMessageNotFound      = NewError(CodeMessageNotFound, "message not found")
	ErrEmptyParticipants    = NewError(CodeEmptyParticipants, "conversation requires at least one participant")
)

// 活动相关
var (
	ErrEventNotFound      = NewError(CodeEventNotFound, "event not found")
	ErrEventFull          = NewError(CodeEventFull, "event has reached max attendees")
	ErrRegistrationClosed = NewError(CodeRegistrationClosed, "registration deadline has passed")
)

// 帖子/社区相关
var (
	ErrPostNotFound        = NewError(CodePostNotFound, "post not found")
	ErrCommunityNotFound   = NewError(CodeCommunityNotFound, "community not found")
	ErrCommunityNameExists = NewError(CodeCommunityNameExists, "community name already exists")
)

// 系统相关
var (
	ErrServerError        = NewError(CodeServerError, "internal server error")
	ErrDBError            = NewError(CodeDBError, "database error")
	ErrTooManyRequest     = NewError(CodeTooManyRequest, "too many requests, please try again later")
	ErrBackendUnavailable = NewError(CodeBackendUnavailable, "backend unavailable, running in demo mode")
)
