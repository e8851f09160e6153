package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/repository"
	"sudooom.devconnect/internal/service"
	"sudooom.devconnect/pkg/response"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建新用户账号
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body service.RegisterRequest true "注册信息"
// @Success      200  {object}  response.Response{data=object{user_id=int64,username=string,nickname=string}}
// @Failure      200  {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			response.Error(c, apperrors.CodeUsernameExists)
			return
		}
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"nickname": user.Nickname,
	})
}

// Login 用户登录
// @Summary      用户登录
// @Description  用户登录获取 Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body service.LoginRequest true "登录信息"
// @Success      200  {object}  response.Response{data=service.LoginResponse}
// @Failure      200  {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, apperrors.CodeInvalidCredentials)
			return
		}
		if errors.Is(err, service.ErrUserDisabled) {
			response.Error(c, apperrors.CodeUserDisabled)
			return
		}
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, resp)
}

// Guest 访客登录（仅演示模式）
// @Summary      访客登录
// @Description  演示模式下签发临时访客 Token，可访问降级后的只读接口
// @Tags         认证
// @Produce      json
// @Success      200  {object}  response.Response{data=service.LoginResponse}
// @Router       /auth/guest [post]
func (h *AuthHandler) Guest(c *gin.Context) {
	resp, err := h.authService.GuestLogin()
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, resp)
}

// Refresh 刷新 Token
// @Summary      刷新 Token
// @Description  使用 Refresh Token 换取新的 Token 对
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body object{refresh_token=string} true "刷新信息"
// @Success      200  {object}  response.Response{data=service.LoginResponse}
// @Failure      200  {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrUserDisabled) {
			response.Error(c, apperrors.CodeUserDisabled)
			return
		}
		response.Error(c, apperrors.CodeTokenInvalid)
		return
	}

	response.Success(c, resp)
}
