package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/internal/repository"
	"sudooom.devconnect/internal/service"
	"sudooom.devconnect/pkg/response"
)

// UserHandler 用户处理器
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me 获取当前用户资料
// @Summary      当前用户资料
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.User}
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(c, apperrors.CodeUserNotFound)
			return
		}
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, user)
}

// UpdateMe 更新当前用户资料
// @Summary      更新资料
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.UpdateProfileRequest true "资料"
// @Success      200  {object}  response.Response{data=model.User}
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(c, apperrors.CodeUserNotFound)
			return
		}
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, user)
}

// Get 获取指定用户公开资料
// @Summary      用户公开资料
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户 ID"
// @Success      200  {object}  response.Response{data=model.PublicUser}
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(c, apperrors.CodeUserNotFound)
			return
		}
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, user.Public())
}

// Search 搜索用户
// @Summary      搜索用户
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        keyword query string true "关键词"
// @Param        limit   query int false "数量上限"
// @Success      200  {object}  response.Response{data=[]model.PublicUser}
// @Router       /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := h.userService.Search(c.Request.Context(), keyword, limit)
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, users)
}
