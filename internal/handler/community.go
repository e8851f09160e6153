package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/internal/service"
	"sudooom.devconnect/pkg/response"
)

// CommunityHandler 社区处理器
type CommunityHandler struct {
	postService *service.PostService
}

// NewCommunityHandler 创建社区处理器
func NewCommunityHandler(postService *service.PostService) *CommunityHandler {
	return &CommunityHandler{postService: postService}
}

// List 获取社区列表
// @Summary      社区列表
// @Description  按创建时间倒序，带帖子数
// @Tags         社区
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Community}
// @Router       /communities [get]
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.postService.ListCommunities(c.Request.Context())
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, communities)
}

// Create 创建社区
// @Summary      创建社区
// @Description  名称唯一
// @Tags         社区
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.CreateCommunityRequest true "社区信息"
// @Success      200  {object}  response.Response{data=model.Community}
// @Router       /communities [post]
func (h *CommunityHandler) Create(c *gin.Context) {
	var req service.CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	community, err := h.postService.CreateCommunity(c.Request.Context(), userID, &req)
	if err != nil {
		respondPostError(c, err)
		return
	}

	response.Success(c, community)
}
