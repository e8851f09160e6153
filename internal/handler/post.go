package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/internal/service"
	"sudooom.devconnect/pkg/response"
)

// PostHandler 帖子处理器
type PostHandler struct {
	postService *service.PostService
}

// NewPostHandler 创建帖子处理器
func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// List 获取帖子列表
// @Summary      帖子列表
// @Description  按创建时间倒序，带作者、点赞数和请求者的点赞状态
// @Tags         帖子
// @Produce      json
// @Security     BearerAuth
// @Param        community_id query int false "按社区过滤"
// @Success      200  {object}  response.Response{data=[]model.Post}
// @Router       /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	var communityID *int64
	if raw := c.Query("community_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, apperrors.CodeInvalidParams)
			return
		}
		communityID = &id
	}

	userID := middleware.GetUserID(c)
	posts, err := h.postService.List(c.Request.Context(), userID, communityID)
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, posts)
}

// Get 获取帖子详情
// @Summary      帖子详情
// @Tags         帖子
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Success      200  {object}  response.Response{data=model.Post}
// @Router       /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	post, err := h.postService.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondPostError(c, err)
		return
	}

	response.Success(c, post)
}

// Create 创建帖子
// @Summary      创建帖子
// @Tags         帖子
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.CreatePostRequest true "帖子内容"
// @Success      200  {object}  response.Response{data=model.Post}
// @Router       /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var req service.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	post, err := h.postService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondPostError(c, err)
		return
	}

	response.Success(c, post)
}

// Delete 删除帖子
// @Summary      删除帖子
// @Description  仅作者可删
// @Tags         帖子
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Success      200  {object}  response.Response
// @Router       /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.postService.Delete(c.Request.Context(), id, userID); err != nil {
		respondPostError(c, err)
		return
	}

	response.Success(c, nil)
}

// Like 点赞帖子
// @Summary      点赞帖子
// @Description  重复点赞幂等
// @Tags         帖子
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Success      200  {object}  response.Response
// @Router       /posts/{id}/like [post]
func (h *PostHandler) Like(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.postService.Like(c.Request.Context(), id, userID); err != nil {
		respondPostError(c, err)
		return
	}

	response.Success(c, nil)
}

// Unlike 取消点赞
// @Summary      取消点赞
// @Tags         帖子
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Success      200  {object}  response.Response
// @Router       /posts/{id}/like [delete]
func (h *PostHandler) Unlike(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.postService.Unlike(c.Request.Context(), id, userID); err != nil {
		respondPostError(c, err)
		return
	}

	response.Success(c, nil)
}

// respondPostError 将帖子服务错误映射为统一响应
func respondPostError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrPostNotFound),
		apperrors.Is(err, apperrors.ErrCommunityNotFound),
		apperrors.Is(err, apperrors.ErrCommunityNameExists):
		response.ErrorFromAppError(c, err)
	default:
		response.Error(c, apperrors.CodeServerError)
	}
}
