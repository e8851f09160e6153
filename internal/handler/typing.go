package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"sudooom.devconnect/internal/chat"
	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/internal/typing"
	"sudooom.devconnect/pkg/response"
)

// TypingHandler 输入状态处理器
// 三个接口都要求请求者是会话参与者
type TypingHandler struct {
	channel     *typing.Channel
	chatService *chat.Service
}

// NewTypingHandler 创建输入状态处理器
func NewTypingHandler(channel *typing.Channel, chatService *chat.Service) *TypingHandler {
	return &TypingHandler{channel: channel, chatService: chatService}
}

// Start 标记正在输入
// @Summary      开始输入
// @Description  重复调用幂等，记录到期自动消失
// @Tags         输入状态
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "会话 ID"
// @Success      200  {object}  response.Response
// @Router       /conversations/{id}/typing [post]
func (h *TypingHandler) Start(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.EnsureParticipant(c.Request.Context(), conversationID, userID); err != nil {
		respondChatError(c, err)
		return
	}

	if err := h.channel.Start(c.Request.Context(), conversationID, userID); err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, nil)
}

// Stop 清除输入状态
// @Summary      停止输入
// @Tags         输入状态
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "会话 ID"
// @Success      200  {object}  response.Response
// @Router       /conversations/{id}/typing [delete]
func (h *TypingHandler) Stop(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.EnsureParticipant(c.Request.Context(), conversationID, userID); err != nil {
		respondChatError(c, err)
		return
	}

	if err := h.channel.Stop(c.Request.Context(), conversationID, userID); err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, nil)
}

// List 获取会话中正在输入的其他用户
// @Summary      正在输入的用户
// @Description  不包含查询者自己
// @Tags         输入状态
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "会话 ID"
// @Success      200  {object}  response.Response{data=[]model.TypingUser}
// @Router       /conversations/{id}/typing [get]
func (h *TypingHandler) List(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.EnsureParticipant(c.Request.Context(), conversationID, userID); err != nil {
		respondChatError(c, err)
		return
	}

	users, err := h.channel.List(c.Request.Context(), conversationID, userID)
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, users)
}
