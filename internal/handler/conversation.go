package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"sudooom.devconnect/internal/chat"
	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/pkg/response"
)

// ConversationHandler 会话处理器
type ConversationHandler struct {
	chatService *chat.Service
}

// NewConversationHandler 创建会话处理器
func NewConversationHandler(chatService *chat.Service) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

// List 获取当前用户的会话列表
// @Summary      会话列表
// @Description  带参与者和最近一条消息，按最近活动倒序
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ConversationDetail}
// @Router       /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conversations, err := h.chatService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, conversations)
}

// Create 创建会话
// @Summary      创建会话
// @Description  创建者为管理员，其余参与者为成员
// @Tags         会话
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body chat.CreateConversationParams true "会话信息"
// @Success      200  {object}  response.Response{data=model.Conversation}
// @Router       /conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var params chat.CreateConversationParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	conv, err := h.chatService.CreateConversation(c.Request.Context(), userID, params)
	if err != nil {
		respondChatError(c, err)
		return
	}

	response.Success(c, conv)
}

// ListMessages 获取会话消息
// @Summary      会话消息列表
// @Description  未删除消息按时间升序，带发送者、回复引用和表情回应
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "会话 ID"
// @Success      200  {object}  response.Response{data=[]model.Message}
// @Router       /conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	messages, err := h.chatService.ListMessages(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	response.Success(c, messages)
}

// SendMessage 发送消息
// @Summary      发送消息
// @Tags         会话
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "会话 ID"
// @Param        request body chat.SendMessageParams true "消息内容"
// @Success      200  {object}  response.Response{data=model.Message}
// @Router       /conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	var params chat.SendMessageParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	msg, err := h.chatService.SendMessage(c.Request.Context(), conversationID, userID, params)
	if err != nil {
		respondChatError(c, err)
		return
	}

	response.Success(c, msg)
}

// respondChatError 将聊天服务错误映射为统一响应
func respondChatError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotParticipant),
		apperrors.Is(err, apperrors.ErrConversationNotFound),
		apperrors.Is(err, apperrors.ErrMessageNotFound),
		apperrors.Is(err, apperrors.ErrEmptyParticipants),
		apperrors.Is(err, apperrors.ErrBackendUnavailable):
		response.ErrorFromAppError(c, err)
	default:
		response.Error(c, apperrors.CodeServerError)
	}
}
