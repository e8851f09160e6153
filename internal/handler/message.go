package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"sudooom.devconnect/internal/chat"
	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/pkg/response"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	chatService *chat.Service
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(chatService *chat.Service) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

// Delete 删除消息（软删除，仅发送者可删）
// @Summary      删除消息
// @Tags         消息
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "消息 ID"
// @Success      200  {object}  response.Response
// @Router       /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		respondChatError(c, err)
		return
	}

	response.Success(c, nil)
}

// AddReaction 添加表情回应
// @Summary      添加表情回应
// @Description  同一用户对同一消息同一表情重复添加幂等
// @Tags         消息
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "消息 ID"
// @Param        request body object{emoji=string} true "表情"
// @Success      200  {object}  response.Response
// @Router       /messages/{id}/reactions [post]
func (h *MessageHandler) AddReaction(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	var req struct {
		Emoji string `json:"emoji" binding:"required,max=16"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.AddReaction(c.Request.Context(), messageID, userID, req.Emoji); err != nil {
		respondChatError(c, err)
		return
	}

	response.Success(c, nil)
}

// RemoveReaction 移除表情回应
// @Summary      移除表情回应
// @Tags         消息
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "消息 ID"
// @Param        emoji query string true "表情"
// @Success      200  {object}  response.Response
// @Router       /messages/{id}/reactions [delete]
func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	emoji := c.Query("emoji")
	if emoji == "" {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.chatService.RemoveReaction(c.Request.Context(), messageID, userID, emoji); err != nil {
		respondChatError(c, err)
		return
	}

	response.Success(c, nil)
}
