package handler

import (
	"github.com/gin-gonic/gin"

	"sudooom.devconnect/internal/presence"
	"sudooom.devconnect/pkg/response"
)

// PresenceHandler 在线状态处理器
type PresenceHandler struct {
	tracker *presence.Tracker
}

// NewPresenceHandler 创建在线状态处理器
func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// Online 获取在线用户列表
// @Summary      在线用户列表
// @Description  状态数据缺失或过期的用户视为离线
// @Tags         在线状态
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.UserPresence}
// @Router       /presence/online [get]
func (h *PresenceHandler) Online(c *gin.Context) {
	response.Success(c, h.tracker.OnlineUsers(c.Request.Context()))
}
