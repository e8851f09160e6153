package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/internal/service"
	"sudooom.devconnect/pkg/response"
)

// EventHandler 活动处理器
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler 创建活动处理器
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List 获取已发布活动列表
// @Summary      活动列表
// @Tags         活动
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Event}
// @Router       /events [get]
func (h *EventHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	events, err := h.eventService.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, events)
}

// Get 获取活动详情
// @Summary      活动详情
// @Tags         活动
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "活动 ID"
// @Success      200  {object}  response.Response{data=model.Event}
// @Router       /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	ev, err := h.eventService.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondEventError(c, err)
		return
	}

	response.Success(c, ev)
}

// Create 创建活动
// @Summary      创建活动
// @Tags         活动
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.CreateEventRequest true "活动信息"
// @Success      200  {object}  response.Response{data=model.Event}
// @Router       /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	ev, err := h.eventService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, apperrors.CodeServerError)
		return
	}

	response.Success(c, ev)
}

// Register 报名活动
// @Summary      报名活动
// @Description  截止后或满员时报名失败，重复报名幂等
// @Tags         活动
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "活动 ID"
// @Success      200  {object}  response.Response
// @Router       /events/{id}/register [post]
func (h *EventHandler) Register(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.eventService.Register(c.Request.Context(), id, userID); err != nil {
		respondEventError(c, err)
		return
	}

	response.Success(c, nil)
}

// Unregister 取消报名
// @Summary      取消报名
// @Tags         活动
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "活动 ID"
// @Success      200  {object}  response.Response
// @Router       /events/{id}/register [delete]
func (h *EventHandler) Unregister(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperrors.CodeInvalidParams)
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.eventService.Unregister(c.Request.Context(), id, userID); err != nil {
		respondEventError(c, err)
		return
	}

	response.Success(c, nil)
}

// respondEventError 将活动服务错误映射为统一响应
func respondEventError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrEventNotFound),
		apperrors.Is(err, apperrors.ErrEventFull),
		apperrors.Is(err, apperrors.ErrRegistrationClosed):
		response.ErrorFromAppError(c, err)
	default:
		response.Error(c, apperrors.CodeServerError)
	}
}
