package service

import (
	"context"
	"errors"
	"time"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/model"
	"sudooom.devconnect/internal/repository"
	"sudooom.devconnect/pkg/snowflake"
)

// CreateEventRequest 创建活动请求
type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required,min=1,max=200"`
	Description          string     `json:"description"`
	Type                 string     `json:"type" binding:"required,oneof=meetup hackathon webinar"`
	StartAt              time.Time  `json:"start_at" binding:"required"`
	Duration             int        `json:"duration" binding:"required,min=1"`
	Location             string     `json:"location"`
	VirtualLink          string     `json:"virtual_link"`
	IsVirtual            bool       `json:"is_virtual"`
	MaxAttendees         int        `json:"max_attendees" binding:"omitempty,min=1"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
}

// EventService 活动服务
type EventService struct {
	eventRepo *repository.EventRepository
	idGen     *snowflake.Node
}

// NewEventService 创建活动服务
func NewEventService(eventRepo *repository.EventRepository, idGen *snowflake.Node) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		idGen:     idGen,
	}
}

// Create 创建活动，直接发布
func (s *EventService) Create(ctx context.Context, organizerID int64, req *CreateEventRequest) (*model.Event, error) {
	ev := &model.Event{
		ID:                   s.idGen.Generate().Int64(),
		Title:                req.Title,
		Description:          req.Description,
		Type:                 req.Type,
		StartAt:              req.StartAt,
		Duration:             req.Duration,
		Location:             req.Location,
		VirtualLink:          req.VirtualLink,
		IsVirtual:            req.IsVirtual,
		MaxAttendees:         req.MaxAttendees,
		RegistrationDeadline: req.RegistrationDeadline,
		OrganizerID:          organizerID,
		Status:               model.EventStatusPublished,
	}

	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Get 获取活动详情
func (s *EventService) Get(ctx context.Context, eventID, viewerID int64) (*model.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, eventID, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// List 获取已发布活动列表
func (s *EventService) List(ctx context.Context, viewerID int64) ([]model.Event, error) {
	return s.eventRepo.ListPublished(ctx, viewerID)
}

// Register 报名活动
// 截止时间已过或名额已满时报名失败，重复报名幂等
func (s *EventService) Register(ctx context.Context, eventID, userID int64) error {
	ev, err := s.eventRepo.GetByID(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return apperrors.ErrEventNotFound
		}
		return err
	}

	if ev.IsRegistered {
		return nil
	}

	if ev.RegistrationDeadline != nil && time.Now().After(*ev.RegistrationDeadline) {
		return apperrors.ErrRegistrationClosed
	}

	if ev.MaxAttendees > 0 {
		count, err := s.eventRepo.CountRegistered(ctx, eventID)
		if err != nil {
			return err
		}
		if count >= ev.MaxAttendees {
			return apperrors.ErrEventFull
		}
	}

	return s.eventRepo.Register(ctx, eventID, userID)
}

// Unregister 取消报名，幂等
func (s *EventService) Unregister(ctx context.Context, eventID, userID int64) error {
	_, err := s.eventRepo.GetByID(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return apperrors.ErrEventNotFound
		}
		return err
	}
	return s.eventRepo.Unregister(ctx, eventID, userID)
}
