package model

import "time"

// 活动类型
const (
	EventTypeMeetup    = "meetup"
	EventTypeHackathon = "hackathon"
	EventTypeWebinar   = "webinar"
)

// 活动状态
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// 报名状态
const (
	RegistrationStatusRegistered = "registered"
	RegistrationStatusAttended   = "attended"
	RegistrationStatusCancelled  = "cancelled"
)

// Event 开发者活动
type Event struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Type                 string     `json:"type"`
	StartAt              time.Time  `json:"start_at"`
	Duration             int        `json:"duration"` // 分钟
	Location             string     `json:"location,omitempty"`
	VirtualLink          string     `json:"virtual_link,omitempty"`
	IsVirtual            bool       `json:"is_virtual"`
	MaxAttendees         int        `json:"max_attendees"` // 0 表示不限
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	OrganizerID          int64      `json:"organizer_id"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	AttendeesCount int  `json:"attendees_count"`
	IsRegistered   bool `json:"is_registered"`
}

// EventRegistration 活动报名
type EventRegistration struct {
	EventID      int64     `json:"event_id"`
	UserID       int64     `json:"user_id"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}
