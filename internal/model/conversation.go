package model

import "time"

// 会话类型
const (
	ConversationTypeDirect = "direct" // 单聊
	ConversationTypeGroup  = "group"  // 群聊
)

// 参与者角色
const (
	ParticipantRoleAdmin  = "admin"
	ParticipantRoleMember = "member"
)

// Conversation 会话
type Conversation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsPrivate bool      `json:"is_private"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Participant 会话参与者
type Participant struct {
	ConversationID int64       `json:"conversation_id"`
	UserID         int64       `json:"user_id"`
	Role           string      `json:"role"`
	JoinedAt       time.Time   `json:"joined_at"`
	User           *PublicUser `json:"user,omitempty"`
}

// ConversationDetail 会话及其参与者与最近一条消息
type ConversationDetail struct {
	Conversation
	Participants []Participant `json:"participants"`
	LastMessage  *Message      `json:"last_message,omitempty"`
}
