package model

import "time"

// 消息类型
const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// Message 消息
// 一条消息始终属于一个存在的会话；编辑不支持，删除为软删除
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	SenderID       int64       `json:"sender_id"`
	Content        string      `json:"content"`
	MessageType    string      `json:"message_type"`
	FileURL        string      `json:"file_url,omitempty"`
	FileName       string      `json:"file_name,omitempty"`
	ReplyToID      *int64      `json:"reply_to_id,omitempty"`
	IsDeleted      bool        `json:"is_deleted"`
	CreatedAt      time.Time   `json:"created_at"`
	Sender         *PublicUser `json:"sender,omitempty"`
	ReplyTo        *Message    `json:"reply_to,omitempty"`
	Reactions      []Reaction  `json:"reactions,omitempty"`
}

// Reaction 消息表情回应
// (message_id, user_id, emoji) 唯一，重复添加幂等
type Reaction struct {
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}
