package model

// 在线状态
const (
	PresenceStatusOnline  = "online"
	PresenceStatusOffline = "offline"
)

// UserPresence 用户在线状态
// 每个用户一条逻辑记录，last writer wins
type UserPresence struct {
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
	LastSeen int64  `json:"last_seen"` // Unix 毫秒
}

// TypingUser 正在输入的用户
type TypingUser struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
	StartedAt      int64 `json:"started_at"` // Unix 毫秒
}
