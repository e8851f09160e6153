package feed

import "strconv"

// NATS Subject 常量定义
const (
	// SubjectFeedPrefix 变更通知 Subject 前缀
	// 完整格式: devconnect.feed.{topic}
	SubjectFeedPrefix = "devconnect.feed."

	// TopicPresence 全局共享的在线状态主题
	TopicPresence = "presence"
)

// ConversationTopic 构建会话消息主题
func ConversationTopic(conversationID int64) string {
	return "conversation." + strconv.FormatInt(conversationID, 10)
}

// TypingTopic 构建会话输入状态主题
func TypingTopic(conversationID int64) string {
	return "typing." + strconv.FormatInt(conversationID, 10)
}

// BuildSubject 从主题构建 NATS Subject
func BuildSubject(topic string) string {
	return SubjectFeedPrefix + topic
}
