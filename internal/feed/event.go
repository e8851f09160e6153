package feed

import "time"

// 变更类型
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// 变更来源表
const (
	TableConversations = "conversations"
	TableMessages      = "messages"
	TableReactions     = "message_reactions"
	TablePresence      = "user_presence"
	TableTyping        = "typing_indicators"
)

// Event 行级变更通知
// 只携带失效提示，不携带行数据；观察者收到后自行重查。
// 投递为 best-effort，允许重复，重查是幂等的。
type Event struct {
	Action  string `json:"action"`
	Table   string `json:"table"`
	Topic   string `json:"topic"`
	RowID   int64  `json:"row_id,omitempty"`
	ActorID int64  `json:"actor_id,omitempty"`
	At      int64  `json:"at"` // Unix 毫秒
}

// NewEvent 创建变更事件
func NewEvent(action, table, topic string) Event {
	return Event{
		Action: action,
		Table:  table,
		Topic:  topic,
		At:     time.Now().UnixMilli(),
	}
}

// WithRow 附加行 ID
func (e Event) WithRow(rowID int64) Event {
	e.RowID = rowID
	return e
}

// WithActor 附加操作者 ID
func (e Event) WithActor(actorID int64) Event {
	e.ActorID = actorID
	return e
}

// Handler 变更事件处理回调
type Handler func(ev Event)

// Subscription 底层订阅句柄
type Subscription interface {
	Unsubscribe() error
}

// Feed 变更通知通道
// Subscribe 返回的 Subscription 由调用方负责释放；
// Publish 与 Subscribe 之间没有事务性关联。
type Feed interface {
	Subscribe(topic string, h Handler) (Subscription, error)
	Publish(topic string, ev Event) error
}
