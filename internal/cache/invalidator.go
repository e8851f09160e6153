package cache

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// 失效键构建函数
// 约定: conversations:{userId} / messages:{conversationId}

// ConversationsKey 用户会话列表的缓存键
func ConversationsKey(userID int64) string {
	return "conversations:" + strconv.FormatInt(userID, 10)
}

// MessagesKey 会话消息列表的缓存键
func MessagesKey(conversationID int64) string {
	return "messages:" + strconv.FormatInt(conversationID, 10)
}

// Listener 失效监听回调
type Listener func()

// Invalidator 查询缓存失效通知器
// 本地变更（如发送消息成功）通过 Invalidate 立刻通知监听者重查，
// 不等待远端变更事件回传；与 Feed 事件的重复触发由幂等重查吸收。
type Invalidator struct {
	mu        sync.Mutex
	listeners map[string]map[uuid.UUID]Listener
	logger    *slog.Logger
}

// NewInvalidator 创建失效通知器
func NewInvalidator() *Invalidator {
	return &Invalidator{
		listeners: make(map[string]map[uuid.UUID]Listener),
		logger:    slog.Default(),
	}
}

// Register 注册监听者，返回注销函数
// 注销函数可重复调用，幂等
func (i *Invalidator) Register(key string, l Listener) func() {
	i.mu.Lock()
	defer i.mu.Unlock()

	set, ok := i.listeners[key]
	if !ok {
		set = make(map[uuid.UUID]Listener)
		i.listeners[key] = set
	}

	id := uuid.New()
	set[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			defer i.mu.Unlock()
			if set, ok := i.listeners[key]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(i.listeners, key)
				}
			}
		})
	}
}

// Invalidate 通知某个键的所有监听者
// 回调在锁外执行，顺序不作保证
func (i *Invalidator) Invalidate(key string) {
	i.mu.Lock()
	set := i.listeners[key]
	copied := make([]Listener, 0, len(set))
	for _, l := range set {
		copied = append(copied, l)
	}
	i.mu.Unlock()

	for _, l := range copied {
		l()
	}
}

// ListenerCount 返回某个键的监听者数量（用于测试）
func (i *Invalidator) ListenerCount(key string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.listeners[key])
}
