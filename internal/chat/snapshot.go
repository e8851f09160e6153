package chat

import (
	"sync"

	"sudooom.devconnect/internal/model"
)

// Snapshot 一个订阅方持有的会话消息快照
// 全量重查替换快照；插入事件按消息 ID 合并进快照，
// 远端广播与本地失效对同一条消息各触发一次时不会出现重复条目。
type Snapshot struct {
	mu   sync.Mutex
	msgs []model.Message
}

// Replace 用一次全量重查的结果替换快照
func (s *Snapshot) Replace(msgs []model.Message) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = msgs
	return s.msgs
}

// Append 将新消息合并进快照，已存在的消息 ID 忽略
func (s *Snapshot) Append(msgs ...model.Message) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = MergeMessages(s.msgs, msgs)
	return s.msgs
}
