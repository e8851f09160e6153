package chat

import "sudooom.devconnect/internal/model"

// MergeMessages 合并两组消息，按消息 ID 去重
// 本地失效与远端广播可能对同一变更各触发一次重查，叠加展示时同一条消息只保留一份。
// 已存在的顺序保持不变，新消息按 incoming 顺序追加。
func MergeMessages(existing, incoming []model.Message) []model.Message {
	merged := make([]model.Message, 0, len(existing)+len(incoming))
	seen := make(map[int64]struct{}, len(existing)+len(incoming))

	for _, m := range existing {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range incoming {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	return merged
}
