package chat

import (
	"testing"

	"sudooom.devconnect/internal/model"
)

func msgs(ids ...int64) []model.Message {
	out := make([]model.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Message{ID: id})
	}
	return out
}

// 测试按 ID 去重合并
func TestMergeMessages_Dedup(t *testing.T) {
	merged := MergeMessages(msgs(1, 2, 3), msgs(2, 3, 4))

	if len(merged) != 4 {
		t.Fatalf("Expected 4 messages after merge, got %d", len(merged))
	}
	for i, want := range []int64{1, 2, 3, 4} {
		if merged[i].ID != want {
			t.Errorf("Expected message %d at position %d, got %d", want, i, merged[i].ID)
		}
	}
}

// 测试保持已有顺序
func TestMergeMessages_PreservesExistingOrder(t *testing.T) {
	merged := MergeMessages(msgs(3, 1, 2), msgs(1, 4))

	for i, want := range []int64{3, 1, 2, 4} {
		if merged[i].ID != want {
			t.Errorf("Expected message %d at position %d, got %d", want, i, merged[i].ID)
		}
	}
}

// 测试空输入
func TestMergeMessages_Empty(t *testing.T) {
	if got := MergeMessages(nil, nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %d messages", len(got))
	}
	if got := MergeMessages(nil, msgs(1)); len(got) != 1 {
		t.Errorf("Expected 1 message, got %d", len(got))
	}
}

// 测试 incoming 内部重复也被去重
func TestMergeMessages_DuplicateIncoming(t *testing.T) {
	merged := MergeMessages(nil, msgs(5, 5, 6))
	if len(merged) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(merged))
	}
}
