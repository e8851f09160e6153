package chat

import (
	"sync"
	"testing"
)

// 测试同一条消息经两条通路到达时只保留一份
func TestSnapshot_AppendAfterReplaceNoDuplicate(t *testing.T) {
	snap := &Snapshot{}

	// 本地失效通路：全量重查已包含消息 3
	snap.Replace(msgs(1, 2, 3))

	// 远端广播通路：同一条消息再次到达
	got := snap.Append(msgs(3)...)
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got))
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].ID != want {
			t.Errorf("Expected message %d at position %d, got %d", want, i, got[i].ID)
		}
	}
}

// 测试插入事件先到、全量重查后到的顺序
func TestSnapshot_ReplaceSupersedesAppend(t *testing.T) {
	snap := &Snapshot{}
	snap.Replace(msgs(1, 2))
	snap.Append(msgs(3)...)

	// 重查结果不含已删除的消息 2
	got := snap.Replace(msgs(1, 3))
	if len(got) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got))
	}
	for i, want := range []int64{1, 3} {
		if got[i].ID != want {
			t.Errorf("Expected message %d at position %d, got %d", want, i, got[i].ID)
		}
	}
}

// 测试新消息追加到快照末尾
func TestSnapshot_AppendNewMessage(t *testing.T) {
	snap := &Snapshot{}
	snap.Replace(msgs(1, 2))

	got := snap.Append(msgs(9)...)
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got))
	}
	if got[2].ID != 9 {
		t.Errorf("Expected message 9 at tail, got %d", got[2].ID)
	}
}

// 测试并发合并是安全的
func TestSnapshot_ConcurrentAppend(t *testing.T) {
	snap := &Snapshot{}
	snap.Replace(msgs(0))

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			// 同一条消息从两个协程各合并一次
			snap.Append(msgs(id)...)
			snap.Append(msgs(id)...)
		}(int64(i))
	}
	wg.Wait()

	got := snap.Append()
	if len(got) != 21 {
		t.Errorf("Expected 21 unique messages, got %d", len(got))
	}
}
