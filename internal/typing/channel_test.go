package typing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.devconnect/internal/feed"
)

// 注意：这些测试需要一个运行中的 Redis 实例
// 如果没有 Redis，测试将被跳过

func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 使用测试专用数据库
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("跳过测试：无法连接 Redis: %v", err)
	}

	client.FlushDB(ctx)

	return client
}

// recordingFeed 记录发布事件的 Feed 桩
type recordingFeed struct {
	mu     sync.Mutex
	events []feed.Event
}

type noopSub struct{}

func (noopSub) Unsubscribe() error { return nil }

func (f *recordingFeed) Subscribe(topic string, h feed.Handler) (feed.Subscription, error) {
	return noopSub{}, nil
}

func (f *recordingFeed) Publish(topic string, ev feed.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *recordingFeed) published() []feed.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]feed.Event(nil), f.events...)
}

func TestChannel_StartStop(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	rf := &recordingFeed{}
	ch := NewChannel(client, rf, 10*time.Second)
	ctx := context.Background()

	convID := int64(42)
	userID := int64(1002)

	if err := ch.Start(ctx, convID, userID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// 另一个用户能看到
	typing, err := ch.List(ctx, convID, 1001)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(typing) != 1 || typing[0].UserID != userID {
		t.Fatalf("Expected user %d typing, got %+v", userID, typing)
	}

	if err := ch.Stop(ctx, convID, userID); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Stop 后记录消失
	typing, err = ch.List(ctx, convID, 1001)
	if err != nil {
		t.Fatalf("List after Stop failed: %v", err)
	}
	if len(typing) != 0 {
		t.Errorf("Expected no typing users after Stop, got %+v", typing)
	}

	// 变更事件已广播
	events := rf.published()
	if len(events) != 2 {
		t.Fatalf("Expected 2 published events, got %d", len(events))
	}
	if events[0].Action != feed.ActionInsert || events[1].Action != feed.ActionDelete {
		t.Errorf("Unexpected event actions: %s, %s", events[0].Action, events[1].Action)
	}
}

func TestChannel_SelfExclusion(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ch := NewChannel(client, &recordingFeed{}, 10*time.Second)
	ctx := context.Background()

	convID := int64(42)
	userID := int64(1002)

	if err := ch.Start(ctx, convID, userID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// 用户自己的记录不出现在自己的列表里
	typing, err := ch.List(ctx, convID, userID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(typing) != 0 {
		t.Errorf("User's own typing indicator included in their list: %+v", typing)
	}
}

func TestChannel_StartIdempotent(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ch := NewChannel(client, &recordingFeed{}, 10*time.Second)
	ctx := context.Background()

	convID := int64(42)
	userID := int64(1002)

	for i := 0; i < 3; i++ {
		if err := ch.Start(ctx, convID, userID); err != nil {
			t.Fatalf("Start %d failed: %v", i, err)
		}
	}

	typing, err := ch.List(ctx, convID, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(typing) != 1 {
		t.Errorf("Expected a single typing record after repeated Start, got %d", len(typing))
	}
}

func TestChannel_Expiry(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	// 极短过期时间验证自过期行为
	ch := NewChannel(client, &recordingFeed{}, 50*time.Millisecond)
	ctx := context.Background()

	convID := int64(42)
	if err := ch.Start(ctx, convID, 1002); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	typing, err := ch.List(ctx, convID, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(typing) != 0 {
		t.Errorf("Expected stale typing record expired, got %+v", typing)
	}
}
