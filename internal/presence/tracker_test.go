package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.devconnect/internal/config"
	"sudooom.devconnect/internal/feed"
	"sudooom.devconnect/internal/model"
	"sudooom.devconnect/internal/realtime"
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

// loopbackFeed 进程内 Feed 实现：Publish 直接回调本地订阅者
type loopbackFeed struct {
	mu       sync.Mutex
	handlers map[string][]feed.Handler
}

func newLoopbackFeed() *loopbackFeed {
	return &loopbackFeed{handlers: make(map[string][]feed.Handler)}
}

type loopbackSub struct{}

func (loopbackSub) Unsubscribe() error { return nil }

func (f *loopbackFeed) Subscribe(topic string, h feed.Handler) (feed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = append(f.handlers[topic], h)
	return loopbackSub{}, nil
}

func (f *loopbackFeed) Publish(topic string, ev feed.Event) error {
	f.mu.Lock()
	handlers := append([]feed.Handler(nil), f.handlers[topic]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func testPresenceConfig() config.PresenceConfig {
	return config.PresenceConfig{
		HeartbeatInterval: time.Minute,
		StaleAfter:        5 * time.Minute,
		SweepInterval:     time.Minute,
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	userID := int64(1001)

	if err := store.Upsert(ctx, userID, model.PresenceStatusOnline); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	p, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p == nil {
		t.Fatal("Expected presence record, got nil")
	}
	if p.Status != model.PresenceStatusOnline {
		t.Errorf("Expected status online, got %s", p.Status)
	}
	if p.LastSeen == 0 {
		t.Error("Expected non-zero last_seen")
	}

	// last writer wins
	if err := store.Upsert(ctx, userID, model.PresenceStatusOffline); err != nil {
		t.Fatalf("Second Upsert failed: %v", err)
	}
	p, _ = store.Get(ctx, userID)
	if p.Status != model.PresenceStatusOffline {
		t.Errorf("Expected status offline after overwrite, got %s", p.Status)
	}
}

func TestStore_ListOnline(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	store.Upsert(ctx, 1001, model.PresenceStatusOnline)
	store.Upsert(ctx, 1002, model.PresenceStatusOnline)
	store.Upsert(ctx, 1003, model.PresenceStatusOffline)

	online, err := store.ListOnline(ctx, 5*time.Minute)
	if err != nil {
		t.Fatalf("ListOnline failed: %v", err)
	}

	if len(online) != 2 {
		t.Errorf("Expected 2 online users, got %d", len(online))
	}
	for _, p := range online {
		if p.UserID == 1003 {
			t.Error("Offline user included in online list")
		}
	}
}

func TestStore_SweepStale(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	store.Upsert(ctx, 1001, model.PresenceStatusOnline)

	// staleAfter 为 0 时所有记录都视为过期
	swept, err := store.SweepStale(ctx, 0)
	if err != nil {
		t.Fatalf("SweepStale failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("Expected 1 swept record, got %d", swept)
	}

	p, _ := store.Get(ctx, 1001)
	if p.Status != model.PresenceStatusOffline {
		t.Errorf("Expected swept user offline, got %s", p.Status)
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	store := NewStore(client)
	lf := newLoopbackFeed()
	pool := realtime.NewPool(lf)
	tracker := NewTracker(store, pool, lf, testPresenceConfig())

	ctx := context.Background()
	userID := int64(2001)

	session, err := tracker.Track(ctx, userID, func(online []model.UserPresence) {})
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	// 挂载后用户在线
	p, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p == nil || p.Status != model.PresenceStatusOnline {
		t.Fatalf("Expected user online after Track, got %+v", p)
	}
	if got := pool.TopicCount(); got != 1 {
		t.Errorf("Expected 1 shared subscription, got %d topics", got)
	}

	session.Stop()
	session.Stop() // Stop 幂等

	// 卸载后用户离线，共享订阅已释放
	p, _ = store.Get(ctx, userID)
	if p.Status != model.PresenceStatusOffline {
		t.Errorf("Expected user offline after Stop, got %s", p.Status)
	}
	if got := pool.TopicCount(); got != 0 {
		t.Errorf("Expected shared subscription released, got %d topics", got)
	}
}

func TestTracker_SharedSubscription(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	store := NewStore(client)
	lf := newLoopbackFeed()
	pool := realtime.NewPool(lf)
	tracker := NewTracker(store, pool, lf, testPresenceConfig())

	ctx := context.Background()

	s1, err := tracker.Track(ctx, 2001, func(online []model.UserPresence) {})
	if err != nil {
		t.Fatalf("Track 1 failed: %v", err)
	}
	s2, err := tracker.Track(ctx, 2002, func(online []model.UserPresence) {})
	if err != nil {
		t.Fatalf("Track 2 failed: %v", err)
	}

	// 两个会话共享一个池内订阅
	if got := pool.TopicCount(); got != 1 {
		t.Errorf("Expected a single shared subscription, got %d", got)
	}

	s1.Stop()
	if got := pool.TopicCount(); got != 1 {
		t.Errorf("Subscription released while a session remains, topics=%d", got)
	}

	s2.Stop()
	if got := pool.TopicCount(); got != 0 {
		t.Errorf("Expected subscription released after last session, topics=%d", got)
	}
}

func TestTracker_OnlineUsersEmptyOnMissingData(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	store := NewStore(client)
	lf := newLoopbackFeed()
	pool := realtime.NewPool(lf)
	tracker := NewTracker(store, pool, lf, testPresenceConfig())

	online := tracker.OnlineUsers(context.Background())
	if online == nil {
		t.Error("Expected empty slice, got nil")
	}
	if len(online) != 0 {
		t.Errorf("Expected no online users, got %d", len(online))
	}
}
