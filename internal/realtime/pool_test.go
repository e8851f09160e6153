package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"sudooom.devconnect/internal/feed"
)

// fakeFeed 内存 Feed 实现，用于验证订阅池行为
type fakeFeed struct {
	mu           sync.Mutex
	handlers     map[string]feed.Handler
	subscribed   map[string]int // 每个主题累计 Subscribe 次数
	unsubscribed map[string]int
	failNext     bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		handlers:     make(map[string]feed.Handler),
		subscribed:   make(map[string]int),
		unsubscribed: make(map[string]int),
	}
}

type fakeSub struct {
	f     *fakeFeed
	topic string
}

func (s *fakeSub) Unsubscribe() error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.unsubscribed[s.topic]++
	delete(s.f.handlers, s.topic)
	return nil
}

func (f *fakeFeed) Subscribe(topic string, h feed.Handler) (feed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext {
		f.failNext = false
		return nil, errors.New("subscribe failed")
	}

	f.subscribed[topic]++
	f.handlers[topic] = h
	return &fakeSub{f: f, topic: topic}, nil
}

func (f *fakeFeed) Publish(topic string, ev feed.Event) error {
	f.mu.Lock()
	h := f.handlers[topic]
	f.mu.Unlock()

	if h != nil {
		h(ev)
	}
	return nil
}

func (f *fakeFeed) subscribeCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed[topic]
}

func (f *fakeFeed) unsubscribeCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed[topic]
}

func TestPool_SharedSubscription(t *testing.T) {
	// 两个观察者订阅同一主题，只创建一个底层订阅，
	// 事件到达时两个回调各触发一次
	ff := newFakeFeed()
	pool := NewPool(ff)

	var calledA, calledB int
	hA, err := pool.Acquire("conversation.42", func(ev feed.Event) { calledA++ })
	if err != nil {
		t.Fatalf("Acquire A failed: %v", err)
	}
	hB, err := pool.Acquire("conversation.42", func(ev feed.Event) { calledB++ })
	if err != nil {
		t.Fatalf("Acquire B failed: %v", err)
	}

	if got := ff.subscribeCount("conversation.42"); got != 1 {
		t.Errorf("Expected 1 underlying subscription, got %d", got)
	}

	ff.Publish("conversation.42", feed.NewEvent(feed.ActionInsert, feed.TableMessages, "conversation.42"))

	if calledA != 1 {
		t.Errorf("Expected callback A invoked once, got %d", calledA)
	}
	if calledB != 1 {
		t.Errorf("Expected callback B invoked once, got %d", calledB)
	}

	pool.Release(hA)
	pool.Release(hB)
}

func TestPool_ReleaseTearsDownLastObserver(t *testing.T) {
	ff := newFakeFeed()
	pool := NewPool(ff)

	hA, _ := pool.Acquire("conversation.7", func(ev feed.Event) {})
	hB, _ := pool.Acquire("conversation.7", func(ev feed.Event) {})

	pool.Release(hA)
	if got := ff.unsubscribeCount("conversation.7"); got != 0 {
		t.Errorf("Subscription torn down while an observer remains, unsubscribes=%d", got)
	}
	if got := pool.ObserverCount("conversation.7"); got != 1 {
		t.Errorf("Expected 1 remaining observer, got %d", got)
	}

	pool.Release(hB)
	if got := ff.unsubscribeCount("conversation.7"); got != 1 {
		t.Errorf("Expected exactly 1 unsubscribe after last release, got %d", got)
	}
	if got := pool.TopicCount(); got != 0 {
		t.Errorf("Expected empty registration table, got %d topics", got)
	}
}

func TestPool_ReleaseIdempotent(t *testing.T) {
	ff := newFakeFeed()
	pool := NewPool(ff)

	h, _ := pool.Acquire("conversation.1", func(ev feed.Event) {})
	pool.Release(h)
	pool.Release(h) // 重复释放是空操作
	pool.Release(nil)

	if got := ff.unsubscribeCount("conversation.1"); got != 1 {
		t.Errorf("Expected exactly 1 unsubscribe, got %d", got)
	}
}

func TestPool_ReacquireAfterDrain(t *testing.T) {
	// 释放到零后重新 Acquire 必须建立全新的底层订阅
	ff := newFakeFeed()
	pool := NewPool(ff)

	h, _ := pool.Acquire("presence", func(ev feed.Event) {})
	pool.Release(h)

	var called int
	h2, err := pool.Acquire("presence", func(ev feed.Event) { called++ })
	if err != nil {
		t.Fatalf("Re-acquire failed: %v", err)
	}
	defer pool.Release(h2)

	if got := ff.subscribeCount("presence"); got != 2 {
		t.Errorf("Expected a fresh subscription (2 total), got %d", got)
	}

	ff.Publish("presence", feed.NewEvent(feed.ActionUpdate, feed.TablePresence, "presence"))
	if called != 1 {
		t.Errorf("Expected new observer invoked once, got %d", called)
	}
}

func TestPool_SubscribeFailureLeavesNoEntry(t *testing.T) {
	ff := newFakeFeed()
	ff.failNext = true
	pool := NewPool(ff)

	if _, err := pool.Acquire("conversation.9", func(ev feed.Event) {}); err == nil {
		t.Fatal("Expected Acquire to surface subscribe failure")
	}
	if got := pool.TopicCount(); got != 0 {
		t.Errorf("Failed Acquire left %d registrations", got)
	}

	// 下一次 Acquire 重新尝试并成功
	h, err := pool.Acquire("conversation.9", func(ev feed.Event) {})
	if err != nil {
		t.Fatalf("Retry Acquire failed: %v", err)
	}
	pool.Release(h)
}

func TestPool_ConcurrentAcquire(t *testing.T) {
	// N 个并发 Acquire 同一主题：一个底层订阅，N 个回调都收到事件
	ff := newFakeFeed()
	pool := NewPool(ff)

	const n = 32
	var invoked atomic.Int64
	handles := make([]*Handle, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := pool.Acquire("conversation.99", func(ev feed.Event) {
				invoked.Add(1)
			})
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	if got := ff.subscribeCount("conversation.99"); got != 1 {
		t.Errorf("Expected 1 underlying subscription under concurrency, got %d", got)
	}

	ff.Publish("conversation.99", feed.NewEvent(feed.ActionInsert, feed.TableMessages, "conversation.99"))
	if got := invoked.Load(); got != n {
		t.Errorf("Expected %d callback invocations, got %d", n, got)
	}

	for _, h := range handles {
		pool.Release(h)
	}
	if got := pool.TopicCount(); got != 0 {
		t.Errorf("Expected empty registration table, got %d topics", got)
	}
}

func TestPool_ClosedPoolRejectsAcquire(t *testing.T) {
	ff := newFakeFeed()
	pool := NewPool(ff)

	h, _ := pool.Acquire("conversation.5", func(ev feed.Event) {})
	_ = h
	pool.Close()

	if _, err := pool.Acquire("conversation.5", func(ev feed.Event) {}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
	if got := ff.unsubscribeCount("conversation.5"); got != 1 {
		t.Errorf("Expected Close to tear down subscriptions, got %d unsubscribes", got)
	}
}
