package realtime

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"sudooom.devconnect/internal/feed"
	"sudooom.devconnect/internal/metrics"
)

var ErrPoolClosed = errors.New("subscription pool closed")

// Observer 主题观察者回调
type Observer func(ev feed.Event)

// Handle 观察者句柄，Release 时使用
type Handle struct {
	topic string
	id    uuid.UUID
}

// Topic 返回句柄对应的主题
func (h *Handle) Topic() string {
	return h.topic
}

// entry 单个主题的注册项：一个底层订阅 + 观察者集合
type entry struct {
	sub       feed.Subscription
	observers map[uuid.UUID]Observer
}

// Pool 订阅池
// 保证每个主题最多只有一个底层 Feed 订阅，无论有多少观察者。
// 注册表的 check-then-create 与底层订阅的建立在同一次持锁中完成，
// 并发 Acquire 不会对同一主题创建重复订阅。
type Pool struct {
	mu      sync.Mutex
	entries map[string]*entry
	feed    feed.Feed
	logger  *slog.Logger
	closed  bool
}

// NewPool 创建订阅池
func NewPool(f feed.Feed) *Pool {
	return &Pool{
		entries: make(map[string]*entry),
		feed:    f,
		logger:  slog.Default(),
	}
}

// Acquire 注册对主题的兴趣
// 主题尚无注册项时建立底层订阅；建立失败时不留下任何注册项，
// 下一次 Acquire 会重新尝试。
func (p *Pool) Acquire(topic string, observer Observer) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	e, ok := p.entries[topic]
	if !ok {
		sub, err := p.feed.Subscribe(topic, func(ev feed.Event) {
			p.dispatch(topic, ev)
		})
		if err != nil {
			p.logger.Error("Failed to create feed subscription", "topic", topic, "error", err)
			return nil, err
		}

		e = &entry{
			sub:       sub,
			observers: make(map[uuid.UUID]Observer),
		}
		p.entries[topic] = e
		metrics.ActiveSubscriptions.Inc()
		p.logger.Debug("Underlying subscription created", "topic", topic)
	}

	h := &Handle{topic: topic, id: uuid.New()}
	e.observers[h.id] = observer
	metrics.ActiveObservers.Inc()

	return h, nil
}

// Release 注销观察者
// 主题的观察者集合为空时拆除底层订阅并移除注册项。
// 拆除失败只记录日志，本地登记已经移除，不做重试。
func (p *Pool) Release(h *Handle) {
	if h == nil {
		return
	}

	p.mu.Lock()
	e, ok := p.entries[h.topic]
	if !ok {
		p.mu.Unlock()
		return
	}

	if _, registered := e.observers[h.id]; !registered {
		p.mu.Unlock()
		return
	}

	delete(e.observers, h.id)
	metrics.ActiveObservers.Dec()

	var sub feed.Subscription
	if len(e.observers) == 0 {
		sub = e.sub
		delete(p.entries, h.topic)
		metrics.ActiveSubscriptions.Dec()
	}
	p.mu.Unlock()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			p.logger.Warn("Failed to tear down feed subscription", "topic", h.topic, "error", err)
		}
		p.logger.Debug("Underlying subscription destroyed", "topic", h.topic)
	}
}

// dispatch 将事件分发给主题下的所有观察者
// 回调在锁外执行，顺序不作保证。
func (p *Pool) dispatch(topic string, ev feed.Event) {
	p.mu.Lock()
	e, ok := p.entries[topic]
	if !ok {
		p.mu.Unlock()
		return
	}

	observers := make([]Observer, 0, len(e.observers))
	for _, o := range e.observers {
		observers = append(observers, o)
	}
	p.mu.Unlock()

	metrics.FeedEventsTotal.WithLabelValues(ev.Table).Inc()

	for _, o := range observers {
		metrics.FanoutTotal.Inc()
		o(ev)
	}
}

// ObserverCount 返回主题当前的观察者数量（用于监控与测试）
func (p *Pool) ObserverCount(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[topic]
	if !ok {
		return 0
	}
	return len(e.observers)
}

// TopicCount 返回当前注册的主题数量
func (p *Pool) TopicCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.entries)
}

// Close 关闭订阅池，拆除所有底层订阅
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true

	subs := make(map[string]feed.Subscription, len(p.entries))
	for topic, e := range p.entries {
		subs[topic] = e.sub
	}
	p.entries = make(map[string]*entry)
	p.mu.Unlock()

	for topic, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			p.logger.Warn("Failed to tear down feed subscription", "topic", topic, "error", err)
		}
	}
	metrics.ActiveSubscriptions.Set(0)

	p.logger.Info("Subscription pool closed", "topics", len(subs))
}
