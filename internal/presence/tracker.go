package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sudooom.devconnect/internal/config"
	"sudooom.devconnect/internal/feed"
	"sudooom.devconnect/internal/metrics"
	"sudooom.devconnect/internal/model"
	"sudooom.devconnect/internal/realtime"
)

// OnlineObserver 在线用户列表更新回调
type OnlineObserver func(online []model.UserPresence)

// Tracker 在线状态跟踪器
// 所有会话共享一个 presence 主题的池内订阅；每个会话有自己的心跳。
// 心跳与拉取失败只记录日志，从不向上层抛出；拉取失败时回调收到空列表。
type Tracker struct {
	store  *Store
	pool   *realtime.Pool
	feed   feed.Feed
	cfg    config.PresenceConfig
	logger *slog.Logger

	mu        sync.Mutex
	observers map[uuid.UUID]OnlineObserver
	handle    *realtime.Handle
}

// NewTracker 创建在线状态跟踪器
func NewTracker(store *Store, pool *realtime.Pool, f feed.Feed, cfg config.PresenceConfig) *Tracker {
	return &Tracker{
		store:     store,
		pool:      pool,
		feed:      f,
		cfg:       cfg,
		logger:    slog.Default(),
		observers: make(map[uuid.UUID]OnlineObserver),
	}
}

// Session 一次在线跟踪会话
// Stop 幂等，必须在会话结束的所有路径上调用
type Session struct {
	stopOnce sync.Once
	stop     func()
}

// Stop 结束会话：停止心跳，写离线状态，释放共享订阅名额
func (s *Session) Stop() {
	s.stopOnce.Do(s.stop)
}

// Track 开始跟踪一个用户的在线状态
// 立即写入 online 记录并启动心跳；onUpdate 在在线列表变化时被调用。
func (t *Tracker) Track(ctx context.Context, userID int64, onUpdate OnlineObserver) (*Session, error) {
	// 首次上报在线状态；失败不阻止会话建立
	if err := t.upsert(ctx, userID, model.PresenceStatusOnline); err != nil {
		t.logger.Warn("Failed to update presence", "userId", userID, "error", err)
	}

	t.mu.Lock()
	id := uuid.New()
	t.observers[id] = onUpdate

	// 第一个会话建立共享订阅
	if t.handle == nil {
		h, err := t.pool.Acquire(feed.TopicPresence, func(ev feed.Event) {
			t.refetch(context.Background())
		})
		if err != nil {
			delete(t.observers, id)
			t.mu.Unlock()
			return nil, err
		}
		t.handle = h
	}
	t.mu.Unlock()

	// 推送一次当前在线列表
	go t.refetch(ctx)

	// 会话心跳
	hbCtx, cancel := context.WithCancel(context.Background())
	go t.heartbeatLoop(hbCtx, userID)

	session := &Session{}
	session.stop = func() {
		cancel()

		// 先写离线再释放共享订阅名额
		offCtx, offCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer offCancel()
		if err := t.upsert(offCtx, userID, model.PresenceStatusOffline); err != nil {
			t.logger.Warn("Failed to mark user offline", "userId", userID, "error", err)
		}

		t.mu.Lock()
		delete(t.observers, id)
		var handle *realtime.Handle
		if len(t.observers) == 0 && t.handle != nil {
			handle = t.handle
			t.handle = nil
		}
		t.mu.Unlock()

		if handle != nil {
			t.pool.Release(handle)
		}
	}

	return session, nil
}

// heartbeatLoop 周期性刷新在线记录
func (t *Tracker) heartbeatLoop(ctx context.Context, userID int64) {
	interval := t.cfg.HeartbeatInterval
	if interval <= 0 {
		interval = 2 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := t.upsert(hbCtx, userID, model.PresenceStatusOnline)
			cancel()
			if err != nil {
				metrics.HeartbeatFailuresTotal.Inc()
				t.logger.Warn("Presence heartbeat failed", "userId", userID, "error", err)
				continue
			}
			metrics.HeartbeatsTotal.Inc()
		}
	}
}

// upsert 写入状态并广播变更事件
func (t *Tracker) upsert(ctx context.Context, userID int64, status string) error {
	if err := t.store.Upsert(ctx, userID, status); err != nil {
		return err
	}

	ev := feed.NewEvent(feed.ActionUpdate, feed.TablePresence, feed.TopicPresence).WithActor(userID)
	if err := t.feed.Publish(feed.TopicPresence, ev); err != nil {
		// 广播失败不影响已写入的状态，其他端靠下一次心跳收敛
		t.logger.Warn("Failed to publish presence event", "userId", userID, "error", err)
	}
	return nil
}

// refetch 拉取在线列表并分发给所有会话
func (t *Tracker) refetch(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	online, err := t.store.ListOnline(fetchCtx, t.cfg.StaleAfter)
	if err != nil {
		t.logger.Warn("Failed to fetch presence", "error", err)
		online = []model.UserPresence{}
	}

	t.mu.Lock()
	observers := make([]OnlineObserver, 0, len(t.observers))
	for _, o := range t.observers {
		observers = append(observers, o)
	}
	t.mu.Unlock()

	for _, o := range observers {
		o(online)
	}
}

// OnlineUsers 当前在线用户列表
// 拉取失败返回空列表而不是错误
func (t *Tracker) OnlineUsers(ctx context.Context) []model.UserPresence {
	online, err := t.store.ListOnline(ctx, t.cfg.StaleAfter)
	if err != nil {
		t.logger.Warn("Failed to fetch presence", "error", err)
		return []model.UserPresence{}
	}
	return online
}

// SweepStale 将过期的在线记录翻转为离线（由调度器周期触发）
func (t *Tracker) SweepStale(ctx context.Context) {
	swept, err := t.store.SweepStale(ctx, t.cfg.StaleAfter)
	if err != nil {
		t.logger.Warn("Presence sweep failed", "error", err)
		return
	}
	if swept > 0 {
		t.logger.Info("Swept stale presence records", "count", swept)
		ev := feed.NewEvent(feed.ActionUpdate, feed.TablePresence, feed.TopicPresence)
		if err := t.feed.Publish(feed.TopicPresence, ev); err != nil {
			t.logger.Warn("Failed to publish presence event", "error", err)
		}
	}
}
