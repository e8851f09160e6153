package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 实时订阅与心跳相关指标
var (
	// ActiveSubscriptions 当前活跃的底层订阅数（按主题去重后）
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "devconnect",
		Subsystem: "realtime",
		Name:      "active_subscriptions",
		Help:      "Number of live underlying feed subscriptions.",
	})

	// ActiveObservers 当前注册的观察者总数
	ActiveObservers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "devconnect",
		Subsystem: "realtime",
		Name:      "active_observers",
		Help:      "Number of registered observers across all topics.",
	})

	// FeedEventsTotal 收到的变更事件数
	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devconnect",
		Subsystem: "realtime",
		Name:      "feed_events_total",
		Help:      "Feed events received, by source table.",
	}, []string{"table"})

	// FanoutTotal 观察者回调触发次数
	FanoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "devconnect",
		Subsystem: "realtime",
		Name:      "fanout_total",
		Help:      "Observer callbacks invoked.",
	})

	// HeartbeatsTotal 在线心跳上报次数
	HeartbeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "devconnect",
		Subsystem: "presence",
		Name:      "heartbeats_total",
		Help:      "Presence heartbeats written.",
	})

	// HeartbeatFailuresTotal 心跳上报失败次数
	HeartbeatFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "devconnect",
		Subsystem: "presence",
		Name:      "heartbeat_failures_total",
		Help:      "Presence heartbeats that failed.",
	})

	// MessagesSentTotal 发送成功的消息数
	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "devconnect",
		Subsystem: "chat",
		Name:      "messages_sent_total",
		Help:      "Messages persisted successfully.",
	})
)
