package feed

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"sudooom.devconnect/internal/config"
)

// Client NATS 变更通知客户端
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient 创建 NATS 客户端
func NewClient(cfg config.NATSConfig) (*Client, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("Disconnected from NATS", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.Info("NATS connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:   conn,
		logger: slog.Default(),
	}, nil
}

// Conn 返回底层 NATS 连接
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// Close 关闭连接
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Subscribe 订阅指定主题的变更事件
func (c *Client) Subscribe(topic string, h Handler) (Subscription, error) {
	subject := BuildSubject(topic)

	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.logger.Error("Failed to unmarshal feed event", "subject", subject, "error", err)
			return
		}
		h(ev)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Feed subscription created", "topic", topic, "subject", subject)
	return sub, nil
}

// Publish 发布变更事件
func (c *Client) Publish(topic string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("Failed to marshal feed event", "topic", topic, "error", err)
		return err
	}

	if err := c.conn.Publish(BuildSubject(topic), data); err != nil {
		c.logger.Error("Failed to publish feed event", "topic", topic, "error", err)
		return err
	}

	c.logger.Debug("Published feed event", "topic", topic, "table", ev.Table, "action", ev.Action)
	return nil
}
