package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sudooom.devconnect/internal/cache"
	"sudooom.devconnect/internal/chat"
	"sudooom.devconnect/internal/feed"
	"sudooom.devconnect/internal/middleware"
	"sudooom.devconnect/internal/model"
	"sudooom.devconnect/internal/presence"
	"sudooom.devconnect/internal/realtime"
	"sudooom.devconnect/internal/typing"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBufferSize = 64
)

// clientCommand 客户端指令
type clientCommand struct {
	Action         string `json:"action"` // subscribe / unsubscribe / typing_start / typing_stop
	ConversationID int64  `json:"conversation_id"`
}

// serverPush 服务端推送帧
type serverPush struct {
	Type           string      `json:"type"` // messages / presence / typing
	ConversationID int64       `json:"conversation_id,omitempty"`
	Data           interface{} `json:"data"`
}

// convBinding 单个会话在连接上的登记：池句柄 + 本地缓存监听 + 输入状态句柄
type convBinding struct {
	feedHandle   *realtime.Handle
	typingHandle *realtime.Handle
	unregister   func()
	snapshot     *chat.Snapshot
}

// WSHandler 实时推送连接处理器
// 每条连接跟踪发起者的在线状态，并按客户端指令订阅会话主题。
// 会话消息的刷新由两条通路触发：远端变更事件和本端写操作的缓存失效，
// 两条通路落在同一份快照上，按消息 ID 去重后推送。
type WSHandler struct {
	pool        *realtime.Pool
	tracker     *presence.Tracker
	typing      *typing.Channel
	chatService *chat.Service
	invalidator *cache.Invalidator
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewWSHandler 创建实时推送处理器
func NewWSHandler(
	pool *realtime.Pool,
	tracker *presence.Tracker,
	typingChannel *typing.Channel,
	chatService *chat.Service,
	invalidator *cache.Invalidator,
) *WSHandler {
	return &WSHandler{
		pool:        pool,
		tracker:     tracker,
		typing:      typingChannel,
		chatService: chatService,
		invalidator: invalidator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域控制由 CORS 中间件负责
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: slog.Default(),
	}
}

// Handle 建立 WebSocket 连接
// @Summary      实时推送连接
// @Description  连接期间跟踪在线状态，按指令订阅会话的消息与输入状态推送
// @Tags         实时
// @Security     BearerAuth
// @Router       /ws [get]
func (h *WSHandler) Handle(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "userId", userID, "error", err)
		return
	}

	client := &wsClient{
		handler:  h,
		conn:     conn,
		userID:   userID,
		send:     make(chan serverPush, sendBufferSize),
		bindings: make(map[int64]*convBinding),
		done:     make(chan struct{}),
	}

	// 连接即在线：presence 会话在连接关闭的所有路径上结束
	session, err := h.tracker.Track(c.Request.Context(), userID, func(online []model.UserPresence) {
		client.push(serverPush{Type: "presence", Data: online})
	})
	if err != nil {
		h.logger.Error("Failed to start presence session", "userId", userID, "error", err)
		conn.Close()
		return
	}
	client.session = session

	h.logger.Info("WebSocket connected", "userId", userID)

	go client.writePump()
	client.readPump()
}

// wsClient 单条连接的状态
type wsClient struct {
	handler *WSHandler
	conn    *websocket.Conn
	userID  int64
	session *presence.Session

	send chan serverPush
	done chan struct{}

	mu       sync.Mutex
	bindings map[int64]*convBinding
	closed   bool
}

// push 投递一帧推送，连接已关闭或缓冲已满时丢弃
// 丢帧安全：每帧都是全量状态，下一帧会覆盖
func (c *wsClient) push(p serverPush) {
	select {
	case <-c.done:
	case c.send <- p:
	default:
		c.handler.logger.Warn("Push buffer full, dropping frame", "userId", c.userID, "type", p.Type)
	}
}

// readPump 读取客户端指令，连接断开时负责全部清理
func (c *wsClient) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.handler.logger.Warn("WebSocket read error", "userId", c.userID, "error", err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.handler.logger.Warn("Invalid client command", "userId", c.userID, "error", err)
			continue
		}
		c.dispatch(cmd)
	}
}

// writePump 单写协程，负责所有出站帧和心跳 ping
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case p := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(p); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch 执行客户端指令
func (c *wsClient) dispatch(cmd clientCommand) {
	ctx := context.Background()

	switch cmd.Action {
	case "subscribe":
		c.subscribe(cmd.ConversationID)
	case "unsubscribe":
		c.unsubscribe(cmd.ConversationID)
	case "typing_start":
		if !c.ensureParticipant(ctx, cmd.ConversationID) {
			return
		}
		if err := c.handler.typing.Start(ctx, cmd.ConversationID, c.userID); err != nil {
			c.handler.logger.Warn("Failed to start typing", "userId", c.userID, "error", err)
		}
	case "typing_stop":
		if !c.ensureParticipant(ctx, cmd.ConversationID) {
			return
		}
		if err := c.handler.typing.Stop(ctx, cmd.ConversationID, c.userID); err != nil {
			c.handler.logger.Warn("Failed to stop typing", "userId", c.userID, "error", err)
		}
	default:
		c.handler.logger.Warn("Unknown client command", "userId", c.userID, "action", cmd.Action)
	}
}

// ensureParticipant 校验本连接用户是否为会话参与者
func (c *wsClient) ensureParticipant(ctx context.Context, conversationID int64) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.handler.chatService.EnsureParticipant(ctx, conversationID, c.userID); err != nil {
		c.handler.logger.Warn("Conversation access denied", "userId", c.userID, "conversationId", conversationID, "error", err)
		return false
	}
	return true
}

// subscribe 订阅会话推送，重复订阅忽略
// 仅会话参与者可订阅
func (c *wsClient) subscribe(conversationID int64) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.bindings[conversationID]; ok {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if !c.ensureParticipant(context.Background(), conversationID) {
		return
	}

	h := c.handler
	snap := &chat.Snapshot{}

	// 远端变更事件：插入事件按行合并进快照，其余触发全量重查
	feedHandle, err := h.pool.Acquire(feed.ConversationTopic(conversationID), func(ev feed.Event) {
		c.applyEvent(conversationID, snap, ev)
	})
	if err != nil {
		h.logger.Error("Failed to subscribe conversation", "userId", c.userID, "conversationId", conversationID, "error", err)
		return
	}

	// 输入状态变更推送
	typingHandle, err := h.pool.Acquire(feed.TypingTopic(conversationID), func(ev feed.Event) {
		c.pushTyping(conversationID)
	})
	if err != nil {
		h.pool.Release(feedHandle)
		h.logger.Error("Failed to subscribe typing", "userId", c.userID, "conversationId", conversationID, "error", err)
		return
	}

	// 本端写操作的缓存失效触发全量重查
	unregister := h.invalidator.Register(cache.MessagesKey(conversationID), func() {
		c.refreshMessages(conversationID, snap)
	})

	binding := &convBinding{
		feedHandle:   feedHandle,
		typingHandle: typingHandle,
		unregister:   unregister,
		snapshot:     snap,
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.release(conversationID, binding)
		return
	}
	if _, ok := c.bindings[conversationID]; ok {
		// 并发重复订阅，保留先到的
		c.mu.Unlock()
		c.release(conversationID, binding)
		return
	}
	c.bindings[conversationID] = binding
	c.mu.Unlock()

	// 订阅即推送一次当前消息
	c.refreshMessages(conversationID, snap)
}

// unsubscribe 取消会话订阅
func (c *wsClient) unsubscribe(conversationID int64) {
	c.mu.Lock()
	binding, ok := c.bindings[conversationID]
	if ok {
		delete(c.bindings, conversationID)
	}
	c.mu.Unlock()

	if ok {
		c.release(conversationID, binding)
	}
}

// release 释放一个会话登记的全部资源
func (c *wsClient) release(conversationID int64, b *convBinding) {
	c.handler.pool.Release(b.feedHandle)
	c.handler.pool.Release(b.typingHandle)
	b.unregister()
	// 离开会话时清掉自己的输入状态
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.handler.typing.Stop(ctx, conversationID, c.userID); err != nil {
		c.handler.logger.Warn("Failed to clear typing on release", "userId", c.userID, "error", err)
	}
}

// applyEvent 处理会话主题上的变更事件
// 插入事件只取对应行并合并进快照，同一条消息经两条通路到达时只保留一份；
// 其余事件（更新、删除）退回全量重查。
func (c *wsClient) applyEvent(conversationID int64, snap *chat.Snapshot, ev feed.Event) {
	if ev.Action == feed.ActionInsert && ev.RowID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		msg, err := c.handler.chatService.GetMessageDetail(ctx, ev.RowID)
		cancel()
		if err == nil {
			c.push(serverPush{Type: "messages", ConversationID: conversationID, Data: snap.Append(*msg)})
			return
		}
		c.handler.logger.Warn("Failed to fetch inserted message, falling back to refetch",
			"userId", c.userID, "conversationId", conversationID, "rowId", ev.RowID, "error", err)
	}
	c.refreshMessages(conversationID, snap)
}

// refreshMessages 全量重查会话消息，替换快照并推送
func (c *wsClient) refreshMessages(conversationID int64, snap *chat.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	messages, err := c.handler.chatService.ListMessages(ctx, conversationID, c.userID)
	if err != nil {
		c.handler.logger.Warn("Failed to refetch messages", "userId", c.userID, "conversationId", conversationID, "error", err)
		return
	}
	c.push(serverPush{Type: "messages", ConversationID: conversationID, Data: snap.Replace(messages)})
}

// pushTyping 重查输入状态并推送（不含本人）
func (c *wsClient) pushTyping(conversationID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users, err := c.handler.typing.List(ctx, conversationID, c.userID)
	if err != nil {
		c.handler.logger.Warn("Failed to refetch typing users", "userId", c.userID, "conversationId", conversationID, "error", err)
		return
	}
	c.push(serverPush{Type: "typing", ConversationID: conversationID, Data: users})
}

// teardown 连接断开时的统一清理
// 所有断开路径都经过这里：presence 会话结束、全部订阅释放、连接关闭
func (c *wsClient) teardown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	bindings := c.bindings
	c.bindings = make(map[int64]*convBinding)
	c.mu.Unlock()

	close(c.done)

	for conversationID, b := range bindings {
		c.release(conversationID, b)
	}

	c.session.Stop()
	c.conn.Close()

	c.handler.logger.Info("WebSocket disconnected", "userId", c.userID)
}
