package typing

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.devconnect/internal/feed"
	"sudooom.devconnect/internal/model"
)

const (
	// typingKeyPrefix 输入状态 Key 前缀
	// Key: devconnect:typing:{conversationId}，ZSet member 为 userId，score 为开始时间
	typingKeyPrefix = "devconnect:typing:"
)

// buildTypingKey 构建会话输入状态 Key
func buildTypingKey(conversationID int64) string {
	return typingKeyPrefix + strconv.FormatInt(conversationID, 10)
}

// Channel 输入状态通道
// 记录是自过期的：score 早于 expire 的条目在读取时被忽略并清理，
// 崩溃的客户端不会留下永久的 "正在输入"。
// 写入失败只记录日志，输入状态是 best-effort 的后台信号。
type Channel struct {
	redisClient *redis.Client
	feed        feed.Feed
	expire      time.Duration
	logger      *slog.Logger
}

// NewChannel 创建输入状态通道
func NewChannel(redisClient *redis.Client, f feed.Feed, expire time.Duration) *Channel {
	if expire <= 0 {
		expire = 10 * time.Second
	}
	return &Channel{
		redisClient: redisClient,
		feed:        f,
		expire:      expire,
		logger:      slog.Default(),
	}
}

// Start 标记用户正在输入
// 重复调用只刷新时间戳，幂等
func (c *Channel) Start(ctx context.Context, conversationID, userID int64) error {
	key := buildTypingKey(conversationID)
	now := time.Now().UnixMilli()

	pipe := c.redisClient.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: strconv.FormatInt(userID, 10)})
	pipe.Expire(ctx, key, c.expire*2)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Failed to set typing indicator", "conversationId", conversationID, "userId", userID, "error", err)
		return err
	}

	c.publish(conversationID, feed.ActionInsert, userID)
	return nil
}

// Stop 清除用户的输入状态
// 在失焦、发送和连接断开时调用
func (c *Channel) Stop(ctx context.Context, conversationID, userID int64) error {
	key := buildTypingKey(conversationID)

	if err := c.redisClient.ZRem(ctx, key, strconv.FormatInt(userID, 10)).Err(); err != nil {
		c.logger.Warn("Failed to clear typing indicator", "conversationId", conversationID, "userId", userID, "error", err)
		return err
	}

	c.publish(conversationID, feed.ActionDelete, userID)
	return nil
}

// List 当前正在输入的用户，排除请求者自己
func (c *Channel) List(ctx context.Context, conversationID, excludeUserID int64) ([]model.TypingUser, error) {
	key := buildTypingKey(conversationID)
	cutoff := time.Now().Add(-c.expire).UnixMilli()

	// 顺手清理过期条目
	if err := c.redisClient.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		c.logger.Warn("Failed to prune typing indicators", "conversationId", conversationID, "error", err)
	}

	entries, err := c.redisClient.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	users := make([]model.TypingUser, 0, len(entries))
	for _, e := range entries {
		member, ok := e.Member.(string)
		if !ok {
			continue
		}
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil || userID == excludeUserID {
			continue
		}
		users = append(users, model.TypingUser{
			ConversationID: conversationID,
			UserID:         userID,
			StartedAt:      int64(e.Score),
		})
	}

	return users, nil
}

// publish 广播输入状态变更
func (c *Channel) publish(conversationID int64, action string, userID int64) {
	topic := feed.TypingTopic(conversationID)
	ev := feed.NewEvent(action, feed.TableTyping, topic).WithActor(userID)
	if err := c.feed.Publish(topic, ev); err != nil {
		c.logger.Warn("Failed to publish typing event", "conversationId", conversationID, "error", err)
	}
}
