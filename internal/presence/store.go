package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.devconnect/internal/model"
)

const (
	// presenceKeyPrefix 用户在线状态 Key 前缀
	// Key: devconnect:presence:{userId}
	presenceKeyPrefix = "devconnect:presence:"

	// presenceIndexKey 按 last_seen 排序的用户索引
	presenceIndexKey = "devconnect:presence:index"
)

// buildPresenceKey 构建用户在线状态 Key
func buildPresenceKey(userID int64) string {
	return fmt.Sprintf("%s%d", presenceKeyPrefix, userID)
}

// Store 在线状态存储（基于 Redis）
// 每个用户一条记录，last writer wins
type Store struct {
	redisClient *redis.Client
}

// NewStore 创建在线状态存储
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redisClient: redisClient}
}

// Upsert 写入用户在线状态
func (s *Store) Upsert(ctx context.Context, userID int64, status string) error {
	now := time.Now().UnixMilli()

	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, buildPresenceKey(userID), "status", status, "last_seen", now)
	pipe.ZAdd(ctx, presenceIndexKey, redis.Z{Score: float64(now), Member: strconv.FormatInt(userID, 10)})
	_, err := pipe.Exec(ctx)

	return err
}

// Get 读取单个用户的在线状态
func (s *Store) Get(ctx context.Context, userID int64) (*model.UserPresence, error) {
	data, err := s.redisClient.HGetAll(ctx, buildPresenceKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	lastSeen, _ := strconv.ParseInt(data["last_seen"], 10, 64)
	return &model.UserPresence{
		UserID:   userID,
		Status:   data["status"],
		LastSeen: lastSeen,
	}, nil
}

// ListOnline 返回当前在线的用户
// last_seen 早于 staleAfter 的记录视为离线，不论其 status 字段
func (s *Store) ListOnline(ctx context.Context, staleAfter time.Duration) ([]model.UserPresence, error) {
	cutoff := time.Now().Add(-staleAfter).UnixMilli()

	members, err := s.redisClient.ZRangeByScore(ctx, presenceIndexKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []model.UserPresence{}, nil
	}

	pipe := s.redisClient.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	userIDs := make([]int64, len(members))

	for i, m := range members {
		userIDs[i], _ = strconv.ParseInt(m, 10, 64)
		cmds[i] = pipe.HGetAll(ctx, buildPresenceKey(userIDs[i]))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	online := make([]model.UserPresence, 0, len(members))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue
		}
		if data["status"] != model.PresenceStatusOnline {
			continue
		}
		lastSeen, _ := strconv.ParseInt(data["last_seen"], 10, 64)
		online = append(online, model.UserPresence{
			UserID:   userIDs[i],
			Status:   model.PresenceStatusOnline,
			LastSeen: lastSeen,
		})
	}

	return online, nil
}

// SweepStale 将 last_seen 过期的在线记录翻转为离线
// 返回翻转的数量
func (s *Store) SweepStale(ctx context.Context, staleAfter time.Duration) (int, error) {
	cutoff := time.Now().Add(-staleAfter).UnixMilli()

	members, err := s.redisClient.ZRangeByScore(ctx, presenceIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}

	swept := 0
	for _, m := range members {
		userID, _ := strconv.ParseInt(m, 10, 64)
		key := buildPresenceKey(userID)

		status, err := s.redisClient.HGet(ctx, key, "status").Result()
		if err != nil || status != model.PresenceStatusOnline {
			continue
		}

		if err := s.redisClient.HSet(ctx, key, "status", model.PresenceStatusOffline).Err(); err != nil {
			continue
		}
		swept++
	}

	return swept, nil
}
