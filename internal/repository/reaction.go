package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReactionRepository 表情回应数据访问
type ReactionRepository struct {
	db *pgxpool.Pool
}

// NewReactionRepository 创建表情回应仓库
func NewReactionRepository(db *pgxpool.Pool) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Upsert 添加表情回应
// (message_id, user_id, emoji) 唯一，重复添加幂等
func (r *ReactionRepository) Upsert(ctx context.Context, messageID, userID int64, emoji string) error {
	query := `
		INSERT INTO message_reactions (message_id, user_id, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id, emoji) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, messageID, userID, emoji)
	return err
}

// Delete 移除表情回应
// 记录不存在时也视为成功
func (r *ReactionRepository) Delete(ctx context.Context, messageID, userID int64, emoji string) error {
	query := `
		DELETE FROM message_reactions
		WHERE message_id = $1 AND user_id = $2 AND emoji = $3
	`
	_, err := r.db.Exec(ctx, query, messageID, userID, emoji)
	return err
}

// CountByMessage 统计消息的表情回应数（用于测试与监控）
func (r *ReactionRepository) CountByMessage(ctx context.Context, messageID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM message_reactions WHERE message_id = $1
	`, messageID).Scan(&count)
	return count, err
}
