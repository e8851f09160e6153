package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sudooom.devconnect/internal/model"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository 消息数据访问
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository 创建消息仓库
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建消息
// 外键约束保证消息只能写入存在的会话
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, message_type, file_url, file_name, reply_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		msg.Content,
		msg.MessageType,
		msg.FileURL,
		msg.FileName,
		msg.ReplyToID,
	).Scan(&msg.CreatedAt)
}

// FindByID 根据 ID 查找消息
func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, message_type, file_url, file_name, reply_to_id, is_deleted, created_at
		FROM messages WHERE id = $1
	`
	msg := &model.Message{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.Content,
		&msg.MessageType,
		&msg.FileURL,
		&msg.FileName,
		&msg.ReplyToID,
		&msg.IsDeleted,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// FindDetailByID 根据 ID 查找未删除消息，附带发送者信息
func (r *MessageRepository) FindDetailByID(ctx context.Context, id int64) (*model.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type,
		       m.file_url, m.file_name, m.reply_to_id, m.created_at,
		       u.username, u.nickname, u.avatar
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1 AND m.is_deleted = false
	`
	msg := &model.Message{}
	sender := &model.PublicUser{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.MessageType,
		&msg.FileURL, &msg.FileName, &msg.ReplyToID, &msg.CreatedAt,
		&sender.Username, &sender.Nickname, &sender.Avatar,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	sender.ID = msg.SenderID
	msg.Sender = sender
	return msg, nil
}

// ListByConversation 获取会话的未删除消息，按创建时间升序
// 每条消息带发送者、被回复消息和表情回应
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]model.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type,
		       m.file_url, m.file_name, m.reply_to_id, m.created_at,
		       u.username, u.nickname, u.avatar
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1 AND m.is_deleted = false
		ORDER BY m.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	byID := make(map[int64]int)
	for rows.Next() {
		var msg model.Message
		sender := &model.PublicUser{}
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.MessageType,
			&msg.FileURL, &msg.FileName, &msg.ReplyToID, &msg.CreatedAt,
			&sender.Username, &sender.Nickname, &sender.Avatar); err != nil {
			return nil, err
		}
		sender.ID = msg.SenderID
		msg.Sender = sender
		byID[msg.ID] = len(messages)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return messages, nil
	}

	// 填充被回复消息（仅同会话内的引用）
	for i := range messages {
		if messages[i].ReplyToID == nil {
			continue
		}
		if idx, ok := byID[*messages[i].ReplyToID]; ok {
			replyTo := messages[idx]
			replyTo.Reactions = nil
			messages[i].ReplyTo = &replyTo
		}
	}

	if err := r.attachReactions(ctx, conversationID, messages, byID); err != nil {
		return nil, err
	}

	return messages, nil
}

// attachReactions 批量加载并挂载表情回应
func (r *MessageRepository) attachReactions(ctx context.Context, conversationID int64, messages []model.Message, byID map[int64]int) error {
	query := `
		SELECT mr.message_id, mr.user_id, mr.emoji, mr.created_at
		FROM message_reactions mr
		JOIN messages m ON m.id = mr.message_id
		WHERE m.conversation_id = $1
		ORDER BY mr.created_at
	`
	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var re model.Reaction
		if err := rows.Scan(&re.MessageID, &re.UserID, &re.Emoji, &re.CreatedAt); err != nil {
			return err
		}
		if idx, ok := byID[re.MessageID]; ok {
			messages[idx].Reactions = append(messages[idx].Reactions, re)
		}
	}
	return rows.Err()
}

// SoftDelete 软删除消息
func (r *MessageRepository) SoftDelete(ctx context.Context, id, senderID int64) error {
	result, err := r.db.Exec(ctx, `
		UPDATE messages SET is_deleted = true WHERE id = $1 AND sender_id = $2
	`, id, senderID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
