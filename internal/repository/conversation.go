package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sudooom.devconnect/internal/model"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository 会话数据访问
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository 创建会话仓库
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create 创建会话及其参与者
// 会话行与参与者行在同一事务中写入，不会出现零参与者的会话
func (r *ConversationRepository) Create(ctx context.Context, conv *model.Conversation, participants []model.Participant) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO conversations (id, name, type, is_private, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, query,
		conv.ID,
		conv.Name,
		conv.Type,
		conv.IsPrivate,
		conv.CreatedBy,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return err
	}

	for _, p := range participants {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, conv.ID, p.UserID, p.Role); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID 获取会话
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	query := `
		SELECT id, name, type, is_private, created_by, created_at, updated_at
		FROM conversations WHERE id = $1
	`
	conv := &model.Conversation{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.Name,
		&conv.Type,
		&conv.IsPrivate,
		&conv.CreatedBy,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return conv, nil
}

// IsParticipant 检查用户是否为会话参与者
func (r *ConversationRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2
		)
	`
	err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(&exists)
	return exists, err
}

// ListByUser 获取用户参与的会话，按最近活动倒序
// 返回的会话带参与者列表和最近一条消息
func (r *ConversationRepository) ListByUser(ctx context.Context, userID int64) ([]model.ConversationDetail, error) {
	query := `
		SELECT c.id, c.name, c.type, c.is_private, c.created_by, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = $1
		ORDER BY c.updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]model.ConversationDetail, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var d model.ConversationDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.IsPrivate, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	participants, err := r.listParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	lastMessages, err := r.listLastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range details {
		details[i].Participants = participants[details[i].ID]
		details[i].LastMessage = lastMessages[details[i].ID]
	}

	return details, nil
}

// listParticipants 批量获取参与者（含用户信息）
func (r *ConversationRepository) listParticipants(ctx context.Context, conversationIDs []int64) (map[int64][]model.Participant, error) {
	query := `
		SELECT cp.conversation_id, cp.user_id, cp.role, cp.joined_at,
		       u.username, u.nickname, u.avatar
		FROM conversation_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.conversation_id = ANY($1)
		ORDER BY cp.joined_at
	`
	rows, err := r.db.Query(ctx, query, conversationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.Participant)
	for rows.Next() {
		var p model.Participant
		user := &model.PublicUser{}
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.Role, &p.JoinedAt,
			&user.Username, &user.Nickname, &user.Avatar); err != nil {
			return nil, err
		}
		user.ID = p.UserID
		p.User = user
		result[p.ConversationID] = append(result[p.ConversationID], p)
	}
	return result, rows.Err()
}

// listLastMessages 批量获取每个会话最近一条未删除消息
func (r *ConversationRepository) listLastMessages(ctx context.Context, conversationIDs []int64) (map[int64]*model.Message, error) {
	query := `
		SELECT DISTINCT ON (m.conversation_id)
		       m.id, m.conversation_id, m.sender_id, m.content, m.message_type,
		       m.file_url, m.file_name, m.reply_to_id, m.created_at,
		       u.username, u.nickname, u.avatar
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = ANY($1) AND m.is_deleted = false
		ORDER BY m.conversation_id, m.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, conversationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]*model.Message)
	for rows.Next() {
		msg := &model.Message{}
		sender := &model.PublicUser{}
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.MessageType,
			&msg.FileURL, &msg.FileName, &msg.ReplyToID, &msg.CreatedAt,
			&sender.Username, &sender.Nickname, &sender.Avatar); err != nil {
			return nil, err
		}
		sender.ID = msg.SenderID
		msg.Sender = sender
		result[msg.ConversationID] = msg
	}
	return result, rows.Err()
}

// Touch 更新会话最近活动时间
func (r *ConversationRepository) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)
	return err
}

// ListParticipantIDs 获取会话全部参与者 ID
func (r *ConversationRepository) ListParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id FROM conversation_participants WHERE conversation_id = $1
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
