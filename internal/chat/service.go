package chat

import (
	"context"
	"errors"
	"log/slog"

	"sudooom.devconnect/internal/cache"
	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/feed"
	"sudooom.devconnect/internal/metrics"
	"sudooom.devconnect/internal/model"
	"sudooom.devconnect/internal/repository"
	"sudooom.devconnect/pkg/snowflake"
)

// CreateConversationParams 创建会话参数
type CreateConversationParams struct {
	Name           string  `json:"name"`
	Type           string  `json:"type" binding:"required,oneof=direct group"`
	IsPrivate      *bool   `json:"is_private"`
	ParticipantIDs []int64 `json:"participant_ids" binding:"required,min=1"`
}

// SendMessageParams 发送消息参数
type SendMessageParams struct {
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"message_type"`
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name"`
	ReplyToID   *int64 `json:"reply_to_id"`
}

// Service 消息/会话查询层
// 所有写操作成功后：广播变更事件（远端失效）并触发本地缓存失效（发送端快速回显）。
// 两条通路可能对同一变更各触发一次重查，重查幂等，展示层按消息 ID 去重。
type Service struct {
	convRepo    *repository.ConversationRepository
	msgRepo     *repository.MessageRepository
	reactRepo   *repository.ReactionRepository
	feed        feed.Feed
	invalidator *cache.Invalidator
	idGen       *snowflake.Node
	logger      *slog.Logger
	available   bool
}

// NewService 创建消息服务
func NewService(
	convRepo *repository.ConversationRepository,
	msgRepo *repository.MessageRepository,
	reactRepo *repository.ReactionRepository,
	f feed.Feed,
	invalidator *cache.Invalidator,
	idGen *snowflake.Node,
) *Service {
	return &Service{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		reactRepo:   reactRepo,
		feed:        f,
		invalidator: invalidator,
		idGen:       idGen,
		logger:      slog.Default(),
		available:   true,
	}
}

// NewDemoService 创建降级服务
// 后端不可用（配置缺失）时使用：读操作返回空结果，写操作返回明确错误
func NewDemoService(invalidator *cache.Invalidator) *Service {
	return &Service{
		invalidator: invalidator,
		logger:      slog.Default(),
		available:   false,
	}
}

// Available 后端是否可用
func (s *Service) Available() bool {
	return s.available
}

// ListConversations 获取用户参与的会话
// 带参与者列表和最近一条消息，按最近活动倒序
func (s *Service) ListConversations(ctx context.Context, userID int64) ([]model.ConversationDetail, error) {
	if !s.available {
		return []model.ConversationDetail{}, nil
	}
	return s.convRepo.ListByUser(ctx, userID)
}

// ListMessages 获取会话的未删除消息，按创建时间升序
func (s *Service) ListMessages(ctx context.Context, conversationID, userID int64) ([]model.Message, error) {
	if !s.available {
		return []model.Message{}, nil
	}

	if err := s.EnsureParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	return s.msgRepo.ListByConversation(ctx, conversationID)
}

// GetMessageDetail 获取单条未删除消息（带发送者）
func (s *Service) GetMessageDetail(ctx context.Context, messageID int64) (*model.Message, error) {
	if !s.available {
		return nil, apperrors.ErrMessageNotFound
	}

	msg, err := s.msgRepo.FindDetailByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// EnsureParticipant 校验用户是否为会话参与者
// 演示模式下没有会话数据，直接放行，读操作本身返回空结果
func (s *Service) EnsureParticipant(ctx context.Context, conversationID, userID int64) error {
	if !s.available {
		return nil
	}

	ok, err := s.convRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotParticipant
	}
	return nil
}

// CreateConversation 创建会话
// 创建者为 admin，其余参与者为 member，会话与参与者行原子写入；
// 失败时调用方按整体失败处理并可重试。
func (s *Service) CreateConversation(ctx context.Context, creatorID int64, params CreateConversationParams) (*model.Conversation, error) {
	if !s.available {
		return nil, apperrors.ErrBackendUnavailable
	}
	if len(params.ParticipantIDs) == 0 {
		return nil, apperrors.ErrEmptyParticipants
	}

	isPrivate := true
	if params.IsPrivate != nil {
		isPrivate = *params.IsPrivate
	}

	conv := &model.Conversation{
		ID:        s.idGen.Generate().Int64(),
		Name:      params.Name,
		Type:      params.Type,
		IsPrivate: isPrivate,
		CreatedBy: creatorID,
	}

	participants := []model.Participant{
		{ConversationID: conv.ID, UserID: creatorID, Role: model.ParticipantRoleAdmin},
	}
	for _, id := range params.ParticipantIDs {
		if id == creatorID {
			continue
		}
		participants = append(participants, model.Participant{
			ConversationID: conv.ID,
			UserID:         id,
			Role:           model.ParticipantRoleMember,
		})
	}

	if err := s.convRepo.Create(ctx, conv, participants); err != nil {
		return nil, err
	}

	for _, p := range participants {
		s.invalidator.Invalidate(cache.ConversationsKey(p.UserID))
	}

	s.logger.Info("Conversation created",
		"conversationId", conv.ID,
		"createdBy", creatorID,
		"participants", len(participants))

	return conv, nil
}

// SendMessage 发送消息
// 成功后广播会话主题的变更事件并本地失效消息/会话列表缓存
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID int64, params SendMessageParams) (*model.Message, error) {
	if !s.available {
		return nil, apperrors.ErrBackendUnavailable
	}

	if err := s.EnsureParticipant(ctx, conversationID, senderID); err != nil {
		return nil, err
	}

	msgType := params.MessageType
	if msgType == "" {
		msgType = model.MessageTypeText
	}

	msg := &model.Message{
		ID:             s.idGen.Generate().Int64(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        params.Content,
		MessageType:    msgType,
		FileURL:        params.FileURL,
		FileName:       params.FileName,
		ReplyToID:      params.ReplyToID,
	}

	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesSentTotal.Inc()

	if err := s.convRepo.Touch(ctx, conversationID); err != nil {
		s.logger.Warn("Failed to touch conversation", "conversationId", conversationID, "error", err)
	}

	s.notifyConversation(ctx, conversationID, feed.ActionInsert, msg.ID, senderID)

	return msg, nil
}

// DeleteMessage 软删除消息，仅发送者可删
func (s *Service) DeleteMessage(ctx context.Context, messageID, userID int64) error {
	if !s.available {
		return apperrors.ErrBackendUnavailable
	}

	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return err
	}

	if err := s.msgRepo.SoftDelete(ctx, messageID, userID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return err
	}

	s.notifyConversation(ctx, msg.ConversationID, feed.ActionUpdate, messageID, userID)
	return nil
}

// AddReaction 添加表情回应，幂等
func (s *Service) AddReaction(ctx context.Context, messageID, userID int64, emoji string) error {
	if !s.available {
		return apperrors.ErrBackendUnavailable
	}

	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return err
	}

	if err := s.reactRepo.Upsert(ctx, messageID, userID, emoji); err != nil {
		return err
	}

	s.notifyConversation(ctx, msg.ConversationID, feed.ActionUpdate, messageID, userID)
	return nil
}

// RemoveReaction 移除表情回应，幂等
func (s *Service) RemoveReaction(ctx context.Context, messageID, userID int64, emoji string) error {
	if !s.available {
		return apperrors.ErrBackendUnavailable
	}

	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperrors.ErrMessageNotFound
		}
		return err
	}

	if err := s.reactRepo.Delete(ctx, messageID, userID, emoji); err != nil {
		return err
	}

	s.notifyConversation(ctx, msg.ConversationID, feed.ActionUpdate, messageID, userID)
	return nil
}

// notifyConversation 广播变更事件并触发本地缓存失效
// 广播失败只记录日志：本地失效已保证发送端自己能刷新
func (s *Service) notifyConversation(ctx context.Context, conversationID int64, action string, rowID, actorID int64) {
	topic := feed.ConversationTopic(conversationID)
	ev := feed.NewEvent(action, feed.TableMessages, topic).WithRow(rowID).WithActor(actorID)
	if err := s.feed.Publish(topic, ev); err != nil {
		s.logger.Warn("Failed to publish conversation event", "conversationId", conversationID, "error", err)
	}

	s.invalidator.Invalidate(cache.MessagesKey(conversationID))

	participantIDs, err := s.convRepo.ListParticipantIDs(ctx, conversationID)
	if err != nil {
		s.logger.Warn("Failed to list participants for invalidation", "conversationId", conversationID, "error", err)
		return
	}
	for _, id := range participantIDs {
		s.invalidator.Invalidate(cache.ConversationsKey(id))
	}
}
