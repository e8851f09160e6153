package chat

import (
	"context"
	"errors"
	"testing"

	"sudooom.devconnect/internal/cache"
	apperrors "sudooom.devconnect/internal/errors"
)

// 测试降级模式：读返回空，写返回后端不可用
func TestService_DemoMode(t *testing.T) {
	svc := NewDemoService(cache.NewInvalidator())
	ctx := context.Background()

	if svc.Available() {
		t.Error("Expected demo service to be unavailable")
	}

	convs, err := svc.ListConversations(ctx, 1)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 0 {
		t.Errorf("Expected empty conversations, got %d", len(convs))
	}

	messages, err := svc.ListMessages(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("Expected empty messages, got %d", len(messages))
	}

	_, err = svc.SendMessage(ctx, 1, 1, SendMessageParams{Content: "hello"})
	if !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("Expected backend unavailable error, got %v", err)
	}

	_, err = svc.CreateConversation(ctx, 1, CreateConversationParams{
		Type:           "direct",
		ParticipantIDs: []int64{2},
	})
	if !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("Expected backend unavailable error, got %v", err)
	}

	if err := svc.AddReaction(ctx, 1, 1, "👍"); !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("Expected backend unavailable error, got %v", err)
	}

	// 演示模式下没有会话数据，参与者校验放行，读操作自身返回空
	if err := svc.EnsureParticipant(ctx, 1, 1); err != nil {
		t.Errorf("Expected participant check to pass in demo mode, got %v", err)
	}

	if _, err := svc.GetMessageDetail(ctx, 1); !errors.Is(err, apperrors.ErrMessageNotFound) {
		t.Errorf("Expected message not found error, got %v", err)
	}
}
