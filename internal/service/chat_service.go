// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"strings"

	"chat-relay-go/internal/model"
	"chat-relay-go/internal/repository"
	"chat-relay-go/pkg/llm"
	"chat-relay-go/pkg/log"
)

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// Predict 保存用户消息、调用补全接口、保存模型回复并返回回复文本。
	Predict(ctx context.Context, sessionID, text string) (string, error)
	// History 按创建顺序返回会话的全部消息。
	History(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
	// Clear 删除会话的全部消息，返回删除的条数。
	Clear(ctx context.Context, sessionID string) (int64, error)
}

type chatService struct {
	turnRepo  repository.ChatTurnRepository
	llmClient llm.Client
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(turnRepo repository.ChatTurnRepository, llmClient llm.Client) ChatService {
	return &chatService{
		turnRepo:  turnRepo,
		llmClient: llmClient,
	}
}

// Predict 的两次写入相互独立：补全失败时用户消息保留，不做回滚。
func (s *chatService) Predict(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", NewValidationError("text is required")
	}

	// 1. 保存用户消息，失败则不调用上游
	if _, err := s.turnRepo.Append(ctx, sessionID, model.SenderUser, text); err != nil {
		log.Errorw("failed to save user turn", "sessionID", sessionID, "error", err)
		return "", persistenceError("save user turn", err)
	}

	// 2. 只发送本次输入，不附带历史
	reply, err := s.llmClient.Complete(ctx, text)
	if err != nil {
		log.Errorw("completion failed", "sessionID", sessionID, "error", err)
		return "", upstreamError(err)
	}

	// 3. 即使客户端已断开，也保存已生成的回复
	if _, err := s.turnRepo.Append(context.WithoutCancel(ctx), sessionID, model.SenderAI, reply); err != nil {
		log.Errorw("failed to save ai turn", "sessionID", sessionID, "error", err)
		return "", persistenceError("save ai turn", err)
	}

	log.Infow("chat turn completed", "sessionID", sessionID, "inputChars", len(text), "replyChars", len(reply))
	return reply, nil
}

func (s *chatService) History(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	turns, err := s.turnRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, persistenceError("list turns", err)
	}
	return turns, nil
}

func (s *chatService) Clear(ctx context.Context, sessionID string) (int64, error) {
	n, err := s.turnRepo.ClearSession(ctx, sessionID)
	if err != nil {
		return 0, persistenceError("clear session", err)
	}
	log.Infow("session cleared", "sessionID", sessionID, "deleted", n)
	return n, nil
}
