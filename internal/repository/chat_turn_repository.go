// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"fmt"
	"sync"

	"chat-relay-go/internal/model"
	"chat-relay-go/pkg/database"

	"gorm.io/gorm"
)

// ChatTurnRepository 定义了聊天记录的持久化操作。记录只追加，按会话整体删除。
type ChatTurnRepository interface {
	Append(ctx context.Context, sessionID string, sender model.Sender, text string) (*model.ChatTurn, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.ChatTurn, error)
	ClearSession(ctx context.Context, sessionID string) (int64, error)
}

type gormChatTurnRepository struct {
	db *gorm.DB
	// sqlite 只支持单写者，写操作需要串行化；其他驱动下为 nil。
	writeMu *sync.Mutex
}

// NewChatTurnRepository 创建一个新的 ChatTurnRepository 实例。
func NewChatTurnRepository(db *gorm.DB) ChatTurnRepository {
	r := &gormChatTurnRepository{db: db}
	if database.IsSQLite(db) {
		r.writeMu = &sync.Mutex{}
	}
	return r
}

func (r *gormChatTurnRepository) lock() func() {
	if r.writeMu == nil {
		return func() {}
	}
	r.writeMu.Lock()
	return r.writeMu.Unlock
}

// Append 插入一条新消息。
func (r *gormChatTurnRepository) Append(ctx context.Context, sessionID string, sender model.Sender, text string) (*model.ChatTurn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("append chat turn: empty session id")
	}
	if !sender.Valid() {
		return nil, fmt.Errorf("append chat turn: invalid sender %q", sender)
	}

	turn := &model.ChatTurn{SessionID: sessionID, Sender: sender, Text: text}

	unlock := r.lock()
	defer unlock()
	if err := r.db.WithContext(ctx).Create(turn).Error; err != nil {
		return nil, fmt.Errorf("append chat turn: %w", err)
	}
	return turn, nil
}

// ListBySession 按创建顺序返回会话的全部消息，无记录时返回空切片。
func (r *gormChatTurnRepository) ListBySession(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	turns := []model.ChatTurn{}
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("list chat turns: %w", err)
	}
	return turns, nil
}

// ClearSession 删除会话的全部消息并返回删除的行数。
func (r *gormChatTurnRepository) ClearSession(ctx context.Context, sessionID string) (int64, error) {
	unlock := r.lock()
	defer unlock()

	result := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.ChatTurn{})
	if result.Error != nil {
		return 0, fmt.Errorf("clear chat turns: %w", result.Error)
	}
	return result.RowsAffected, nil
}
