package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 表示 token 在 Redis 中没有对应的会话。
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository 定义了服务端会话存储的操作接口：浏览器持有不透明 token，
// 服务端保存 token 到会话 ID 的映射。
type SessionRepository interface {
	GetSessionID(ctx context.Context, token string) (string, error)
	SaveSessionID(ctx context.Context, token, sessionID string) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(redisClient *redis.Client) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient}
}

func sessionKey(token string) string {
	return fmt.Sprintf("chat:session:%s", token)
}

// GetSessionID 查询 token 对应的会话 ID。
func (r *redisSessionRepository) GetSessionID(ctx context.Context, token string) (string, error) {
	sessionID, err := r.redisClient.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session id: %w", err)
	}
	return sessionID, nil
}

// SaveSessionID 保存映射。会话没有过期时间。
func (r *redisSessionRepository) SaveSessionID(ctx context.Context, token, sessionID string) error {
	if err := r.redisClient.Set(ctx, sessionKey(token), sessionID, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session id: %w", err)
	}
	return nil
}
