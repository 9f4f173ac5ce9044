package session

import (
	"errors"
	"fmt"

	"chat-relay-go/internal/repository"
	"chat-relay-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// RedisProvider 在 cookie 中只保存一个随机 token，会话 ID 保存在 Redis 中。
type RedisProvider struct {
	repo repository.SessionRepository
	opts CookieOptions
}

// NewRedisProvider 创建一个基于服务端存储的 Provider。
func NewRedisProvider(repo repository.SessionRepository, opts CookieOptions) *RedisProvider {
	return &RedisProvider{repo: repo, opts: opts}
}

// Resolve 实现 Provider。Redis 不可用时返回错误。
func (p *RedisProvider) Resolve(c *gin.Context) (string, error) {
	if sid, ok := FromContext(c); ok {
		return sid, nil
	}
	ctx := c.Request.Context()

	if tok, err := c.Cookie(p.opts.Name); err == nil && tok != "" {
		sid, err := p.repo.GetSessionID(ctx, tok)
		switch {
		case err == nil:
			c.Set(ContextKey, sid)
			return sid, nil
		case !errors.Is(err, repository.ErrSessionNotFound):
			return "", err
		}
	}

	tok, err := token.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	sid, err := token.NewSessionID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	if err := p.repo.SaveSessionID(ctx, tok, sid); err != nil {
		return "", err
	}
	setCookie(c, p.opts, tok)
	c.Set(ContextKey, sid)
	return sid, nil
}

var _ Provider = (*RedisProvider)(nil)
