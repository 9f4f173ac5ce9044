package session

import (
	"errors"
	"fmt"

	"chat-relay-go/internal/config"
	"chat-relay-go/pkg/log"
	"chat-relay-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// CookieProvider 将会话 ID 保存在签名 cookie 中，服务端不保存任何状态。
type CookieProvider struct {
	tokens *token.SessionTokenManager
	opts   CookieOptions
}

// NewCookieProvider 创建一个基于签名 cookie 的 Provider。
func NewCookieProvider(tokens *token.SessionTokenManager, opts CookieOptions) *CookieProvider {
	return &CookieProvider{tokens: tokens, opts: opts}
}

// NewCookieProviderFromConfig 使用配置中的固定密钥创建 CookieProvider。
// 相同配置创建的实例可以校验彼此签发的 cookie，因此重启后会话保持不变。
func NewCookieProviderFromConfig(cfg config.SessionConfig) (*CookieProvider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required for the cookie store")
	}
	return NewCookieProvider(token.NewSessionTokenManager(cfg.Secret), OptionsFromConfig(cfg)), nil
}

// Resolve 实现 Provider。cookie 缺失、被篡改或签名密钥已更换时都会分配新会话。
func (p *CookieProvider) Resolve(c *gin.Context) (string, error) {
	if sid, ok := FromContext(c); ok {
		return sid, nil
	}

	if raw, err := c.Cookie(p.opts.Name); err == nil && raw != "" {
		sid, verr := p.tokens.VerifyToken(raw)
		if verr == nil {
			c.Set(ContextKey, sid)
			return sid, nil
		}
		log.Warnw("discarding invalid session cookie", "error", verr)
	}

	sid, err := token.NewSessionID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	signed, err := p.tokens.GenerateToken(sid)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	setCookie(c, p.opts, signed)
	c.Set(ContextKey, sid)
	return sid, nil
}

var _ Provider = (*CookieProvider)(nil)
