// Package session 为每个浏览器分配一个稳定的不透明会话 ID，并通过 cookie 传递。
package session

import (
	"net/http"

	"chat-relay-go/internal/config"

	"github.com/gin-gonic/gin"
)

// ContextKey 是已解析会话 ID 在 gin.Context 中的键。
const ContextKey = "sessionID"

// Provider 解析当前请求所属的会话 ID：首次访问时生成新 ID 并写入 cookie，
// 之后的请求返回同一个 ID。
type Provider interface {
	Resolve(c *gin.Context) (string, error)
}

// CookieOptions 控制会话 cookie 的属性。
type CookieOptions struct {
	Name string
	// MaxAge 为 0 时不设置 Max-Age，cookie 随浏览器会话存在。
	MaxAge int
	Secure bool
}

// OptionsFromConfig 从会话配置中提取 cookie 属性。
func OptionsFromConfig(cfg config.SessionConfig) CookieOptions {
	return CookieOptions{Name: cfg.CookieName, MaxAge: cfg.MaxAge, Secure: cfg.Secure}
}

// FromContext 返回本次请求中已经解析过的会话 ID。
func FromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok && sid != ""
}

func setCookie(c *gin.Context, opts CookieOptions, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, value, opts.MaxAge, "/", "", opts.Secure, true)
}
