package middleware

import (
	"net/http"

	"chat-relay-go/internal/session"
	"chat-relay-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware 在进入处理函数前解析会话 ID，并存入 gin 上下文（键为 session.ContextKey）。
// 会话机制不可用时请求无法继续处理。
func SessionMiddleware(provider session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := provider.Resolve(c); err != nil {
			log.Error("无法解析会话", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "session unavailable",
				"error":   "internal_error",
			})
			return
		}
		c.Next()
	}
}
