// Package router 根据注入的依赖构建 Gin 路由引擎。
package router

import (
	"fmt"

	"chat-relay-go/internal/handler"
	"chat-relay-go/internal/middleware"
	"chat-relay-go/internal/session"
	"chat-relay-go/web"

	"github.com/gin-gonic/gin"
)

// New 创建路由引擎。所有聊天路由都要求先解析会话。
func New(chatHandler *handler.ChatHandler, sessions session.Provider) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.RequestLogger(), gin.Recovery())

	chat := r.Group("/")
	chat.Use(middleware.SessionMiddleware(sessions))
	{
		chat.GET("/", chatHandler.Home)
		chat.GET("/history", chatHandler.History)
		chat.POST("/predict", chatHandler.Predict)
		chat.POST("/clear", chatHandler.Clear)
		chat.GET("/ws", chatHandler.WebSocket)
	}

	return r, nil
}
