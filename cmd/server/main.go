// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay-go/internal/config"
	"chat-relay-go/internal/handler"
	"chat-relay-go/internal/repository"
	"chat-relay-go/internal/router"
	"chat-relay-go/internal/service"
	"chat-relay-go/internal/session"
	"chat-relay-go/pkg/database"
	"chat-relay-go/pkg/llm"
	"chat-relay-go/pkg/log"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("配置校验失败", err)
	}

	// 3. 初始化聊天记录库，建表只在首次启动时执行
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open chat log store", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate chat log store", err)
	}

	// 4. 会话
	sessions, closeSessions, err := newSessionProvider(cfg)
	if err != nil {
		log.Fatal("failed to init session store", err)
	}
	defer closeSessions()

	// 5. 初始化 Repository、LLM 客户端与 Service（依赖注入）
	turnRepo := repository.NewChatTurnRepository(db)
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Fatal("failed to init llm client", err)
	}
	chatService := service.NewChatService(turnRepo, llmClient)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r, err := router.New(handler.NewChatHandler(chatService), sessions)
	if err != nil {
		log.Fatal("failed to build router", err)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP 服务器关闭失败", err)
	}
	log.Info("服务已优雅关闭")
}

// newSessionProvider 按配置选择 cookie 或 Redis 会话存储，返回的 close 函数用于释放连接。
func newSessionProvider(cfg *config.Config) (session.Provider, func(), error) {
	if cfg.Session.Store == "redis" {
		rdb, err := database.NewRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		provider := session.NewRedisProvider(repository.NewSessionRepository(rdb), session.OptionsFromConfig(cfg.Session))
		return provider, func() { _ = rdb.Close() }, nil
	}

	provider, err := session.NewCookieProviderFromConfig(cfg.Session)
	if err != nil {
		return nil, nil, err
	}
	return provider, func() {}, nil
}
