// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储聊天记录库与 Redis 的配置。
// Driver 取值 sqlite 或 mysql，DSN 的格式随驱动而定。
type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"`
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig 存储 Redis 的配置，仅在 session.store 为 redis 时使用。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig 存储会话 cookie 相关的配置。
type SessionConfig struct {
	Store      string `mapstructure:"store"`
	CookieName string `mapstructure:"cookie_name"`
	Secret     string `mapstructure:"secret"`
	// MaxAge 为 0 时 cookie 随浏览器会话存在。
	MaxAge int  `mapstructure:"max_age"`
	Secure bool `mapstructure:"secure"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	SDK            string              `mapstructure:"sdk"`
	APIKey         string              `mapstructure:"api_key"`
	BaseURL        string              `mapstructure:"base_url"`
	Model          string              `mapstructure:"model"`
	SystemPrompt   string              `mapstructure:"system_prompt"`
	TimeoutSeconds int                 `mapstructure:"timeout_seconds"`
	Generation     LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数（可选，零值表示不传）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// Timeout 返回单次补全请求的超时时间。
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// 环境变量到配置键的映射。
var envBindings = map[string]string{
	"server.port":         "PORT",
	"server.mode":         "GIN_MODE",
	"database.driver":     "DATABASE_DRIVER",
	"database.dsn":        "DATABASE_DSN",
	"database.redis.addr": "REDIS_ADDR",
	"session.store":       "SESSION_STORE",
	"session.secret":      "SESSION_SECRET",
	"log.level":           "LOG_LEVEL",
	"llm.sdk":             "LLM_SDK",
	"llm.api_key":         "OPENAI_API_KEY",
	"llm.base_url":        "OPENAI_BASE_URL",
	"llm.model":           "OPENAI_MODEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "chat.db")
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("session.store", "cookie")
	v.SetDefault("session.cookie_name", "chat_session")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.max_age", 0)
	v.SetDefault("session.secure", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("llm.sdk", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.system_prompt", "")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.generation.temperature", 0)
	v.SetDefault("llm.generation.top_p", 0)
	v.SetDefault("llm.generation.max_tokens", 0)
}

// Load 读取 .env、可选的 YAML 配置文件以及环境变量，优先级依次升高。
// configPath 指向的文件不存在时直接使用默认值。
func Load(configPath string) (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", env, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("无法访问配置文件 %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return &cfg, nil
}

// Validate 检查启动所必需的配置项。
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("缺少 OPENAI_API_KEY（llm.api_key）")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn 不能为空")
	}
	switch c.Session.Store {
	case "cookie":
		// 签名密钥必须在重启之间保持不变，否则已有 cookie 全部失效
		if c.Session.Secret == "" {
			return errors.New("session.store 为 cookie 时必须设置 SESSION_SECRET（session.secret）")
		}
	case "redis":
	default:
		return fmt.Errorf("不支持的会话存储: %q", c.Session.Store)
	}
	switch c.LLM.SDK {
	case "openai", "langchain":
	default:
		return fmt.Errorf("不支持的 LLM SDK: %q", c.LLM.SDK)
	}
	return nil
}
