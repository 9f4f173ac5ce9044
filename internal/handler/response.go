// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"chat-relay-go/internal/service"

	"github.com/gin-gonic/gin"
)

// errorKind 将业务错误映射为 HTTP 状态码和错误标签。
func errorKind(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError, "persistence_error"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// publicMessage 返回可以展示给调用方的错误信息，内部错误细节只写日志。
func publicMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return err.Error()
	case errors.Is(err, service.ErrPersistence):
		return "failed to access chat history"
	case errors.Is(err, service.ErrUpstream):
		return "completion service unavailable"
	default:
		return "internal server error"
	}
}

func writeError(c *gin.Context, err error) {
	status, kind := errorKind(err)
	c.JSON(status, gin.H{
		"code":    status,
		"message": publicMessage(err),
		"error":   kind,
	})
}
