package service

import (
	"errors"
	"fmt"
)

// 业务错误类型，调用方通过 errors.Is 判断并映射为 HTTP 状态码。
var (
	// ErrValidation 表示请求输入缺失或不合法，可由用户修正。
	ErrValidation = errors.New("validation error")
	// ErrPersistence 表示聊天记录库不可用或写入违反约束。
	ErrPersistence = errors.New("persistence error")
	// ErrUpstream 表示补全接口不可达、返回非成功状态、超时或没有内容。
	ErrUpstream = errors.New("upstream error")
)

// NewValidationError 构造一个可展示给调用方的输入错误。
func NewValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func upstreamError(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
