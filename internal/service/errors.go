// Package service 提供业务逻辑层的实现
// 服务层封装具体的业务逻辑，协调 Repository、Cache 与外部模型
package service

import (
	"errors"
	"fmt"
)

// 对话与会话相关错误
var (
	// ErrSessionNotFound 会话不存在，或不属于当前用户（两者不做区分）
	ErrSessionNotFound = errors.New("会话不存在")
	// ErrEmptyMessage 消息为空
	ErrEmptyMessage = errors.New("消息不能为空")
	// ErrPersistence 存储读写失败
	ErrPersistence = errors.New("存储操作失败")
	// ErrRateLimited 请求过于频繁
	ErrRateLimited = errors.New("请求过于频繁")
)

// persistenceError 包装底层存储错误，errors.Is 同时匹配 ErrPersistence 与原始错误
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
