// Package llm 封装回复生成所用的大模型
// 支持火山方舟（eino ark）与阿里云 DashScope（Qwen）
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kindspeak-server/internal/config"
)

// ErrEmptyCompletion 模型没有返回内容
var ErrEmptyCompletion = errors.New("model returned no content")

// Generator 单轮文本补全
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New 根据配置创建生成器
// 未配置或配置不完整时返回 (nil, nil)，调用方应使用回退回复
func New(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "ark":
		gen, err := NewArkGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case "qwen":
		return NewQwenGenerator(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
