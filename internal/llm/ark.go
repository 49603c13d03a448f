package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"kindspeak-server/internal/config"
)

// ArkGenerator 基于 eino ChatModel 的生成器
type ArkGenerator struct {
	chatModel model.BaseChatModel
}

// NewArkGenerator 创建火山方舟生成器
func NewArkGenerator(ctx context.Context, cfg config.AIConfig) (*ArkGenerator, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.ArkBaseURL,
		Region:  cfg.ArkRegion,
		APIKey:  cfg.ArkAPIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewArkGeneratorWithModel(chatModel), nil
}

// NewArkGeneratorWithModel 使用已有的 ChatModel 创建生成器
func NewArkGeneratorWithModel(chatModel model.BaseChatModel) *ArkGenerator {
	return &ArkGenerator{chatModel: chatModel}
}

// Complete 以单条用户消息调用模型
func (g *ArkGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := g.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("failed to call chat model: %w", err)
	}
	if msg == nil {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
