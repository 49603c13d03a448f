package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kindspeak-server/internal/llm"
	"kindspeak-server/internal/logger"
)

// personaPreamble 固定的人设提示词，%s 依次为情绪上下文和用户消息
const personaPreamble = "You are a calm, supportive AI companion focused on mindfulness and well-being.%s\n" +
	" Respond to the user's message in a helpful, empathetic way. Keep responses concise and encouraging.\n\n" +
	"User message: %s"

// fallbackRule 关键词回退规则，按顺序匹配
type fallbackRule struct {
	keyword  string
	response string
}

var fallbackRules = []fallbackRule{
	{keyword: "hello", response: "Hello! How can I help you today?"},
	{keyword: "how are you", response: "I'm doing well, thank you for asking! How about you?"},
	{keyword: "meditation", response: "Meditation is a great practice for mindfulness. Would you like to start a session?"},
	{keyword: "help", response: "I'm here to help! You can chat with me, track meditation sessions, or manage your profile."},
}

const defaultFallback = "That's interesting! Tell me more about it."

// ResponseGenerator 生成陪伴回复
// 生成器不可用、出错或返回空内容时使用关键词回退，从不返回错误
type ResponseGenerator struct {
	generator llm.Generator
	timeout   time.Duration
	log       *logger.Logger
}

// NewResponseGenerator 创建回复生成器
// 参数:
//   - generator: 大模型生成器，可以为 nil
//   - timeout: 单次生成超时，<=0 表示不额外限制
//   - log: 日志记录器
func NewResponseGenerator(generator llm.Generator, timeout time.Duration, log *logger.Logger) *ResponseGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &ResponseGenerator{
		generator: generator,
		timeout:   timeout,
		log:       log.With("service", "ResponseGenerator"),
	}
}

// BuildPrompt 拼接人设、情绪上下文和用户消息
func BuildPrompt(message, emotionContext string) string {
	return fmt.Sprintf(personaPreamble, emotionContext, message)
}

// FallbackResponse 关键词回退回复，大小写不敏感的子串匹配
func FallbackResponse(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range fallbackRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.response
		}
	}
	return defaultFallback
}

// Generate 生成回复
func (g *ResponseGenerator) Generate(ctx context.Context, message, emotionContext string) (reply string) {
	if g == nil || g.generator == nil {
		return FallbackResponse(message)
	}

	defer func() {
		if r := recover(); r != nil {
			g.log.Warn("generator panicked", "panic", fmt.Sprint(r))
			reply = FallbackResponse(message)
		}
	}()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.generator.Complete(ctx, BuildPrompt(message, emotionContext))
	if err != nil {
		g.log.Warn("generation failed, using fallback", "error", err)
		return FallbackResponse(message)
	}
	if strings.TrimSpace(out) == "" {
		return FallbackResponse(message)
	}
	return out
}
