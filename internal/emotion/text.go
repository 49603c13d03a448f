package emotion

import (
	"context"
	"fmt"
	"strings"

	"kindspeak-server/internal/logger"
)

// DefaultTextMinScore 文本情绪分数必须严格大于该值才会保留
const DefaultTextMinScore = 0.1

// TextScorer 多标签文本情绪打分能力
type TextScorer interface {
	ScoreText(ctx context.Context, text string) ([]LabelScore, error)
}

// TextClassifier 将文本转换为情绪分布
// scorer 为 nil 表示模型不可用
type TextClassifier struct {
	scorer   TextScorer
	minScore float64
	log      *logger.Logger
}

// NewTextClassifier 创建文本情绪分类器
func NewTextClassifier(scorer TextScorer, minScore float64, log *logger.Logger) *TextClassifier {
	if minScore < 0 {
		minScore = DefaultTextMinScore
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &TextClassifier{
		scorer:   scorer,
		minScore: minScore,
		log:      log.With("component", "TextClassifier"),
	}
}

// Available 返回底层模型是否可用
func (c *TextClassifier) Available() bool {
	return c != nil && c.scorer != nil
}

// Classify 识别文本情绪，任何失败都返回空分布
func (c *TextClassifier) Classify(ctx context.Context, text string) (dist Distribution) {
	dist = Distribution{}
	if !c.Available() || strings.TrimSpace(text) == "" {
		return dist
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("text emotion scorer panicked", "panic", fmt.Sprint(r))
			dist = Distribution{}
		}
	}()

	scores, err := c.scorer.ScoreText(ctx, text)
	if err != nil {
		c.log.Warn("text emotion detection failed", "error", err)
		return Distribution{}
	}
	return normalize(scores, c.minScore, false)
}
