package service

import (
	"context"
	"fmt"
	"time"

	"kindspeak-server/internal/cache"
	"kindspeak-server/internal/emotion"
	"kindspeak-server/internal/logger"
)

// AnalyzeImageResponse 图像情绪分析结果
// 客户端缓存后作为 image_emotion 随下一轮对话回传
type AnalyzeImageResponse struct {
	Emotions        emotion.Distribution `json:"emotions"`
	DominantEmotion string               `json:"dominant_emotion"`
	Confidence      float64              `json:"confidence"`
	Timestamp       int64                `json:"timestamp"`
}

// EmotionService 图像情绪分析
type EmotionService struct {
	classifier *emotion.ImageClassifier
	cache      *cache.RedisCache
	perMinute  int
	log        *logger.Logger
	now        func() time.Time
}

// NewEmotionService 创建 EmotionService 实例
// perMinute 为每用户每分钟允许的分析次数，0 表示不限制
func NewEmotionService(classifier *emotion.ImageClassifier, cache *cache.RedisCache, perMinute int, log *logger.Logger) *EmotionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &EmotionService{
		classifier: classifier,
		cache:      cache,
		perMinute:  perMinute,
		log:        log.With("service", "EmotionService"),
		now:        time.Now,
	}
}

// AnalyzeImage 解析 base64 图像并识别面部表情
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户，用于限流
//   - payload: base64 或 data URL
//
// 返回:
//   - *AnalyzeImageResponse: 识别结果；模型不可用时为 neutral
//   - error: emotion.ErrInvalidImage 或 ErrRateLimited
func (s *EmotionService) AnalyzeImage(ctx context.Context, userID int64, payload string) (*AnalyzeImageResponse, error) {
	allowed, err := s.cache.AllowN(ctx, fmt.Sprintf("analyze:%d", userID), s.perMinute, time.Minute)
	if err != nil {
		// Redis 故障时放行
		s.log.Warn("rate limiter unavailable", "error", err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	img, err := emotion.DecodeImagePayload(payload)
	if err != nil {
		return nil, err
	}

	result := s.classifier.Classify(ctx, img)
	return &AnalyzeImageResponse{
		Emotions:        result.Emotions,
		DominantEmotion: result.DominantEmotion,
		Confidence:      result.Confidence,
		Timestamp:       s.now().UnixMilli(),
	}, nil
}
