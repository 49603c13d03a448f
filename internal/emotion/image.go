package emotion

import (
	"context"
	"fmt"
	"image"

	"kindspeak-server/internal/logger"
)

// ImageScorer 面部表情打分能力
type ImageScorer interface {
	ScoreImage(ctx context.Context, img image.Image) ([]LabelScore, error)
}

// ImageResult 图像情绪识别结果
type ImageResult struct {
	Emotions        Distribution `json:"emotions"`
	DominantEmotion string       `json:"dominant_emotion"`
	Confidence      float64      `json:"confidence"`
}

func neutralImageResult() ImageResult {
	return ImageResult{Emotions: Distribution{}, DominantEmotion: Neutral, Confidence: 0}
}

// ImageClassifier 对（裁剪后的）人脸图像进行表情识别
type ImageClassifier struct {
	scorer  ImageScorer
	locator *FaceLocator
	log     *logger.Logger
}

// NewImageClassifier 创建图像情绪分类器
// locator 可以为 nil，此时直接使用整张图像
func NewImageClassifier(scorer ImageScorer, locator *FaceLocator, log *logger.Logger) *ImageClassifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &ImageClassifier{
		scorer:  scorer,
		locator: locator,
		log:     log.With("component", "ImageClassifier"),
	}
}

// Available 返回表情模型是否可用
func (c *ImageClassifier) Available() bool {
	return c != nil && c.scorer != nil
}

// Classify 识别图像情绪，任何失败都返回 neutral
func (c *ImageClassifier) Classify(ctx context.Context, img image.Image) (result ImageResult) {
	if !c.Available() || img == nil {
		return neutralImageResult()
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("image emotion scorer panicked", "panic", fmt.Sprint(r))
			result = neutralImageResult()
		}
	}()

	face := c.locator.LocateAndCrop(ctx, img)

	scores, err := c.scorer.ScoreImage(ctx, face)
	if err != nil {
		c.log.Warn("image emotion detection failed", "error", err)
		return neutralImageResult()
	}

	dist := normalize(scores, -1, true)
	return ImageResult{
		Emotions:        dist,
		DominantEmotion: dist.Dominant(),
		Confidence:      dist.TopConfidence(),
	}
}
