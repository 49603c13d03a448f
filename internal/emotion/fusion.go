package emotion

import (
	"encoding/json"
	"strings"
	"time"
)

// RecencyWindow 图像情绪样本的有效期，超过后不参与融合
const RecencyWindow = 10 * time.Second

// ImageSample 客户端缓存并随聊天请求回传的图像情绪样本
// CapturedAt 为毫秒时间戳
type ImageSample struct {
	Emotions   Distribution `json:"emotions,omitempty"`
	Emotion    string       `json:"emotion"`
	Confidence float64      `json:"confidence"`
	CapturedAt int64        `json:"timestamp"`
}

// UnmarshalJSON 兼容 emotion 与 dominant_emotion 两种字段名
func (s *ImageSample) UnmarshalJSON(data []byte) error {
	type alias ImageSample
	var raw struct {
		alias
		DominantEmotion string `json:"dominant_emotion"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ImageSample(raw.alias)
	if s.Emotion == "" {
		s.Emotion = raw.DominantEmotion
	}
	return nil
}

// Dominant 返回样本的主导情绪
// 优先使用 emotion 字段，缺失时才取分布中的第一项
func (s *ImageSample) Dominant() string {
	if s == nil {
		return Neutral
	}
	if e := strings.TrimSpace(s.Emotion); e != "" {
		return e
	}
	if len(s.Emotions) > 0 {
		return s.Emotions.Dominant()
	}
	return Neutral
}

// FusionEngine 融合文本情绪与图像情绪
type FusionEngine struct {
	Window time.Duration
}

// Fuse 使用默认 10 秒窗口融合两路情绪
func Fuse(text Distribution, image *ImageSample, nowMs int64) string {
	return FusionEngine{Window: RecencyWindow}.Fuse(text, image, nowMs)
}

// Fuse 生成附加在提示词后的情绪上下文，没有可用信号时返回空字符串
// 文本子句总是位于图像子句之前
func (e FusionEngine) Fuse(text Distribution, image *ImageSample, nowMs int64) string {
	window := e.Window
	if window <= 0 {
		window = RecencyWindow
	}

	var b strings.Builder
	if dominant := text.Dominant(); dominant != Neutral {
		b.WriteString(" The user's text shows ")
		b.WriteString(dominant)
		b.WriteString(".")
	}

	if image != nil {
		dominant := image.Dominant()
		if dominant != Neutral && nowMs-image.CapturedAt < window.Milliseconds() {
			b.WriteString(" Their facial expression shows ")
			b.WriteString(dominant)
			b.WriteString(".")
		}
	}
	return b.String()
}
