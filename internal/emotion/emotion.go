// Package emotion 负责从文本和人脸图像中提取情绪分布，并将两路信号融合成回复提示
package emotion

import (
	"math"
	"sort"
	"strings"
)

// Neutral 是没有可用情绪时的哨兵值
const Neutral = "neutral"

// Reading 单条情绪识别结果
type Reading struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Distribution 按置信度降序排列的情绪分布
type Distribution []Reading

// Dominant 返回主导情绪，分布为空时返回 neutral
func (d Distribution) Dominant() string {
	if len(d) == 0 {
		return Neutral
	}
	return d[0].Emotion
}

// TopConfidence 返回主导情绪的置信度
func (d Distribution) TopConfidence() float64 {
	if len(d) == 0 {
		return 0
	}
	return d[0].Confidence
}

// LabelScore 是底层模型返回的原始 (标签, 分数) 对
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Round3 保留三位小数
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// normalize 过滤、取整并稳定排序
// minScore 为负数时保留所有结果
func normalize(scores []LabelScore, minScore float64, lower bool) Distribution {
	out := make(Distribution, 0, len(scores))
	for _, s := range scores {
		if minScore >= 0 && s.Score <= minScore {
			continue
		}
		label := strings.TrimSpace(s.Label)
		if lower {
			label = strings.ToLower(label)
		}
		if label == "" {
			continue
		}
		out = append(out, Reading{Emotion: label, Confidence: Round3(s.Score)})
	}
	// 同分时保持模型原始顺序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
