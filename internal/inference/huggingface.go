// Package inference 提供情绪识别所需的外部模型适配器
// 包括 Hugging Face Inference API 与 Google Cloud Vision 人脸检测
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	"kindspeak-server/internal/emotion"
)

const defaultHFTimeout = 20 * time.Second

// HFClient Hugging Face Inference API 客户端
// 同一个客户端只对应一个模型地址
type HFClient struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHFClient 创建 Hugging Face 客户端
// 参数:
//   - endpoint: 模型推理地址
//   - token: API Token，可以为空（匿名额度）
//   - timeout: 请求超时，<=0 时使用默认值
func NewHFClient(endpoint, token string, timeout time.Duration) *HFClient {
	if timeout <= 0 {
		timeout = defaultHFTimeout
	}
	return &HFClient{
		endpoint: strings.TrimSpace(endpoint),
		token:    strings.TrimSpace(token),
		client:   &http.Client{Timeout: timeout},
	}
}

// hfError 模型加载中或额度不足时返回的错误体
type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (c *HFClient) post(ctx context.Context, contentType string, body []byte) ([]emotion.LabelScore, error) {
	if c == nil || c.endpoint == "" {
		return nil, errors.New("hugging face endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var he hfError
		if json.Unmarshal(raw, &he) == nil && he.Error != "" {
			return nil, fmt.Errorf("inference endpoint returned status %d: %s", resp.StatusCode, he.Error)
		}
		return nil, fmt.Errorf("inference endpoint returned status %d", resp.StatusCode)
	}

	return parseLabelScores(raw)
}

// parseLabelScores 兼容 [[{label,score}]] 与 [{label,score}] 两种返回格式
func parseLabelScores(raw []byte) ([]emotion.LabelScore, error) {
	var nested [][]emotion.LabelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return []emotion.LabelScore{}, nil
		}
		return nested[0], nil
	}

	var flat []emotion.LabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse inference response: %w", err)
	}
	return flat, nil
}

// TextScorer 文本情绪多标签分类
type TextScorer struct {
	*HFClient
}

// NewTextScorer 创建文本情绪打分器
func NewTextScorer(endpoint, token string, timeout time.Duration) *TextScorer {
	return &TextScorer{HFClient: NewHFClient(endpoint, token, timeout)}
}

// ScoreText 返回每个情绪标签的分数
func (s *TextScorer) ScoreText(ctx context.Context, text string) ([]emotion.LabelScore, error) {
	body, err := json.Marshal(map[string]any{
		"inputs":  text,
		"options": map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return nil, err
	}
	return s.post(ctx, "application/json", body)
}

// ImageScorer 面部表情分类
type ImageScorer struct {
	*HFClient
	quality int
}

// NewImageScorer 创建表情打分器
func NewImageScorer(endpoint, token string, timeout time.Duration) *ImageScorer {
	return &ImageScorer{HFClient: NewHFClient(endpoint, token, timeout), quality: 90}
}

// ScoreImage 以 JPEG 格式上传图像并返回表情分数
func (s *ImageScorer) ScoreImage(ctx context.Context, img image.Image) ([]emotion.LabelScore, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return s.post(ctx, "image/jpeg", buf.Bytes())
}
