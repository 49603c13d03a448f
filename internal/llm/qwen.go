package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kindspeak-server/internal/config"
)

const (
	// QwenEndpoint DashScope 文本生成地址
	QwenEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"
	// QwenModel 默认模型
	QwenModel = "qwen-turbo"
)

// DashScopeRequest 阿里云 API 请求结构
type DashScopeRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []DashScopeMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		ResultFormat string `json:"result_format"` // "message"
	} `json:"parameters"`
}

type DashScopeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DashScopeResponse 阿里云 API 响应结构
type DashScopeResponse struct {
	Output struct {
		Choices []struct {
			Message DashScopeMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QwenGenerator 调用 DashScope 的生成器
type QwenGenerator struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewQwenGenerator 创建 Qwen 生成器
func NewQwenGenerator(cfg config.AIConfig) *QwenGenerator {
	endpoint := cfg.QwenBaseURL
	if endpoint == "" {
		endpoint = QwenEndpoint
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = QwenModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &QwenGenerator{
		endpoint: endpoint,
		apiKey:   cfg.QwenAPIKey,
		model:    modelName,
		client:   &http.Client{Timeout: timeout},
	}
}

// Complete 发送单条用户消息并返回模型回复
func (g *QwenGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	dashReq := DashScopeRequest{Model: g.model}
	dashReq.Input.Messages = []DashScopeMessage{{Role: "user", Content: prompt}}
	dashReq.Parameters.ResultFormat = "message"

	jsonData, err := json.Marshal(dashReq)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call AI service: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var dashResp DashScopeResponse
	if err := json.Unmarshal(bodyBytes, &dashResp); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}
	if dashResp.Code != "" {
		return "", fmt.Errorf("AI service error: %s - %s", dashResp.Code, dashResp.Message)
	}
	if len(dashResp.Output.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(dashResp.Output.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
