package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"kindspeak-server/internal/emotion"
	"kindspeak-server/internal/logger"
	"kindspeak-server/internal/model"
)

// ChatRequest 一轮对话请求
type ChatRequest struct {
	Message      string               `json:"message"`
	SessionID    string               `json:"session_id"`
	ImageEmotion *emotion.ImageSample `json:"image_emotion"`
}

// ChatResponse 一轮对话结果
type ChatResponse struct {
	Response        string               `json:"response"`
	Emotions        emotion.Distribution `json:"emotions"`
	DominantEmotion string               `json:"dominant_emotion"`
	SessionID       string               `json:"session_id"`
}

// ChatService 处理一轮对话：情绪识别、融合、生成回复并持久化
type ChatService struct {
	sessions  *SessionService
	text      *emotion.TextClassifier
	fusion    emotion.FusionEngine
	responder *ResponseGenerator
	log       *logger.Logger
	now       func() time.Time
}

// NewChatService 创建 ChatService 实例
// 参数:
//   - sessions: 会话存储
//   - text: 文本情绪分类器，不可用时对话照常进行
//   - fusion: 情绪融合规则
//   - responder: 回复生成器
//   - log: 日志记录器
func NewChatService(
	sessions *SessionService,
	text *emotion.TextClassifier,
	fusion emotion.FusionEngine,
	responder *ResponseGenerator,
	log *logger.Logger,
) *ChatService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatService{
		sessions:  sessions,
		text:      text,
		fusion:    fusion,
		responder: responder,
		log:       log.With("service", "ChatService"),
		now:       time.Now,
	}
}

// ProcessMessage 处理一轮对话
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户
//   - req: 对话请求
//
// 返回:
//   - *ChatResponse: 回复、文本情绪分布、主导情绪和会话 ID
//   - error: ErrEmptyMessage、ErrSessionNotFound 或 ErrPersistence；模型失败不会返回错误
func (s *ChatService) ProcessMessage(ctx context.Context, userID int64, req *ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	// 会话校验与文本情绪识别互不依赖，并行执行
	var (
		sessionID string
		textDist  emotion.Distribution
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := s.sessions.StartOrValidate(gctx, userID, req.SessionID, message)
		if err != nil {
			return err
		}
		sessionID = id
		return nil
	})
	g.Go(func() error {
		textDist = s.text.Classify(gctx, message)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	emotionContext := s.fusion.Fuse(textDist, req.ImageEmotion, now.UnixMilli())
	reply := s.responder.Generate(ctx, message, emotionContext)

	record := &model.ConversationMessage{
		UserID:          userID,
		SessionID:       sessionID,
		Message:         message,
		Response:        reply,
		Emotions:        datatypes.NewJSONType(textDist),
		DominantEmotion: textDist.Dominant(),
		ImageEmotion:    datatypes.NewJSONType(req.ImageEmotion),
		Timestamp:       now,
	}
	if err := s.sessions.Append(ctx, record); err != nil {
		return nil, err
	}

	s.log.Debug("chat turn processed",
		"user_id", userID,
		"session_id", sessionID,
		"dominant_emotion", record.DominantEmotion,
		"has_image_emotion", req.ImageEmotion != nil,
	)

	return &ChatResponse{
		Response:        reply,
		Emotions:        textDist,
		DominantEmotion: record.DominantEmotion,
		SessionID:       sessionID,
	}, nil
}
