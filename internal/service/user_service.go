package service

import (
	"context"
	"math"

	"kindspeak-server/internal/model"
	"kindspeak-server/internal/repository"
)

const (
	// moodWindow 计算平均心情时读取的最近对话数
	moodWindow = 20
	// defaultMood 没有情绪记录时的平均心情
	defaultMood = 7.0
)

// UserStats 用户统计
type UserStats struct {
	TotalChats      int64   `json:"total_chats"`
	TotalSessions   int64   `json:"total_sessions"`
	MeditationCount int64   `json:"meditation_count"`
	AverageMood     float64 `json:"average_mood"` // 1-10，保留一位小数
}

// UserService 用户服务
// 处理用户资料和统计的查询
type UserService struct {
	userRepo       *repository.UserRepository
	sessionRepo    *repository.SessionRepository
	messageRepo    *repository.MessageRepository
	meditationRepo *repository.MeditationRepository
}

// NewUserService 创建 UserService 实例
func NewUserService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	meditationRepo *repository.MeditationRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		messageRepo:    messageRepo,
		meditationRepo: meditationRepo,
	}
}

// GetProfile 获取用户资料
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//
// 返回:
//   - *model.User: 用户信息
//   - error: 用户不存在返回 ErrUserNotFound
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, persistenceError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetStats 统计对话轮数、会话数、完成的冥想次数，以及最近 20 轮对话的平均心情
func (s *UserService) GetStats(ctx context.Context, userID int64) (*UserStats, error) {
	chats, err := s.messageRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError("count messages", err)
	}
	sessions, err := s.sessionRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError("count sessions", err)
	}
	meditations, err := s.meditationRepo.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError("count meditations", err)
	}
	recent, err := s.messageRepo.ListRecentByUser(ctx, userID, moodWindow)
	if err != nil {
		return nil, persistenceError("list recent messages", err)
	}

	return &UserStats{
		TotalChats:      chats,
		TotalSessions:   sessions,
		MeditationCount: meditations,
		AverageMood:     averageMood(recent),
	}, nil
}

// averageMood 对每条记录中的每个文本情绪打分后取平均
func averageMood(messages []model.ConversationMessage) float64 {
	var sum float64
	var n int
	for _, m := range messages {
		for _, r := range m.Emotions.Data() {
			sum += moodScore(r.Emotion)
			n++
		}
	}
	if n == 0 {
		return defaultMood
	}
	return math.Round(sum/float64(n)*10) / 10
}

func moodScore(emotion string) float64 {
	switch emotion {
	case "joy", "happiness":
		return 8
	case "sadness", "anger":
		return 3
	default:
		return 6
	}
}
