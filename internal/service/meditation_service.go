package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"kindspeak-server/internal/logger"
	"kindspeak-server/internal/model"
	"kindspeak-server/internal/repository"
	"kindspeak-server/pkg/util"
)

// 冥想时长（分钟）
const (
	DefaultMeditationMinutes = 5
	MaxMeditationMinutes     = 180
)

var (
	// ErrMeditationNotFound 冥想记录不存在或不属于当前用户
	ErrMeditationNotFound = errors.New("冥想记录不存在")
	// ErrInvalidDuration 冥想时长超出范围
	ErrInvalidDuration = errors.New("冥想时长无效")
)

// MeditationService 冥想记录服务
type MeditationService struct {
	meditationRepo *repository.MeditationRepository
	log            *logger.Logger
	now            func() time.Time
}

// NewMeditationService 创建 MeditationService 实例
func NewMeditationService(meditationRepo *repository.MeditationRepository, log *logger.Logger) *MeditationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &MeditationService{
		meditationRepo: meditationRepo,
		log:            log.With("service", "MeditationService"),
		now:            time.Now,
	}
}

// Start 开始一次冥想
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户
//   - minutes: 计划时长，0 表示使用默认的 5 分钟
//
// 返回:
//   - *model.MeditationSession: 新建的记录
//   - error: ErrInvalidDuration 或 ErrPersistence
func (s *MeditationService) Start(ctx context.Context, userID int64, minutes int) (*model.MeditationSession, error) {
	if minutes == 0 {
		minutes = DefaultMeditationMinutes
	}
	if minutes < 0 || minutes > MaxMeditationMinutes {
		return nil, ErrInvalidDuration
	}

	session := &model.MeditationSession{
		ID:        util.NewID(),
		UserID:    userID,
		Duration:  minutes,
		StartedAt: s.now(),
	}
	if err := s.meditationRepo.Create(ctx, session); err != nil {
		return nil, persistenceError("create meditation", err)
	}
	s.log.Info("meditation started", "user_id", userID, "session_id", session.ID, "duration", minutes)
	return session, nil
}

// Complete 完成一次冥想
// 重复完成不会改变第一次的完成时间
func (s *MeditationService) Complete(ctx context.Context, userID int64, sessionID string) (*model.MeditationSession, error) {
	session, err := s.owned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return session, nil
	}

	at := s.now()
	affected, err := s.meditationRepo.MarkCompleted(ctx, session.ID, at)
	if err != nil {
		return nil, persistenceError("complete meditation", err)
	}
	if affected == 0 {
		// 并发完成，返回已保存的状态
		return s.owned(ctx, sessionID, userID)
	}

	session.Completed = true
	session.CompletedAt = &at
	return session, nil
}

// owned 加载冥想记录并校验归属，归属不符与不存在返回同一个错误
func (s *MeditationService) owned(ctx context.Context, sessionID string, userID int64) (*model.MeditationSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMeditationNotFound
	}
	session, err := s.meditationRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, persistenceError("get meditation", err)
	}
	if session == nil || session.UserID != userID {
		return nil, ErrMeditationNotFound
	}
	return session, nil
}
