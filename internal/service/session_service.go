package service

import (
	"context"
	"strings"
	"time"

	"kindspeak-server/internal/logger"
	"kindspeak-server/internal/model"
	"kindspeak-server/internal/repository"
	"kindspeak-server/pkg/util"
)

// SessionService 会话存储
// 会话只有 ACTIVE 和 DELETED 两种状态，删除后记录被移除
// 所有读写都先校验归属，归属不符与不存在返回同一个 ErrSessionNotFound
type SessionService struct {
	sessionRepo *repository.SessionRepository
	messageRepo *repository.MessageRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	log *logger.Logger,
) *SessionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		log:         log.With("service", "SessionService"),
		now:         time.Now,
	}
}

// StartOrValidate 开始新会话或校验已有会话
// 参数:
//   - ctx: 上下文
//   - userID: 当前用户
//   - sessionID: 已有会话 ID，为空表示新建
//   - firstMessage: 新建时用于生成标题
//
// 返回:
//   - string: 会话 ID
//   - error: ErrSessionNotFound 或 ErrPersistence
func (s *SessionService) StartOrValidate(ctx context.Context, userID int64, sessionID, firstMessage string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID != "" {
		if _, err := s.owned(ctx, sessionID, userID); err != nil {
			return "", err
		}
		return sessionID, nil
	}

	now := s.now()
	session := &model.ChatSession{
		ID:          util.NewID(),
		UserID:      userID,
		Title:       util.DeriveTitle(firstMessage),
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", persistenceError("create session", err)
	}
	s.log.Info("session created", "user_id", userID, "session_id", session.ID)
	return session.ID, nil
}

// Append 写入一条对话记录并原子地递增会话消息数
// 两步之间没有事务：记录写入后会话被并发删除时，记录成为孤儿，返回 ErrSessionNotFound
func (s *SessionService) Append(ctx context.Context, msg *model.ConversationMessage) error {
	if msg.ID == "" {
		msg.ID = util.NewID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return persistenceError("create message", err)
	}

	affected, err := s.sessionRepo.Touch(ctx, msg.SessionID, msg.Timestamp)
	if err != nil {
		return persistenceError("increment message count", err)
	}
	if affected == 0 {
		s.log.Warn("message appended to missing session", "session_id", msg.SessionID, "message_id", msg.ID)
		return ErrSessionNotFound
	}
	return nil
}

// GetSession 获取当前用户的单个会话
func (s *SessionService) GetSession(ctx context.Context, sessionID string, userID int64) (*model.ChatSession, error) {
	return s.owned(ctx, sessionID, userID)
}

// ListSessions 按最近更新时间倒序列出用户的会话
func (s *SessionService) ListSessions(ctx context.Context, userID int64) ([]model.ChatSession, error) {
	sessions, err := s.sessionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError("list sessions", err)
	}
	if sessions == nil {
		sessions = []model.ChatSession{}
	}
	return sessions, nil
}

// ListMessages 按时间正序列出会话的对话记录
func (s *SessionService) ListMessages(ctx context.Context, sessionID string, userID int64) ([]model.ConversationMessage, error) {
	if _, err := s.owned(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, persistenceError("list messages", err)
	}
	if messages == nil {
		messages = []model.ConversationMessage{}
	}
	return messages, nil
}

// Delete 级联删除会话
// 先删除会话记录，再删除其所有对话记录
// 第二步失败时会遗留孤儿记录，但不会出现删了一半的会话
func (s *SessionService) Delete(ctx context.Context, sessionID string, userID int64) error {
	if _, err := s.owned(ctx, sessionID, userID); err != nil {
		return err
	}

	affected, err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return persistenceError("delete session", err)
	}
	if affected == 0 {
		// 并发删除
		return ErrSessionNotFound
	}

	if err := s.messageRepo.DeleteBySessionID(ctx, sessionID); err != nil {
		s.log.Error("session deleted but messages were left behind", "session_id", sessionID, "error", err)
		return persistenceError("delete messages", err)
	}

	s.log.Info("session deleted", "user_id", userID, "session_id", sessionID)
	return nil
}

// owned 加载会话并校验归属
func (s *SessionService) owned(ctx context.Context, sessionID string, userID int64) (*model.ChatSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, persistenceError("get session", err)
	}
	if session == nil || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
