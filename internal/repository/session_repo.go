package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"kindspeak-server/internal/model"
)

// SessionRepository 会话数据访问层
// 负责会话相关的所有数据库操作
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建 SessionRepository 实例
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create 创建新会话
// 参数:
//   - ctx: 上下文
//   - session: 会话对象，调用方负责填充 ID
//
// 返回:
//   - error: 数据库错误
func (r *SessionRepository) Create(ctx context.Context, session *model.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID 根据 ID 获取会话
// 参数:
//   - ctx: 上下文
//   - id: 会话ID
//
// 返回:
//   - *model.ChatSession: 会话对象，未找到返回 nil
//   - error: 数据库错误
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// ListByUser 获取用户的所有会话
// 按最近更新时间倒序
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_updated DESC").
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// Touch 原子地将消息数加一并刷新最近更新时间
// 使用 SQL 表达式自增，避免并发追加时读改写丢失计数
// 参数:
//   - ctx: 上下文
//   - id: 会话ID
//   - at: 最近更新时间
//
// 返回:
//   - int64: 受影响的行数，0 表示会话已不存在
//   - error: 数据库错误
func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"message_count": gorm.Expr("message_count + ?", 1),
			"last_updated":  at,
		})
	return result.RowsAffected, result.Error
}

// Delete 删除会话记录（不包括消息）
// 返回受影响的行数
func (r *SessionRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ChatSession{})
	return result.RowsAffected, result.Error
}

// CountByUser 统计用户的会话数量
func (r *SessionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
