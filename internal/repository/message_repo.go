package repository

import (
	"context"

	"gorm.io/gorm"

	"kindspeak-server/internal/model"
)

// MessageRepository 对话记录数据访问层
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 写入一条对话记录
// 参数:
//   - ctx: 上下文
//   - message: 对话记录，调用方负责填充 ID 和 Timestamp
//
// 返回:
//   - error: 数据库错误
func (r *MessageRepository) Create(ctx context.Context, message *model.ConversationMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListBySession 获取会话的所有对话记录
// 按时间正序排列（最早的在前）
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string) ([]model.ConversationMessage, error) {
	var messages []model.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// ListRecentByUser 获取用户最近的对话记录
// 按时间倒序排列（最新的在前），最多 limit 条
func (r *MessageRepository) ListRecentByUser(ctx context.Context, userID int64, limit int) ([]model.ConversationMessage, error) {
	var messages []model.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// CountBySession 统计会话的对话记录数
func (r *MessageRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ConversationMessage{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// CountByUser 统计用户的对话记录数
func (r *MessageRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ConversationMessage{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteBySessionID 删除会话的所有对话记录
// 参数:
//   - ctx: 上下文
//   - sessionID: 会话ID
//
// 返回:
//   - error: 数据库错误
func (r *MessageRepository) DeleteBySessionID(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.ConversationMessage{}).Error
}
