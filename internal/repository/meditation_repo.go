package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"kindspeak-server/internal/model"
)

// MeditationRepository 冥想记录数据访问层
type MeditationRepository struct {
	db *gorm.DB
}

// NewMeditationRepository 创建 MeditationRepository 实例
func NewMeditationRepository(db *gorm.DB) *MeditationRepository {
	return &MeditationRepository{db: db}
}

// Create 创建冥想记录
func (r *MeditationRepository) Create(ctx context.Context, session *model.MeditationSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID 根据 ID 获取冥想记录，未找到返回 nil
func (r *MeditationRepository) GetByID(ctx context.Context, id string) (*model.MeditationSession, error) {
	var session model.MeditationSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// MarkCompleted 将未完成的记录标记为已完成
// 参数:
//   - ctx: 上下文
//   - id: 记录ID
//   - at: 完成时间
//
// 返回:
//   - int64: 受影响的行数，已完成或不存在时为 0
//   - error: 数据库错误
func (r *MeditationRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.MeditationSession{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		})
	return result.RowsAffected, result.Error
}

// CountCompletedByUser 统计用户已完成的冥想次数
func (r *MeditationRepository) CountCompletedByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MeditationSession{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}
