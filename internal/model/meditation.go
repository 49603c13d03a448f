package model

import (
	"time"
)

// MeditationSession 冥想记录模型
// 对应数据库表 meditation_sessions
// 状态只能从未完成变为已完成
type MeditationSession struct {
	// ID 记录唯一标识（UUID）
	ID string `gorm:"primaryKey;size:36" json:"session_id"`

	// UserID 所属用户ID
	UserID int64 `gorm:"index;not null" json:"user_id"`

	// Duration 计划时长（分钟）
	Duration int `gorm:"not null" json:"duration"`

	StartedAt time.Time `gorm:"not null" json:"started_at"`

	// Completed 是否已完成
	Completed bool `gorm:"index;not null;default:false" json:"completed"`

	// CompletedAt 完成时间，未完成为 nil
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (MeditationSession) TableName() string {
	return "meditation_sessions"
}
