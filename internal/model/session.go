package model

import (
	"time"
)

// ChatSession 聊天会话模型
// 对应数据库表 chat_sessions
// 会话只有存在和已删除两种状态，删除即移除记录
type ChatSession struct {
	// ID 会话唯一标识（UUID）
	ID string `gorm:"primaryKey;size:36" json:"session_id"`

	// UserID 所属用户ID，创建后不可变
	UserID int64 `gorm:"index;not null" json:"user_id"`

	// Title 会话标题，取自第一条消息的前几个词
	Title string `gorm:"size:255;not null" json:"title"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// LastUpdated 最近一次追加消息的时间，用于排序
	LastUpdated time.Time `gorm:"index" json:"last_updated"`

	// MessageCount 会话内的消息数，只通过原子自增更新
	MessageCount int64 `gorm:"not null;default:0" json:"message_count"`
}

// TableName 指定表名
func (ChatSession) TableName() string {
	return "chat_sessions"
}
