package model

import (
	"time"

	"gorm.io/datatypes"

	"kindspeak-server/internal/emotion"
)

// ConversationMessage 对话记录
// 对应数据库表 conversation_messages
// 每条记录保存一轮用户消息与回复，以及当时识别到的情绪
type ConversationMessage struct {
	// ID 记录唯一标识（UUID）
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// UserID 发送者
	UserID int64 `gorm:"index;not null" json:"user_id"`

	// SessionID 所属会话
	SessionID string `gorm:"size:36;index;not null" json:"session_id"`

	// Message 用户消息
	Message string `gorm:"type:text;not null" json:"message"`

	// Response 回复内容
	Response string `gorm:"type:text;not null" json:"response"`

	// Emotions 文本情绪分布，JSON 存储
	Emotions datatypes.JSONType[emotion.Distribution] `json:"emotions"`

	// DominantEmotion 文本主导情绪
	DominantEmotion string `gorm:"size:50;not null;default:neutral" json:"dominant_emotion"`

	// ImageEmotion 请求附带的图像情绪样本，可能为空
	ImageEmotion datatypes.JSONType[*emotion.ImageSample] `json:"image_emotion"`

	// Timestamp 记录时间，会话内按此排序
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}

// TableName 指定表名
func (ConversationMessage) TableName() string {
	return "conversation_messages"
}
