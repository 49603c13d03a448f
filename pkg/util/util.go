// Package util 提供通用工具函数
package util

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	titleWords  = 4   // 会话标题最多保留的词数
	titleMaxLen = 100 // 会话标题最多保留的字符数
)

// HashPassword 使用 bcrypt 哈希密码
// 参数:
//   - password: 明文密码
//
// 返回:
//   - string: 密码哈希值
//   - error: 哈希错误
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 验证密码是否匹配
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewID 生成带连字符的 UUID v4，用作会话和消息主键
func NewID() string {
	return uuid.NewString()
}

// GuestUsername 生成游客用户名，例如 guest_3f9a1c2b
func GuestUsername() string {
	return "guest_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// DeriveTitle 由第一条消息生成会话标题
// 取前 4 个词（按空白切分），超过 4 个词时追加 "..."
// 结果超过 100 个字符时截断
// 参数:
//   - message: 第一条消息
//
// 返回:
//   - string: 会话标题
func DeriveTitle(message string) string {
	words := strings.Fields(message)
	title := strings.Join(words, " ")
	if len(words) > titleWords {
		title = strings.Join(words[:titleWords], " ") + "..."
	}
	return TruncateString(title, titleMaxLen)
}

// TruncateString 按字符截断字符串，超出时添加 "..."
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// StringPtr 返回字符串的指针
// 空字符串返回 nil，用于可选字段
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
