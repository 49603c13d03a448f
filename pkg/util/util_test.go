package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"I feel anxious about my exam tomorrow", "I feel anxious about..."},
		{"hello there", "hello there"},
		{"one two three four", "one two three four"},
		{"one two three four five", "one two three four..."},
		{"  spaced   out\twords  here ", "spaced out words here"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveTitle(tt.in), tt.in)
	}
}

func TestDeriveTitle_LongWords(t *testing.T) {
	word := strings.Repeat("a", 60)
	title := DeriveTitle(strings.Join([]string{word, word, word, word, word}, " "))

	assert.Len(t, []rune(title), 100)
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.True(t, strings.HasPrefix(title, word+" "))

	// 单个超长的中文词按字符截断
	zh := strings.Repeat("静", 150)
	assert.Equal(t, strings.Repeat("静", 97)+"...", DeriveTitle(zh))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	assert.NoError(t, err)
	assert.True(t, CheckPassword("s3cret!", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("s3cret!", ""))
}

func TestGuestUsername(t *testing.T) {
	name := GuestUsername()
	assert.True(t, strings.HasPrefix(name, "guest_"))
	assert.Len(t, name, len("guest_")+8)
	assert.NotEqual(t, name, GuestUsername())
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abcd...", TruncateString("abcdefghij", 7))
	assert.Equal(t, "你好...", TruncateString("你好世界你好", 5))
}
