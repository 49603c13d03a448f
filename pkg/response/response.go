// Package response 提供统一的 HTTP 响应格式
// 所有 API 都使用相同的响应结构，便于前端处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// code: 业务状态码（0 表示成功）
// message: 提示信息
// data: 响应数据
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 业务状态码定义
const (
	CodeSuccess         = 0    // 成功
	CodeBadRequest      = 1000 // 请求参数错误
	CodeUnauthorized    = 1001 // 未授权
	CodeForbidden       = 1002 // 禁止访问
	CodeNotFound        = 1003 // 资源不存在
	CodeInternalError   = 1004 // 服务器内部错误
	CodeTooManyRequests = 1005 // 请求过于频繁
	CodeUserExists      = 1101 // 用户已存在
	CodeUserNotFound    = 1102 // 用户不存在
	CodePasswordWrong   = 1103 // 密码错误
	CodeSessionNotFound = 1301 // 会话不存在
	CodeEmptyMessage    = 1302 // 消息为空
	CodeInvalidImage    = 1401 // 图像无法解析

	CodeMeditationNotFound = 1501 // 冥想记录不存在
	CodeInvalidDuration    = 1502 // 冥想时长无效
)

func write(c *gin.Context, httpCode, bizCode int, message string, data interface{}) {
	c.JSON(httpCode, Response{Code: bizCode, Message: message, Data: data})
}

// Success 返回成功响应
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，可以是任意类型
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, CodeSuccess, "success", data)
}

// SuccessWithMessage 返回成功响应（带自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, CodeSuccess, message, data)
}

// Created 返回 201
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, CodeSuccess, "created", data)
}

// ErrorWithCode 返回错误响应（带业务状态码）
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - bizCode: 业务状态码
//   - message: 错误信息
func ErrorWithCode(c *gin.Context, httpCode, bizCode int, message string) {
	write(c, httpCode, bizCode, message, nil)
}

func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusForbidden, CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusNotFound, CodeNotFound, message)
}

// InternalError 返回 500，message 不应包含内部错误细节
func InternalError(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusInternalServerError, CodeInternalError, message)
}

func TooManyRequests(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusTooManyRequests, CodeTooManyRequests, message)
}

func UserExists(c *gin.Context) {
	ErrorWithCode(c, http.StatusConflict, CodeUserExists, "用户名或邮箱已存在")
}

func UserNotFound(c *gin.Context) {
	ErrorWithCode(c, http.StatusNotFound, CodeUserNotFound, "用户不存在")
}

func PasswordWrong(c *gin.Context) {
	ErrorWithCode(c, http.StatusUnauthorized, CodePasswordWrong, "用户名或密码错误")
}

// SessionNotFound 会话不存在或不属于当前用户
func SessionNotFound(c *gin.Context) {
	ErrorWithCode(c, http.StatusNotFound, CodeSessionNotFound, "会话不存在")
}

func EmptyMessage(c *gin.Context) {
	ErrorWithCode(c, http.StatusBadRequest, CodeEmptyMessage, "消息不能为空")
}

func InvalidImage(c *gin.Context) {
	ErrorWithCode(c, http.StatusBadRequest, CodeInvalidImage, "图像无法解析")
}

func MeditationNotFound(c *gin.Context) {
	ErrorWithCode(c, http.StatusNotFound, CodeMeditationNotFound, "冥想记录不存在")
}

func InvalidDuration(c *gin.Context) {
	ErrorWithCode(c, http.StatusBadRequest, CodeInvalidDuration, "冥想时长需在 1 到 180 分钟之间")
}
