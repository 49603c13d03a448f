package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"kindspeak-server/internal/middleware"
	"kindspeak-server/internal/service"
	"kindspeak-server/pkg/response"
)

// SessionHandler 会话请求处理器
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler 创建 SessionHandler 实例
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ListSessions 获取会话列表
// @Summary 获取会话列表
// @Description 按最近更新时间倒序返回当前用户的会话
// @Tags 会话
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Response{data=[]model.ChatSession}
// @Router /api/v1/chat/sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c, "获取会话列表失败")
		return
	}

	response.Success(c, gin.H{"sessions": sessions})
}

// GetSession 获取会话详情
// @Summary 获取会话详情
// @Tags 会话
// @Security Bearer
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} response.Response{data=model.ChatSession}
// @Router /api/v1/chat/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err, "获取会话失败")
		return
	}

	response.Success(c, session)
}

// GetMessages 获取会话的消息列表
// @Summary 获取消息列表
// @Description 按时间正序返回会话中的全部消息
// @Tags 会话
// @Security Bearer
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} response.Response{data=[]model.ConversationMessage}
// @Router /api/v1/chat/sessions/{id}/messages [get]
func (h *SessionHandler) GetMessages(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	sessionID := c.Param("id")
	messages, err := h.sessionService.ListMessages(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.fail(c, err, "获取消息列表失败")
		return
	}

	response.Success(c, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// DeleteSession 删除会话
// @Summary 删除会话
// @Description 删除会话及其全部消息
// @Tags 会话
// @Security Bearer
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} response.Response
// @Router /api/v1/chat/sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.fail(c, err, "删除会话失败")
		return
	}

	response.SuccessWithMessage(c, "会话已删除", nil)
}

func (h *SessionHandler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrSessionNotFound) {
		response.SessionNotFound(c)
		return
	}
	_ = c.Error(err)
	response.InternalError(c, msg)
}
