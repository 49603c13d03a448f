package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"kindspeak-server/internal/middleware"
	"kindspeak-server/internal/service"
	"kindspeak-server/pkg/response"
)

// ChatHandler 对话请求处理器
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat 发送一条消息并获取回复
// @Summary 发送消息
// @Description 识别文本情绪，结合最近的表情样本生成回复，并写入会话
// @Tags 对话
// @Security Bearer
// @Accept json
// @Produce json
// @Param body body service.ChatRequest true "消息"
// @Success 200 {object} response.Response{data=service.ChatResponse}
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	result, err := h.chatService.ProcessMessage(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			response.EmptyMessage(c)
		case errors.Is(err, service.ErrSessionNotFound):
			response.SessionNotFound(c)
		default:
			_ = c.Error(err)
			response.InternalError(c, "消息处理失败")
		}
		return
	}

	response.Success(c, result)
}
