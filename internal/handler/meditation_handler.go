package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"kindspeak-server/internal/middleware"
	"kindspeak-server/internal/service"
	"kindspeak-server/pkg/response"
)

// MeditationHandler 冥想请求处理器
type MeditationHandler struct {
	meditationService *service.MeditationService
}

// NewMeditationHandler 创建 MeditationHandler 实例
func NewMeditationHandler(meditationService *service.MeditationService) *MeditationHandler {
	return &MeditationHandler{meditationService: meditationService}
}

// StartMeditationRequest 开始冥想请求
// Duration 为分钟数，省略时为 5
type StartMeditationRequest struct {
	Duration int `json:"duration"`
}

// Start 开始冥想
// @Summary 开始冥想
// @Tags 冥想
// @Security Bearer
// @Accept json
// @Produce json
// @Param body body StartMeditationRequest false "时长"
// @Success 200 {object} response.Response{data=model.MeditationSession}
// @Router /api/v1/meditation/start [post]
func (h *MeditationHandler) Start(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	var req StartMeditationRequest
	// 请求体可以为空
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "请求参数错误")
		return
	}

	session, err := h.meditationService.Start(c.Request.Context(), userID, req.Duration)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuration) {
			response.InvalidDuration(c)
			return
		}
		_ = c.Error(err)
		response.InternalError(c, "开始冥想失败")
		return
	}

	response.SuccessWithMessage(c, "冥想已开始", session)
}

// Complete 完成冥想
// @Summary 完成冥想
// @Tags 冥想
// @Security Bearer
// @Produce json
// @Param id path string true "冥想记录ID"
// @Success 200 {object} response.Response{data=model.MeditationSession}
// @Router /api/v1/meditation/complete/{id} [post]
func (h *MeditationHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	session, err := h.meditationService.Complete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMeditationNotFound) {
			response.MeditationNotFound(c)
			return
		}
		_ = c.Error(err)
		response.InternalError(c, "完成冥想失败")
		return
	}

	response.SuccessWithMessage(c, "冥想已完成", session)
}
