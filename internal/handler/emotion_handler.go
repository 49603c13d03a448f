package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"kindspeak-server/internal/emotion"
	"kindspeak-server/internal/middleware"
	"kindspeak-server/internal/service"
	"kindspeak-server/pkg/response"
)

// EmotionHandler 表情识别请求处理器
type EmotionHandler struct {
	emotionService *service.EmotionService
}

// NewEmotionHandler 创建 EmotionHandler 实例
func NewEmotionHandler(emotionService *service.EmotionService) *EmotionHandler {
	return &EmotionHandler{emotionService: emotionService}
}

// AnalyzeImageRequest 图像分析请求
// Image 为 base64 或 data URL
type AnalyzeImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// AnalyzeImage 识别图像中的面部表情
// @Summary 表情识别
// @Description 返回的结果可由客户端缓存，并在随后的聊天请求中作为 image_emotion 回传
// @Tags 情绪
// @Security Bearer
// @Accept json
// @Produce json
// @Param body body AnalyzeImageRequest true "图像"
// @Success 200 {object} response.Response{data=service.AnalyzeImageResponse}
// @Router /api/v1/emotions/analyze-image [post]
func (h *EmotionHandler) AnalyzeImage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	var req AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "缺少图像数据")
		return
	}

	result, err := h.emotionService.AnalyzeImage(c.Request.Context(), userID, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, emotion.ErrInvalidImage):
			response.InvalidImage(c)
		case errors.Is(err, service.ErrRateLimited):
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
		default:
			response.InternalError(c, "表情识别失败")
		}
		return
	}

	response.Success(c, result)
}
