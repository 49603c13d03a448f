// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kindspeak-server/internal/middleware"
	"kindspeak-server/internal/service"
	"kindspeak-server/pkg/response"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register 用户注册
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.RegisterRequest true "注册信息"
// @Success 201 {object} response.Response{data=service.TokenResponse}
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			response.UserExists(c)
		case errors.Is(err, service.ErrEmailExists):
			response.ErrorWithCode(c, http.StatusConflict, response.CodeUserExists, "邮箱已被注册")
		default:
			response.InternalError(c, "注册失败")
		}
		return
	}

	response.Created(c, result)
}

// Login 用户登录
// @Summary 用户登录
// @Description 支持用户名或邮箱登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.LoginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.TokenResponse}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrPasswordWrong):
			// 不区分用户不存在和密码错误
			response.PasswordWrong(c)
		case errors.Is(err, service.ErrUserDisabled):
			response.Forbidden(c, "账号已被禁用")
		default:
			response.InternalError(c, "登录失败")
		}
		return
	}

	response.Success(c, result)
}

// Guest 游客登录
// @Summary 游客登录
// @Description 创建临时游客账号并返回 Token
// @Tags 认证
// @Produce json
// @Success 201 {object} response.Response{data=service.TokenResponse}
// @Router /api/v1/auth/guest [post]
func (h *AuthHandler) Guest(c *gin.Context) {
	result, err := h.authService.Guest(c.Request.Context())
	if err != nil {
		response.InternalError(c, "创建游客失败")
		return
	}
	response.Created(c, result)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} response.Response{data=service.RefreshTokenResponse}
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrPersistence) {
			response.InternalError(c, "刷新失败")
			return
		}
		response.Unauthorized(c, "Refresh Token 无效或已过期")
		return
	}

	response.Success(c, result)
}

// Logout 用户登出
// @Summary 用户登出
// @Description 将当前 Token 加入黑名单
// @Tags 认证
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)
	if token == "" {
		response.Unauthorized(c, "请先登录")
		return
	}
	expireAt, ok := c.Get(middleware.ContextTokenExp)
	if !ok {
		response.BadRequest(c, "无法获取 Token 过期时间")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), middleware.HashToken(token), expireAt.(time.Time)); err != nil {
		response.InternalError(c, "登出失败")
		return
	}

	response.SuccessWithMessage(c, "登出成功", nil)
}
