package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"kindspeak-server/internal/cache"
	"kindspeak-server/internal/logger"
	"kindspeak-server/internal/model"
	"kindspeak-server/internal/repository"
	"kindspeak-server/pkg/jwt"
	"kindspeak-server/pkg/util"
)

// 认证相关错误
var (
	ErrUserExists    = errors.New("用户名已存在")
	ErrEmailExists   = errors.New("邮箱已被注册")
	ErrUserNotFound  = errors.New("用户不存在")
	ErrPasswordWrong = errors.New("密码错误")
	ErrUserDisabled  = errors.New("用户已被禁用")
)

// AuthService 认证服务
// 处理注册、登录、游客登录、刷新和登出
type AuthService struct {
	userRepo   *repository.UserRepository
	cache      *cache.RedisCache
	jwtService *jwt.JWTService
	log        *logger.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	userRepo *repository.UserRepository,
	cache *cache.RedisCache,
	jwtService *jwt.JWTService,
	log *logger.Logger,
) *AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		cache:      cache,
		jwtService: jwtService,
		log:        log.With("service", "AuthService"),
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
	Name     string `json:"name" binding:"max=100"`
}

// LoginRequest 登录请求，Username 也可以填写邮箱
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录、注册、游客登录的响应
type TokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"` // 秒
	User         *model.User `json:"user"`
}

// RefreshTokenResponse 刷新 Token 响应
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register 用户注册，成功后直接签发 Token
// 参数:
//   - ctx: 上下文
//   - req: 注册请求
//
// 返回:
//   - *TokenResponse: Token 和用户信息
//   - error: ErrUserExists、ErrEmailExists 或存储错误
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, persistenceError("check username", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	if email != "" {
		exists, err = s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, persistenceError("check email", err)
		}
		if exists {
			return nil, ErrEmailExists
		}
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = username
	}
	user := &model.User{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        util.StringPtr(email),
		Name:         name,
		Status:       1,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, persistenceError("create user", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login 用户名或邮箱登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	identifier := strings.TrimSpace(req.Username)

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, persistenceError("get user", err)
	}
	if user == nil || user.IsGuest {
		return nil, ErrUserNotFound
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrPasswordWrong
	}
	if user.Status != 1 {
		return nil, ErrUserDisabled
	}

	return s.issue(user)
}

// Guest 创建游客账号并登录
func (s *AuthService) Guest(ctx context.Context) (*TokenResponse, error) {
	username := util.GuestUsername()
	user := &model.User{
		Username: username,
		Name:     "Guest",
		IsGuest:  true,
		Status:   1,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, persistenceError("create guest", err)
	}

	s.log.Info("guest created", "user_id", user.ID)
	return s.issue(user)
}

// RefreshToken 使用 Refresh Token 换取新的 Access Token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*RefreshTokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// 确认用户仍然存在且未被禁用
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, persistenceError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status != 1 {
		return nil, ErrUserDisabled
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username, user.IsGuest)
	if err != nil {
		return nil, err
	}
	return &RefreshTokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.GetAccessExpire().Seconds()),
	}, nil
}

// Logout 将当前 Token 加入黑名单
// 参数:
//   - ctx: 上下文
//   - tokenHash: Token 的哈希值
//   - expireAt: Token 的过期时间
func (s *AuthService) Logout(ctx context.Context, tokenHash string, expireAt time.Time) error {
	return s.cache.BlacklistToken(ctx, tokenHash, expireAt)
}

func (s *AuthService) issue(user *model.User) (*TokenResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username, user.IsGuest)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username, user.IsGuest)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.GetAccessExpire().Seconds()),
		User:         user,
	}, nil
}
