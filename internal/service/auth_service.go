package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/block-battle/internal/models"
	"github.com/wfunc/block-battle/internal/repository"
	"github.com/wfunc/block-battle/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserExists         = errors.New("用户名已存在")
	ErrUserBanned         = errors.New("用户已被封禁")
	ErrInvalidToken       = errors.New("无效的令牌")
)

// authService 认证服务实现
type authService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	authRepo   repository.UserAuthRepository
	jwtManager *utils.JWTManager
	log        *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	authRepo repository.UserAuthRepository,
	jwtManager *utils.JWTManager,
	log *zap.Logger,
) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		authRepo:   authRepo,
		jwtManager: jwtManager,
		log:        log,
	}
}

// Register 用户注册
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if user, _ := s.userRepo.FindByUsername(ctx, req.Username); user != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Status:   "active",
	}

	// 用户和认证信息一起建，谁失败都整体回滚
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		auth := &models.UserAuth{
			UserID:   user.ID,
			Password: hashedPassword,
		}
		return tx.Create(auth).Error
	})
	if err != nil {
		s.log.Error("注册失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	_ = s.userRepo.UpdateLastLogin(ctx, user.ID, req.IP)

	s.log.Info("用户注册成功",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return s.buildAuthResponse(user)
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil || user == nil {
		s.log.Warn("登录失败：用户不存在", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	if user.Status == "banned" {
		return nil, ErrUserBanned
	}

	auth, err := s.authRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		s.log.Error("获取认证信息失败", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(req.Password, auth.Password)
	if err != nil || !valid {
		s.log.Warn("登录失败：密码错误", zap.Uint("user_id", user.ID))
		_ = s.authRepo.UpdateLoginAttempts(ctx, user.ID, auth.LoginAttempts+1)
		return nil, ErrInvalidCredentials
	}

	_ = s.authRepo.ResetLoginAttempts(ctx, user.ID)
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID, req.IP)

	s.log.Info("用户登录成功",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return s.buildAuthResponse(user)
}

// RefreshToken 刷新访问令牌
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.CanLogin() {
		return nil, ErrUserBanned
	}

	return s.buildAuthResponse(user)
}

// ValidateToken 验证访问令牌
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != "access" {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.SessionID,
	}, nil
}

// buildAuthResponse 为用户签发一对新令牌
func (s *authService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	sessionID, err := utils.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, sessionID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, sessionID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}
