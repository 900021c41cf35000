package service

import (
	"context"

	"github.com/wfunc/block-battle/internal/game"
	"github.com/wfunc/block-battle/internal/models"
)

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// RecordService 对战记录服务接口
// RecordGameResult与房间注册表的持久化回调同签名，可直接接上
type RecordService interface {
	// RecordGameResult 把一局的结果落库：两条对战记录加双方战绩累加
	RecordGameResult(ctx context.Context, records []game.ResultRecord) error

	GetPlayerRecords(ctx context.Context, userID uint, page, pageSize int) ([]*models.GameRecord, int64, error)
	GetPlayerStats(ctx context.Context, userID uint) (*models.PlayerStats, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*models.PlayerStats, error)
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
	Avatar          string `json:"avatar"`
	IP              string `json:"-"` // 客户端IP，由handler设置
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// TokenClaims 验证通过后的令牌信息
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
}
