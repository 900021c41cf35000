package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/block-battle/internal/game"
	"github.com/wfunc/block-battle/internal/middleware"
	"github.com/wfunc/block-battle/internal/service"
	ws "github.com/wfunc/block-battle/internal/websocket"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	authHandler    *AuthHandler
	recordHandler  *RecordHandler
	roomHandler    *RoomHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(
	db *gorm.DB,
	authService service.AuthService,
	recordService service.RecordService,
	registry *game.Registry,
	hub *ws.Hub,
	log *zap.Logger,
) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	router := &Router{
		engine:         engine,
		db:             db,
		authHandler:    NewAuthHandler(authService),
		recordHandler:  NewRecordHandler(recordService),
		roomHandler:    NewRoomHandler(registry, hub),
		wsHandler:      NewWebSocketHandler(hub, log),
		authMiddleware: middleware.NewAuthMiddleware(authService),
		log:            log,
	}

	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)
		}

		// 大厅查询
		v1.GET("/rooms", r.roomHandler.ListRooms)
		v1.GET("/online", r.roomHandler.OnlineCount)

		// 玩家战绩（公开查询）
		players := v1.Group("/players")
		{
			players.GET("/:id/records", r.recordHandler.GetPlayerRecords)
			players.GET("/:id/stats", r.recordHandler.GetPlayerStats)
		}

		// 排行榜
		v1.GET("/leaderboard", r.recordHandler.GetLeaderboard)

		// 当前用户（需要认证）
		me := v1.Group("/me")
		me.Use(r.authMiddleware.RequireAuth())
		{
			me.GET("/records", r.recordHandler.GetMyRecords)
			me.GET("/stats", r.recordHandler.GetMyStats)
		}
	}

	// WebSocket路由：游客可连，带令牌则绑定账号
	r.engine.GET("/ws/game", r.authMiddleware.OptionalAuth(), r.wsHandler.GameWebSocket)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
