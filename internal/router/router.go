package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sudooom.devconnect/internal/auth"
	"sudooom.devconnect/internal/config"
	"sudooom.devconnect/internal/handler"
	"sudooom.devconnect/internal/health"
	"sudooom.devconnect/internal/middleware"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Presence     *handler.PresenceHandler
	Typing       *handler.TypingHandler
	Event        *handler.EventHandler
	Post         *handler.PostHandler
	Community    *handler.CommunityHandler
	WS           *handler.WSHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, jwtService *auth.JWTService, checker *health.Checker, h *Handlers) *gin.Engine {
	// 设置 Gin 模式
	gin.SetMode(cfg.App.Mode)

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowCredentials,
	))

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 健康检查
	r.GET("/health", gin.WrapH(checker))
	r.GET("/ready", func(c *gin.Context) {
		if checker.IsHealthy(c.Request.Context()) {
			c.String(200, "OK")
		} else {
			c.String(503, "Not Ready")
		}
	})

	// 演示模式下访问数据库的路由直接返回后端不可用
	requireBackend := middleware.RequireBackend(!cfg.App.DemoMode)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证接口（无需登录）
		authGroup := v1.Group("/auth")
		authGroup.Use(requireBackend)
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/refresh", h.Auth.Refresh)
		}

		// 演示模式下常规认证不可用，提供访客登录体验只读接口
		if cfg.App.DemoMode {
			v1.POST("/auth/guest", h.Auth.Guest)
		}

		// 需要认证的接口
		authenticated := v1.Group("")
		authenticated.Use(middleware.JWTAuth(jwtService))
		if cfg.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)
			authenticated.Use(limiter.Middleware())
		}
		{
			// 实时推送
			authenticated.GET("/ws", h.WS.Handle)

			// 用户接口
			users := authenticated.Group("/users")
			users.Use(requireBackend)
			{
				users.GET("/me", h.User.Me)
				users.PUT("/me", h.User.UpdateMe)
				users.GET("/search", h.User.Search)
				users.GET("/:id", h.User.Get)
			}

			// 会话与消息
			conversations := authenticated.Group("/conversations")
			{
				conversations.GET("", h.Conversation.List)
				conversations.POST("", h.Conversation.Create)
				conversations.GET("/:id/messages", h.Conversation.ListMessages)
				conversations.POST("/:id/messages", h.Conversation.SendMessage)
				conversations.GET("/:id/typing", h.Typing.List)
				conversations.POST("/:id/typing", h.Typing.Start)
				conversations.DELETE("/:id/typing", h.Typing.Stop)
			}

			messages := authenticated.Group("/messages")
			{
				messages.DELETE("/:id", h.Message.Delete)
				messages.POST("/:id/reactions", h.Message.AddReaction)
				messages.DELETE("/:id/reactions", h.Message.RemoveReaction)
			}

			// 在线状态
			authenticated.GET("/presence/online", h.Presence.Online)

			// 帖子与社区
			posts := authenticated.Group("/posts")
			posts.Use(requireBackend)
			{
				posts.GET("", h.Post.List)
				posts.POST("", h.Post.Create)
				posts.GET("/:id", h.Post.Get)
				posts.DELETE("/:id", h.Post.Delete)
				posts.POST("/:id/like", h.Post.Like)
				posts.DELETE("/:id/like", h.Post.Unlike)
			}

			communities := authenticated.Group("/communities")
			communities.Use(requireBackend)
			{
				communities.GET("", h.Community.List)
				communities.POST("", h.Community.Create)
			}

			// 活动
			events := authenticated.Group("/events")
			events.Use(requireBackend)
			{
				events.GET("", h.Event.List)
				events.POST("", h.Event.Create)
				events.GET("/:id", h.Event.Get)
				events.POST("/:id/register", h.Event.Register)
				events.DELETE("/:id/register", h.Event.Unregister)
			}
		}
	}

	return r
}
