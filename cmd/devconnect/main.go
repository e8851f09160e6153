package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sudooom.devconnect/internal/auth"
	"sudooom.devconnect/internal/cache"
	"sudooom.devconnect/internal/chat"
	"sudooom.devconnect/internal/config"
	"sudooom.devconnect/internal/feed"
	"sudooom.devconnect/internal/handler"
	"sudooom.devconnect/internal/health"
	"sudooom.devconnect/internal/presence"
	"sudooom.devconnect/internal/realtime"
	"sudooom.devconnect/internal/repository"
	"sudooom.devconnect/internal/router"
	"sudooom.devconnect/internal/service"
	"sudooom.devconnect/internal/task"
	"sudooom.devconnect/internal/typing"
	"sudooom.devconnect/pkg/snowflake"
)

func main() {
	// 初始化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// 加载配置
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接 NATS（变更事件总线）
	feedClient, err := feed.NewClient(cfg.NATS)
	if err != nil {
		logger.Error("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
		os.Exit(1)
	}
	defer feedClient.Close()
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)

	// 连接 Redis
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	logger.Info("Connected to Redis", "host", cfg.Redis.Host)

	// 连接 PostgreSQL，未配置时进入演示模式
	var db *pgxpool.Pool
	if cfg.App.DemoMode || cfg.Database.Host == "" {
		cfg.App.DemoMode = true
		logger.Warn("Database not configured, running in demo mode")
	} else {
		db, err = connectDatabase(ctx, cfg.Database)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)
	}

	// 初始化雪花 ID 生成器
	sfNode, err := snowflake.NewNode(cfg.App.NodeID)
	if err != nil {
		logger.Error("Failed to create snowflake node", "error", err)
		os.Exit(1)
	}

	// 实时基础设施：订阅池、本地缓存失效、在线状态、输入状态
	pool := realtime.NewPool(feedClient)
	invalidator := cache.NewInvalidator()
	presenceStore := presence.NewStore(redisClient)
	tracker := presence.NewTracker(presenceStore, pool, feedClient, cfg.Presence)
	typingChannel := typing.NewChannel(redisClient, feedClient, cfg.Typing.Expire)

	// JWT
	jwtService := auth.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessExpire, cfg.JWT.RefreshExpire)

	// Repository / Service
	userRepo := repository.NewUserRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	reactRepo := repository.NewReactionRepository(db)
	eventRepo := repository.NewEventRepository(db)
	postRepo := repository.NewPostRepository(db)
	communityRepo := repository.NewCommunityRepository(db)

	var chatService *chat.Service
	if cfg.App.DemoMode {
		chatService = chat.NewDemoService(invalidator)
	} else {
		chatService = chat.NewService(convRepo, msgRepo, reactRepo, feedClient, invalidator, sfNode)
	}

	authService := service.NewAuthService(userRepo, jwtService, sfNode)
	userService := service.NewUserService(userRepo)
	eventService := service.NewEventService(eventRepo, sfNode)
	postService := service.NewPostService(postRepo, communityRepo, sfNode)

	// Handler
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Conversation: handler.NewConversationHandler(chatService),
		Message:      handler.NewMessageHandler(chatService),
		Presence:     handler.NewPresenceHandler(tracker),
		Typing:       handler.NewTypingHandler(typingChannel, chatService),
		Event:        handler.NewEventHandler(eventService),
		Post:         handler.NewPostHandler(postService),
		Community:    handler.NewCommunityHandler(postService),
		WS:           handler.NewWSHandler(pool, tracker, typingChannel, chatService, invalidator),
	}

	// 健康检查
	checker := health.NewChecker(feedClient.Conn(), redisClient, db)

	// 后台调度：周期翻转过期的在线记录
	scheduler := task.NewScheduler(4)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	sweepSeconds := int(cfg.Presence.SweepInterval / time.Second)
	sweepTask := task.NewRecurringTask("presence-sweep", sweepSeconds, func(taskCtx context.Context) error {
		tracker.SweepStale(taskCtx)
		return nil
	})
	if err := scheduler.AddTask(sweepTask); err != nil {
		logger.Error("Failed to schedule presence sweep", "error", err)
	}

	// 设置路由并启动服务器
	r := router.SetupRouter(cfg, jwtService, checker, handlers)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	go func() {
		logger.Info("Server started", "addr", addr, "mode", cfg.App.Mode, "demoMode", cfg.App.DemoMode)
		if err := r.Run(addr); err != nil {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()
	scheduler.Stop()
	pool.Close()
	logger.Info("Server stopped")
}

// parseLogLevel 解析日志级别，默认 info
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
