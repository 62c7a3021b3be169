package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"relief-hub/backend/config"
	"relief-hub/backend/internal/api/handler"
	"relief-hub/backend/internal/api/middleware"
	"relief-hub/backend/internal/api/router"
	"relief-hub/backend/internal/repository"
	"relief-hub/backend/internal/service"
	"relief-hub/backend/pkg/database"
	"relief-hub/backend/pkg/jwt"
	applogger "relief-hub/backend/pkg/logger"
	"relief-hub/backend/pkg/redis"
	"relief-hub/backend/pkg/session"
	"relief-hub/backend/pkg/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("RELIEF_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var deps service.Deps
	var limiter middleware.RateLimiter
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，会话吊销与限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		// 仅在连接成功时赋值，避免把 nil 指针装进接口
		deps.Blacklist = rdb
		limiter = rdb
	}

	// 5. 凭证附件存储（未配置 bucket 时上传关闭）
	if cfg.Storage.Bucket != "" {
		store, err := storage.NewProofStore(context.Background(), &cfg.Storage)
		if err != nil {
			logger.Fatal("初始化对象存储失败", zap.Error(err))
		}
		deps.Uploader = store
		logger.Info("凭证附件上传已启用", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		logger.Warn("未配置 storage.bucket，凭证附件上传已关闭")
	}

	// 6. 会话：JWT 签名 + 加密 Cookie
	jwtMgr := jwt.NewManager(&cfg.Auth)
	codec, err := session.NewCodec(&cfg.Auth.Cookie)
	if err != nil {
		logger.Fatal("初始化会话 Cookie 失败", zap.Error(err))
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)
	h := handler.NewHandler(svc, codec, int64(cfg.Storage.MaxUploadMB)<<20)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, router.Deps{
		Codec:   codec,
		Auth:    svc.Auth,
		Limiter: limiter,
	}, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	sqlDB.Close()

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
