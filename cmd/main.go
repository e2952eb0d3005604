package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vasset/audio-service/internal/cache"
	"vasset/audio-service/internal/cleanup"
	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/credential"
	"vasset/audio-service/internal/delivery"
	"vasset/audio-service/internal/extraction"
	"vasset/audio-service/internal/handler"
	"vasset/audio-service/internal/lifecycle"
	"vasset/audio-service/internal/metadata"
	"vasset/audio-service/internal/router"
	"vasset/audio-service/internal/search"
	"vasset/audio-service/internal/service"
	"vasset/audio-service/internal/storage"
	"vasset/audio-service/internal/ytdlp"
)

func main() {
	// 1. 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/dev.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. 初始化日志
	logger, err := initLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Audio Service",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 连接 Redis
	checks := map[string]handler.Check{
		"ytdlp": func(context.Context) error {
			_, err := exec.LookPath(cfg.YTDLP.BinaryPath)
			return err
		},
	}
	var searchCache cache.SearchCache = cache.NopCache{}
	if cfg.Cache.Enabled {
		redisClient := initRedis(&cfg.Redis)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Failed to connect to Redis, search cache will be degraded", zap.Error(err))
		} else {
			logger.Info("✓ Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
		searchCache = cache.NewService(redisClient, cfg.Cache.GetCacheTTL())
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	// 4. 初始化下载组件
	executor := ytdlp.NewExecutor(&cfg.YTDLP, logger)
	fileManager := storage.NewFileManager(logger)
	credentials := credential.NewResolver(&cfg.Credentials, logger)
	lc := lifecycle.NewLifecycle(&cfg.Scratch, fileManager, logger)
	assembler := delivery.NewAssembler(logger)
	orchestrator := extraction.NewOrchestrator(&cfg.YTDLP, executor, credentials, lc, assembler, fileManager, logger)

	// 5. 初始化搜索与元数据
	cascade := search.NewCascade(&cfg.Search, logger, search.DefaultStrategies(executor, cfg, logger)...)
	info := metadata.NewResolver(executor, cfg.YTDLP.GetSearchTimeout(), logger)
	logger.Info("✓ Search cascade ready", zap.Strings("strategies", cascade.Strategies()))

	audioService := service.NewAudioService(cascade, orchestrator, info, searchCache, logger)

	// 6. 启动临时目录清理
	scheduler := cleanup.NewScheduler(&cfg.Scratch, fileManager, logger)
	go scheduler.Start(ctx)

	// 7. 创建 HTTP 服务器
	r := router.SetupRouter(&router.Dependencies{
		Config:  cfg,
		Service: audioService,
		Checks:  checks,
		Logger:  logger,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	go func() {
		logger.Info("✓ HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 8. 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// initLogger 按配置级别初始化日志
func initLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	zapCfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}

// initRedis 初始化 Redis 连接
func initRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
