package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/handler"
	"vasset/audio-service/internal/middleware"
)

// Version 服务版本
const Version = "1.0.0"

// Dependencies 路由依赖
type Dependencies struct {
	Config  *config.Config
	Service handler.AudioService
	Checks  map[string]handler.Check
	Logger  *zap.Logger
}

// SetupRouter 设置路由
func SetupRouter(deps *Dependencies) *gin.Engine {
	if deps.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(&deps.Config.CORS))

	rateLimiter := middleware.NewRateLimiter(&deps.Config.RateLimit)

	searchHandler := handler.NewSearchHandler(deps.Service, deps.Logger)
	downloadHandler := handler.NewDownloadHandler(deps.Service, deps.Logger)
	infoHandler := handler.NewInfoHandler(deps.Service, deps.Logger)
	healthHandler := handler.NewHealthHandler(deps.Checks, Version)

	// 健康检查
	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/live", healthHandler.Live)

	v1 := r.Group("/api/v1/youtube")
	v1.Use(middleware.RateLimit(rateLimiter))
	{
		v1.GET("/search", searchHandler.Search)
		v1.GET("/download", downloadHandler.Download)
		v1.POST("/download", downloadHandler.Download)
		v1.GET("/info", infoHandler.Info)
	}

	return r
}
