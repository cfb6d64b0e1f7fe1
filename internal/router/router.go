package router

import (
	"fmt"
	"strings"

	"github.com/offeroye/internal/cache"
	"github.com/offeroye/internal/config"
	publichandlers "github.com/offeroye/internal/http/handlers/public"
	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.SetHTMLTemplate(publichandlers.DashboardTemplate())

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = cache.Prefix()
	}
	redisClient := cache.Client()
	visitRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:visit", redisPrefix),
		WindowSeconds: cfg.Security.VisitRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.VisitRateLimit.MaxRequests,
		FailOpen:      true,
	}
	refreshRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:refresh", redisPrefix),
		WindowSeconds: cfg.Security.RefreshRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RefreshRateLimit.MaxRequests,
		MessageKey:    "error.refresh_rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 优惠页面
	r.GET("/", publicHandler.Dashboard)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/coupons", publicHandler.ListCoupons)
			public.GET("/stats", publicHandler.GetStats)
			public.POST("/visits", RateLimitMiddleware(redisClient, visitRule, KeyByIPAndJSONField("coupon_id")), publicHandler.RecordVisit)
			public.GET("/visits/stats", publicHandler.GetVisitStats)
		}

		// 运维接口
		apiV1.GET("/status", publicHandler.GetStatus)
		apiV1.POST("/refresh", RateLimitMiddleware(redisClient, refreshRule, KeyByIP), publicHandler.Refresh)
		apiV1.GET("/visits", publicHandler.ListVisits)
	}

	// 健康检查
	r.GET("/health", publicHandler.Health)
	r.NoRoute(NoRouteHandler())

	return r
}
