package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meal-matcher/internal/api/handlers/health"
	"meal-matcher/internal/api/handlers/meal"
	"meal-matcher/internal/api/middleware"
	"meal-matcher/internal/core/cache"
	"meal-matcher/internal/core/matcher"
	"meal-matcher/internal/core/queue"
	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
//
// queueMgr 與 store 可以為 nil：前者直接執行配對，後者停用響應快取。
func SetupRouter(cfg *config.Config, svc *matcher.Service, queueMgr *queue.Manager, store cache.Store) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("matcher service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", meal.HeaderCache, meal.HeaderTruncated},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))

	// 設置請求超時並注入服務
	timeout := cfg.Server.MatchTimeout
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set(health.ConfigKey, cfg)
		c.Set(health.MatcherKey, svc)
		if queueMgr != nil {
			c.Set(health.QueueKey, queueMgr)
		}
		if store != nil {
			c.Set(health.CacheKey, store)
		}

		c.Next()

		// 處理器尚未回應才補上超時錯誤
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(common.ErrGatewayTimeout.Status, common.ErrGatewayTimeout.Response(false))
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mealHandler := meal.NewHandler(svc, queueMgr, store, cfg.App.Debug)

	// 配對請求共用限流與去重
	limits := []gin.HandlerFunc{}
	if cfg.RateLimit.Enabled {
		limits = append(limits, middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	limits = append(limits, middleware.Deduplication(cfg.DedupWindow))

	api := router.Group("/api/v1")
	{
		api.GET("/catalog", mealHandler.HandleCatalog)

		mealGroup := api.Group("/meals", limits...)
		{
			mealGroup.POST("/match", mealHandler.HandleMatch)
		}
	}

	// 舊版路徑
	router.POST("/get_best_meals/", append(limits, mealHandler.HandleMatch)...)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(common.ErrNotFound.Status, common.ErrNotFound.Response(false))
	})

	common.LogInfo("Router setup completed successfully",
		zap.Int("catalog_recipes", svc.Catalog().Len()),
		zap.Bool("queue_enabled", queueMgr != nil),
		zap.Bool("cache_enabled", store != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodySize),
	)

	return router, nil
}
