package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-matcher/internal/api"
	"meal-matcher/internal/core/cache"
	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/core/matcher"
	"meal-matcher/internal/core/queue"
	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/metrics"
	"meal-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.String("catalog_url", cfg.Catalog.URL),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("redis_password", config.MaskSecret(cfg.Cache.RedisPassword)),
	)

	// 載入食譜目錄
	source, err := catalog.NewSource(cfg.Catalog)
	if err != nil {
		common.LogFatal("Invalid catalog source", zap.Error(err))
	}
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Catalog.Timeout*time.Duration(cfg.Catalog.Retries+1))
	cat, err := catalog.Load(loadCtx, catalog.NewLoader(source))
	cancelLoad()
	if err != nil {
		common.LogFatal("Failed to load catalog", zap.Error(err))
	}
	metrics.CatalogRecipes.Set(float64(cat.Len()))

	matcherSvc := matcher.NewService(cat, cfg.Matcher)

	queueMgr := queue.NewManager(cfg.Queue)
	defer queueMgr.Close()

	// 初始化快取，停用時為 nil
	store, err := cache.New(context.Background(), cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	router, err := api.SetupRouter(cfg, matcherSvc, queueMgr, store)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
			zap.Int("recipes", cat.Len()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
