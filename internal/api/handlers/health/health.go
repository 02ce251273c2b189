package health

import (
	"net/http"
	"runtime"
	"time"

	"meal-matcher/internal/core/cache"
	"meal-matcher/internal/core/matcher"
	"meal-matcher/internal/core/queue"
	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 注入到 gin.Context 的鍵
const (
	ConfigKey  = "config"
	MatcherKey = "matcher_service"
	QueueKey   = "queue_manager"
	CacheKey   = "cache_store"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *CatalogStatus         `json:"catalog,omitempty"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// CatalogStatus 目錄狀態
type CatalogStatus struct {
	Recipes  int       `json:"recipes"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	cfg, ok := c.Value(ConfigKey).(*config.Config)
	if !ok {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, common.ErrInternalError.Response(false))
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Catalog: catalogStatus(c),
	}

	if q, ok := c.Value(QueueKey).(*queue.Manager); ok && q != nil {
		response.Queue = q.GetQueueStatus()
	}

	// 只有記憶體快取提供統計
	if mgr, ok := c.Value(CacheKey).(*cache.CacheManager); ok && mgr != nil {
		response.Cache = mgr.GetStats()
	}

	if response.Catalog == nil {
		response.Status = "degraded"
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：目錄已載入才算就緒
func ReadinessCheck(c *gin.Context) {
	status := catalogStatus(c)
	if status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "catalog not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"recipes": status.Recipes,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func catalogStatus(c *gin.Context) *CatalogStatus {
	svc, ok := c.Value(MatcherKey).(*matcher.Service)
	if !ok || svc == nil || svc.Catalog() == nil {
		return nil
	}
	cat := svc.Catalog()
	return &CatalogStatus{
		Recipes:  cat.Len(),
		Source:   cat.Source(),
		LoadedAt: cat.LoadedAt(),
	}
}
