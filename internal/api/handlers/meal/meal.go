package meal

import (
	"context"
	"errors"
	"net/http"

	"meal-matcher/internal/core/cache"
	"meal-matcher/internal/core/matcher"
	"meal-matcher/internal/core/queue"
	"meal-matcher/internal/metrics"
	"meal-matcher/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 響應標頭
const (
	HeaderCache     = "X-Cache"
	HeaderTruncated = "X-Search-Truncated"
)

const jsonContentType = "application/json; charset=utf-8"

// Handler 配對 API 處理器
type Handler struct {
	matcher *matcher.Service
	queue   *queue.Manager // nil 時直接在請求 goroutine 上執行
	cache   cache.Store    // nil 表示停用快取
	debug   bool
}

// NewHandler 創建配對處理器
func NewHandler(svc *matcher.Service, q *queue.Manager, store cache.Store, debug bool) *Handler {
	return &Handler{
		matcher: svc,
		queue:   q,
		cache:   store,
		debug:   debug,
	}
}

// HandleMatch 處理 /meals/match 食譜配對
func (h *Handler) HandleMatch(c *gin.Context) {
	requestID := requestid.Get(c)
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.fail(c, "invalid", common.ErrInvalidRequest.WithError(err))
		return
	}
	if err := req.Validate(); err != nil {
		common.LogWarn("請求驗證失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.fail(c, "invalid", common.ErrInvalidRequest.WithError(err))
		return
	}

	mreq := req.ToMatcher()
	key, err := cacheKey(mreq)
	if err != nil {
		h.fail(c, "error", common.ErrInternalError.WithError(err))
		return
	}

	ctx := c.Request.Context()
	if cached, ok := h.lookup(ctx, key); ok {
		c.Header(HeaderCache, "HIT")
		metrics.MatchRequests.WithLabelValues("ok").Inc()
		c.Data(http.StatusOK, jsonContentType, []byte(cached))
		return
	}
	if h.cache != nil {
		c.Header(HeaderCache, "MISS")
	}

	var result *matcher.Result
	run := func(ctx context.Context) error {
		var err error
		result, err = h.matcher.Match(ctx, mreq)
		return err
	}
	if h.queue != nil {
		err = h.queue.Do(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		common.LogError("食譜配對失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			h.fail(c, "error", common.ErrGatewayTimeout.WithError(err))
		case errors.Is(err, context.Canceled):
			h.fail(c, "error", common.ErrRequestTimeout.WithError(err))
		default:
			h.fail(c, "error", common.AsCustomError(err))
		}
		return
	}

	resp := NewMatchResponse(result)
	data, err := common.ToJSONBytes(resp)
	if err != nil {
		h.fail(c, "error", common.ErrInternalError.WithError(err))
		return
	}

	outcome := "ok"
	if result.Search.Truncated {
		outcome = "truncated"
		c.Header(HeaderTruncated, "true")
	} else {
		h.store(ctx, key, string(data))
	}
	metrics.MatchRequests.WithLabelValues(outcome).Inc()

	common.LogInfo("食譜配對完成",
		zap.String("request_id", requestID),
		zap.Int("best_meals", len(resp.BestMeals)),
		zap.Int("chosen_meals", len(resp.ChosenMeals)),
		zap.Bool("truncated", result.Search.Truncated),
	)

	c.Data(http.StatusOK, jsonContentType, data)
}

// HandleCatalog 列出目前載入的食譜
func (h *Handler) HandleCatalog(c *gin.Context) {
	cat := h.matcher.Catalog()
	if cat == nil {
		c.JSON(common.ErrCatalogUnavailable.Status, common.ErrCatalogUnavailable.Response(h.debug))
		return
	}
	c.JSON(http.StatusOK, CatalogResponse{
		Count:    cat.Len(),
		Source:   cat.Source(),
		LoadedAt: cat.LoadedAt(),
		Recipes:  cat.Summaries(),
	})
}

func (h *Handler) fail(c *gin.Context, outcome string, err *common.CustomError) {
	metrics.MatchRequests.WithLabelValues(outcome).Inc()
	_ = c.Error(err)
	c.AbortWithStatusJSON(err.Status, err.Response(h.debug))
}

// lookup 讀取快取，錯誤只記錄不影響請求
func (h *Handler) lookup(ctx context.Context, key string) (string, bool) {
	if h.cache == nil {
		return "", false
	}
	value, err := h.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.ResponseCache.WithLabelValues("hit").Inc()
		return value, true
	case errors.Is(err, common.ErrCacheMiss):
		metrics.ResponseCache.WithLabelValues("miss").Inc()
	default:
		metrics.ResponseCache.WithLabelValues("error").Inc()
		common.LogWarn("Failed to read response cache", zap.Error(err))
	}
	return "", false
}

func (h *Handler) store(ctx context.Context, key, value string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, value); err != nil {
		common.LogWarn("Failed to write response cache", zap.Error(err))
	}
}

// cacheKey 正規化後請求的雜湊；map 鍵在編碼時已排序
func cacheKey(req matcher.Request) (string, error) {
	canonical := struct {
		Components   matcher.Inventory `json:"components"`
		NumPeople    int               `json:"num_people"`
		SimilarMeals bool              `json:"similar_meals"`
		MaxTime      *int              `json:"max_time"`
	}{
		Components:   req.Components,
		NumPeople:    req.NumPeople,
		SimilarMeals: req.SimilarMeals,
		MaxTime:      req.TimeLimit(),
	}
	data, err := common.ToJSON(canonical)
	if err != nil {
		return "", err
	}
	return common.HashString(data), nil
}
