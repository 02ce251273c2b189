package matcher

import (
	"context"
	"time"

	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/metrics"
	"meal-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 配對服務，持有唯讀目錄與搜尋上限
type Service struct {
	catalog *catalog.Catalog
	topN    int
	limits  SearchLimits
}

// NewService 創建配對服務
func NewService(cat *catalog.Catalog, cfg config.MatcherConfig) *Service {
	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Service{
		catalog: cat,
		topN:    topN,
		limits: SearchLimits{
			MaxNodes:   cfg.MaxSearchNodes,
			MaxResults: cfg.MaxCombinations,
		},
	}
}

// Catalog 目前使用的目錄
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Match 對單次請求排名單一食譜並搜尋組合
//
// 不可行與搜尋截斷都是正常結果；只有目錄不存在時回傳錯誤。
func (s *Service) Match(ctx context.Context, req Request) (*Result, error) {
	if s.catalog == nil {
		return nil, common.ErrCatalogUnavailable
	}

	start := time.Now()

	best := Rank(s.catalog, req, s.topN)
	outcome := Search(ctx, s.catalog, req, s.limits)
	chosen := Aggregate(outcome.Combinations, req.Components)

	elapsed := time.Since(start)
	s.observe(outcome.Stats, len(chosen), elapsed)

	fields := []zap.Field{
		zap.Int("num_people", req.NumPeople),
		zap.Int("components", len(req.Components)),
		zap.Bool("similar_meals", req.SimilarMeals),
		zap.Bool("limit_time", req.LimitTime),
		zap.Int("best_meals", len(best)),
		zap.Int("chosen_meals", len(chosen)),
		zap.Int("nodes_explored", outcome.Stats.NodesExplored),
		zap.Duration("elapsed", elapsed),
	}
	if outcome.Stats.Truncated {
		common.LogWarn("Combination search truncated",
			append(fields, zap.String("reason", string(outcome.Stats.StopReason)))...,
		)
	} else {
		common.LogDebug("Match completed", fields...)
	}

	return &Result{
		BestMeals:   best,
		ChosenMeals: chosen,
		Search:      outcome.Stats,
	}, nil
}

func (s *Service) observe(stats SearchStats, found int, elapsed time.Duration) {
	metrics.MatchDuration.Observe(elapsed.Seconds())
	metrics.SearchNodesExplored.Observe(float64(stats.NodesExplored))
	metrics.CombinationsFound.Observe(float64(found))
	for reason, n := range stats.Infeasible {
		metrics.AdjustInfeasible.WithLabelValues(string(reason)).Add(float64(n))
	}
	if stats.Truncated {
		metrics.SearchTruncated.WithLabelValues(string(stats.StopReason)).Inc()
	}
}
