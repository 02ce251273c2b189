package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 配對服務的 Prometheus 指標
var (
	// 請求
	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_match_requests_total",
			Help: "Total number of match requests by outcome",
		},
		[]string{"outcome"}, // "ok", "truncated", "invalid", "rejected", "error"
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meal_match_duration_seconds",
			Help:    "Time spent ranking and searching for one request",
			Buckets: prometheus.DefBuckets,
		},
	)

	// 搜尋引擎
	AdjustInfeasible = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_adjust_infeasible_total",
			Help: "Recipes rejected by the quantity adjuster during combination search",
		},
		[]string{"reason"},
	)

	SearchNodesExplored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meal_search_nodes_explored",
			Help:    "Adjuster invocations per combination search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		},
	)

	SearchTruncated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_search_truncated_total",
			Help: "Combination searches stopped early by a limit",
		},
		[]string{"reason"}, // "node_limit", "result_limit", "canceled"
	)

	CombinationsFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meal_combinations_found",
			Help:    "Combinations returned per request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// 快取
	ResponseCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_response_cache_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// 目錄與隊列
	CatalogRecipes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meal_catalog_recipes",
			Help: "Number of recipes in the loaded catalog",
		},
	)

	QueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meal_queue_length",
			Help: "Match jobs waiting for a worker",
		},
	)
)
