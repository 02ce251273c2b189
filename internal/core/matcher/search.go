package matcher

import (
	"context"

	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/pkg/common"
)

// ctxCheckInterval 每探索多少個節點檢查一次 context
const ctxCheckInterval = 256

// SearchLimits 搜尋上限，0 表示不限制
type SearchLimits struct {
	MaxNodes   int // 最多呼叫 Adjust 的次數
	MaxResults int // 最多回傳的組合數
}

// StopReason 搜尋提前結束的原因
type StopReason string

const (
	StopNone        StopReason = ""
	StopNodeLimit   StopReason = "node_limit"
	StopResultLimit StopReason = "result_limit"
	StopCanceled    StopReason = "canceled"
)

// SearchStats 搜尋統計
type SearchStats struct {
	NodesExplored int
	Infeasible    map[InfeasibleReason]int
	Truncated     bool
	StopReason    StopReason
}

// SearchOutcome 組合搜尋的輸出；Truncated 時 Combinations 為已找到的部分
type SearchOutcome struct {
	Combinations [][]Step
	Stats        SearchStats
}

type searcher struct {
	ctx     context.Context
	recipes []catalog.Recipe
	req     Request
	limits  SearchLimits

	path    []Step
	results [][]Step
	stats   SearchStats
}

// Search 以深度優先回溯列舉所有能湊滿 req.NumPeople 的食譜組合
//
// 同一路徑內目錄索引嚴格遞增且不重複；結果依發現順序排列。最壞情況
// 為目錄大小的指數級，呼叫端需透過 limits 或 ctx 限制。
func Search(ctx context.Context, cat *catalog.Catalog, req Request, limits SearchLimits) SearchOutcome {
	s := &searcher{
		ctx:     ctx,
		recipes: cat.Recipes(),
		req:     req,
		limits:  limits,
		stats: SearchStats{
			Infeasible: make(map[InfeasibleReason]int),
		},
	}

	s.explore(map[string]float64{}, map[string]struct{}{}, req.NumPeople, 0, 0)

	return SearchOutcome{
		Combinations: s.results,
		Stats:        s.stats,
	}
}

func (s *searcher) explore(used map[string]float64, usedPrimary map[string]struct{}, remaining, start, totalDuration int) {
	maxTime := s.req.TimeLimit()

	for i := start; i < len(s.recipes); i++ {
		if s.stopped() {
			return
		}

		recipe := s.recipes[i]
		if !s.req.SimilarMeals && sharesPrimary(recipe, usedPrimary) {
			continue
		}

		s.stats.NodesExplored++
		adj := Adjust(recipe, s.req.Components, 1, maxTime, used)
		if !adj.Feasible() {
			s.stats.Infeasible[adj.Reason]++
			continue
		}

		if maxTime != nil && totalDuration+adj.Recipe.Minutes() > *maxTime {
			continue
		}

		step := Step{Index: i, Name: recipe.Name, Recipe: adj.Recipe}
		s.path = append(s.path, step)

		if adj.Recipe.NumPeople >= remaining {
			s.emit()
		} else {
			s.explore(
				consume(used, adj.Recipe, s.req.Components),
				claim(usedPrimary, adj.Recipe),
				remaining-adj.Recipe.NumPeople,
				i+1,
				totalDuration+adj.Recipe.Minutes(),
			)
		}

		s.path = s.path[:len(s.path)-1]
	}
}

// stopped 檢查上限與取消；一旦觸發即記錄原因並停止後續探索
func (s *searcher) stopped() bool {
	if s.stats.Truncated {
		return true
	}

	switch {
	case s.limits.MaxNodes > 0 && s.stats.NodesExplored >= s.limits.MaxNodes:
		s.stop(StopNodeLimit)
	case s.limits.MaxResults > 0 && len(s.results) >= s.limits.MaxResults:
		s.stop(StopResultLimit)
	case s.stats.NodesExplored%ctxCheckInterval == 0 && s.ctx.Err() != nil:
		s.stop(StopCanceled)
	}
	return s.stats.Truncated
}

func (s *searcher) stop(reason StopReason) {
	s.stats.Truncated = true
	s.stats.StopReason = reason
}

func (s *searcher) emit() {
	combo := make([]Step, len(s.path))
	copy(combo, s.path)
	s.results = append(s.results, combo)
}

func sharesPrimary(recipe catalog.Recipe, usedPrimary map[string]struct{}) bool {
	for _, p := range recipe.PrimaryComponents {
		if _, ok := usedPrimary[common.NormalizeName(p)]; ok {
			return true
		}
	}
	return false
}

// consume 回傳加上本步驟消耗量的新 map，不修改 used
func consume(used map[string]float64, recipe AdjustedRecipe, inventory Inventory) map[string]float64 {
	next := make(map[string]float64, len(used)+len(recipe.Components))
	for k, v := range used {
		next[k] = v
	}
	for i, component := range recipe.Components {
		key := common.NormalizeName(component)
		if i >= len(recipe.Quantities) || recipe.Quantities[i] == nil || !inventory.Has(key) {
			continue
		}
		next[key] += *recipe.Quantities[i]
	}
	return next
}

// claim 回傳加入本步驟主要食材的新集合
func claim(usedPrimary map[string]struct{}, recipe AdjustedRecipe) map[string]struct{} {
	next := make(map[string]struct{}, len(usedPrimary)+len(recipe.PrimaryComponents))
	for k := range usedPrimary {
		next[k] = struct{}{}
	}
	for _, p := range recipe.PrimaryComponents {
		next[common.NormalizeName(p)] = struct{}{}
	}
	return next
}
