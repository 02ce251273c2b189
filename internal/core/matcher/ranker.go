package matcher

import (
	"sort"

	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/pkg/common"
)

// DefaultTopN 預設回傳的單一食譜數量
const DefaultTopN = 5

// Rank 對目錄中每道食譜獨立縮放與評分，回傳前 topN 名
//
// 排序依 fitness 由高到低，同分保持目錄順序。
func Rank(cat *catalog.Catalog, req Request, topN int) []Match {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var matches []Match
	for i, recipe := range cat.Recipes() {
		adj := Adjust(recipe, req.Components, req.NumPeople, req.TimeLimit(), nil)
		if !adj.Feasible() {
			continue
		}

		// similar_meals 模式下再次確認主要食材（Adjust 已保證）
		if req.SimilarMeals && !hasAllPrimary(adj.Recipe, req.Components) {
			continue
		}

		adjusted := adj.Recipe.recipe()
		score := Fitness(adjusted, req.Components)
		if score <= 0 {
			continue
		}

		matches = append(matches, Match{
			Index:   i,
			Recipe:  adj.Recipe,
			Fitness: score,
			Missing: MissingComponents(adjusted, req.Components),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Fitness > matches[b].Fitness
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

func hasAllPrimary(recipe AdjustedRecipe, inventory Inventory) bool {
	for _, p := range recipe.PrimaryComponents {
		if !inventory.Has(common.NormalizeName(p)) {
			return false
		}
	}
	return true
}
