package matcher

import (
	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/pkg/common"
)

// Fitness 食譜成分與庫存重疊的比例，範圍 [0, 1]；沒有成分時為 0
//
// 分子以集合計算（重複成分只算一次），分母為成分總數。
func Fitness(recipe catalog.Recipe, inventory Inventory) float64 {
	if len(recipe.Components) == 0 {
		return 0
	}

	matched := make(map[string]struct{}, len(recipe.Components))
	for _, c := range recipe.Components {
		name := common.NormalizeName(c)
		if inventory.Has(name) {
			matched[name] = struct{}{}
		}
	}

	return float64(len(matched)) / float64(len(recipe.Components))
}

// MissingComponents 食譜中庫存沒有的食材，依食譜順序去重
func MissingComponents(recipe catalog.Recipe, inventory Inventory) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, c := range recipe.Components {
		name := common.NormalizeName(c)
		if inventory.Has(name) || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	return missing
}
