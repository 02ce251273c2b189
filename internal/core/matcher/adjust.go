package matcher

import (
	"math"

	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/pkg/common"
)

// Adjust 依可用庫存縮放食譜份量與份數
//
// used 為同一組合中先前步驟已消耗的數量，可為 nil。只有同時出現在
// 食譜（且有份量）與庫存中的食材會限制縮放倍率；庫存未列出的食材
// 或份量未標示的食材不影響結果。
func Adjust(recipe catalog.Recipe, inventory Inventory, targetPeople int, maxTime *int, used map[string]float64) Adjustment {
	// 1. 主要食材必須全部在庫存中
	for _, primary := range recipe.PrimaryComponents {
		if !inventory.Has(common.NormalizeName(primary)) {
			return Adjustment{Reason: ReasonMissingPrimary}
		}
	}

	// 2. 時間上限
	if maxTime != nil && recipe.Duration != nil && *recipe.Duration > *maxTime {
		return Adjustment{Reason: ReasonOverTime}
	}

	// 3-4. 取所有候選倍率的最小值
	scale := 0.0
	found := false
	for i, component := range recipe.Components {
		qty := quantityAt(recipe, i)
		key := common.NormalizeName(component)
		if qty == nil || *qty <= 0 || !inventory.Has(key) {
			continue
		}

		candidate := 0.0
		if available := inventory[key] - used[key]; available > 0 {
			candidate = available / *qty
		}
		if !found || candidate < scale {
			scale = candidate
			found = true
		}
	}

	// 5. 縮放後份數
	people := scaledPeople(recipe.People(), scale)
	if people < targetPeople {
		return Adjustment{Reason: ReasonInsufficientServings}
	}

	// 6. 重新計算份量與剩餘量
	adjusted := AdjustedRecipe{
		Name:              recipe.Name,
		Components:        append([]string(nil), recipe.Components...),
		PrimaryComponents: append([]string(nil), recipe.PrimaryComponents...),
		Quantities:        make([]*float64, len(recipe.Components)),
		Duration:          copyInt(recipe.Duration),
		DishType:          recipe.DishType,
		NumPeople:         people,
		Scale:             scale,
		ExcessComponents:  make(map[string]float64),
	}
	for i, component := range recipe.Components {
		qty := quantityAt(recipe, i)
		if qty == nil {
			continue
		}
		value := *qty * scale
		adjusted.Quantities[i] = &value

		key := common.NormalizeName(component)
		if excess := inventory[key] - value; excess > 0 {
			adjusted.ExcessComponents[key] = excess
		}
	}

	return Adjustment{Recipe: adjusted}
}

// quantityAt 防止 Quantities 比 Components 短時越界
func quantityAt(recipe catalog.Recipe, i int) *float64 {
	if i >= len(recipe.Quantities) {
		return nil
	}
	return recipe.Quantities[i]
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// scaledPeople 計算 floor(people * scale)，超出 int 範圍時取 math.MaxInt
func scaledPeople(people int, scale float64) int {
	product := math.Floor(float64(people) * scale)
	if math.IsNaN(product) {
		return 0
	}
	if product >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(product)
}
