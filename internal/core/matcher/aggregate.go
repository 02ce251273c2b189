package matcher

import (
	"fmt"
	"math"
	"strconv"

	"meal-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// consumptionTolerance 浮點誤差容許值；超過才視為超量使用
const consumptionTolerance = 1e-9

// ExcessNotePrefix 剩餘食材提示的前綴
const ExcessNotePrefix = "Consider reducing the amount of the following components to avoid excess: "

// Aggregate 彙總每個組合的總份數、總時間與提示，不排序也不過濾
func Aggregate(combos [][]Step, inventory Inventory) []Combination {
	out := make([]Combination, 0, len(combos))
	for _, steps := range combos {
		out = append(out, aggregateOne(steps, inventory))
	}
	return out
}

func aggregateOne(steps []Step, inventory Inventory) Combination {
	combo := Combination{
		Steps: steps,
		Notes: []string{},
	}

	consumed := make(map[string]float64)
	var order []string
	for _, step := range steps {
		combo.TotalPeopleAdjusted += step.Recipe.NumPeople
		combo.TotalDuration += step.Recipe.Minutes()

		for i, component := range step.Recipe.Components {
			key := common.NormalizeName(component)
			if i >= len(step.Recipe.Quantities) || step.Recipe.Quantities[i] == nil || !inventory.Has(key) {
				continue
			}
			if _, seen := consumed[key]; !seen {
				order = append(order, key)
			}
			consumed[key] += *step.Recipe.Quantities[i]
		}
	}

	// 搜尋時已累計消耗量，正常情況不會觸發；觸發代表數值誤差需要排查
	for _, key := range order {
		if over := consumed[key] - inventory[key]; over > consumptionTolerance {
			common.LogWarn("Combination over-consumes inventory",
				zap.String("component", key),
				zap.Float64("consumed", consumed[key]),
				zap.Float64("available", inventory[key]),
				zap.Strings("meals", stepNames(steps)),
			)
			combo.Notes = append(combo.Notes, fmt.Sprintf("reduce %s by %s", key, FormatQuantity(over)))
		}
	}

	if excess := excessComponents(steps); len(excess) > 0 {
		combo.Notes = append(combo.Notes, ExcessNotePrefix+common.StringSliceToString(excess))
	}

	return combo
}

// excessComponents 各步驟剩餘食材的聯集，依首次出現順序
func excessComponents(steps []Step) []string {
	var out []string
	seen := make(map[string]bool)
	for _, step := range steps {
		for _, component := range step.Recipe.Components {
			key := common.NormalizeName(component)
			if _, ok := step.Recipe.ExcessComponents[key]; !ok || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

func stepNames(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

// FormatQuantity 四捨五入到小數兩位並去除尾端的 0
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
