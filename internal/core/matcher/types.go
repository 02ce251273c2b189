package matcher

import (
	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/pkg/common"
)

// Inventory 可用食材與數量，鍵需先經 NormalizeInventory 正規化
type Inventory map[string]float64

// NormalizeInventory 正規化食材名稱；正規化後重複的鍵數量相加
func NormalizeInventory(raw map[string]float64) Inventory {
	inv := make(Inventory, len(raw))
	for name, qty := range raw {
		key := common.NormalizeName(name)
		if key == "" {
			continue
		}
		inv[key] += qty
	}
	return inv
}

// Has 是否擁有該食材（不論數量）
func (inv Inventory) Has(component string) bool {
	_, ok := inv[component]
	return ok
}

// Request 單次配對請求
type Request struct {
	Components   Inventory
	NumPeople    int
	SimilarMeals bool // 允許主要食材重疊
	LimitTime    bool
	MaxTime      *int // LimitTime 為 true 時必填
}

// TimeLimit 實際生效的時間上限；未啟用 LimitTime 時為 nil
func (r Request) TimeLimit() *int {
	if !r.LimitTime {
		return nil
	}
	return r.MaxTime
}

// AdjustedRecipe 依庫存縮放後的食譜副本
type AdjustedRecipe struct {
	Name              string
	Components        []string
	PrimaryComponents []string
	Quantities        []*float64 // 以 Scale 縮放，nil 保持 nil
	Duration          *int
	DishType          string
	NumPeople         int // 縮放後的份數
	Scale             float64
	ExcessComponents  map[string]float64
}

// Minutes 烹調時間，缺漏時視為 0
func (a AdjustedRecipe) Minutes() int {
	if a.Duration == nil {
		return 0
	}
	return *a.Duration
}

// recipe 轉回 catalog.Recipe 以便重用評分函式
func (a AdjustedRecipe) recipe() catalog.Recipe {
	return catalog.Recipe{
		Name:              a.Name,
		Components:        a.Components,
		PrimaryComponents: a.PrimaryComponents,
		Quantities:        a.Quantities,
		Duration:          a.Duration,
		NumPeople:         &a.NumPeople,
		DishType:          a.DishType,
	}
}

// InfeasibleReason 無法使用該食譜的原因
type InfeasibleReason string

const (
	ReasonNone                 InfeasibleReason = ""
	ReasonMissingPrimary       InfeasibleReason = "missing_primary"
	ReasonOverTime             InfeasibleReason = "over_time"
	ReasonInsufficientServings InfeasibleReason = "insufficient_servings"
)

// Adjustment Adjust 的結果：可行時帶有 Recipe，否則帶有 Reason
type Adjustment struct {
	Recipe AdjustedRecipe
	Reason InfeasibleReason
}

// Feasible 是否可行
func (a Adjustment) Feasible() bool {
	return a.Reason == ReasonNone
}

// Match 單一食譜配對結果
type Match struct {
	Index   int
	Recipe  AdjustedRecipe
	Fitness float64
	Missing []string // 食譜中庫存沒有的食材，依食譜順序
}

// Step 組合中的一道菜
type Step struct {
	Index  int // 目錄索引
	Name   string
	Recipe AdjustedRecipe
}

// Combination 組合搜尋結果加上彙總
type Combination struct {
	Steps               []Step
	TotalPeopleAdjusted int
	TotalDuration       int
	Notes               []string
}

// Result 一次請求的完整結果
type Result struct {
	BestMeals   []Match
	ChosenMeals []Combination
	Search      SearchStats
}
