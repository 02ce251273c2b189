package meal

import (
	"fmt"
	"math"
	"time"

	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/core/matcher"
	"meal-matcher/internal/pkg/common"
)

// AllComponentsAvailable 沒有缺少食材時 missing_components 的值
const AllComponentsAvailable = "All components are available"

// MaxComponentQuantity 單一食材可接受的最大數量
const MaxComponentQuantity = 1e12

// MatchRequest 配對請求
type MatchRequest struct {
	Components   map[string]float64 `json:"components" binding:"required"`                // 可用食材與數量
	NumPeople    int                `json:"num_people" binding:"required,gt=0"`           // 用餐人數
	SimilarMeals bool               `json:"similar_meals"`                                // 允許主要食材重疊
	LimitTime    bool               `json:"limit_time"`                                   // 是否限制時間
	MaxTime      *int               `json:"max_time,omitempty" binding:"omitempty,gte=0"` // 分鐘，limit_time 時必填
}

// Validate 檢查 binding 標籤無法表達的規則
func (r *MatchRequest) Validate() error {
	if r.LimitTime && r.MaxTime == nil {
		return common.NewValidationError("max_time is required when limit_time is true")
	}
	for name, qty := range r.Components {
		if qty < 0 {
			return common.NewValidationError(fmt.Sprintf("component %q has negative quantity", name))
		}
		if math.IsNaN(qty) || qty > MaxComponentQuantity {
			return common.NewValidationError(fmt.Sprintf("component %q quantity exceeds %g", name, MaxComponentQuantity))
		}
	}
	return nil
}

// ToMatcher 轉換為配對引擎的請求
func (r *MatchRequest) ToMatcher() matcher.Request {
	return matcher.Request{
		Components:   matcher.NormalizeInventory(r.Components),
		NumPeople:    r.NumPeople,
		SimilarMeals: r.SimilarMeals,
		LimitTime:    r.LimitTime,
		MaxTime:      r.MaxTime,
	}
}

// BestMeal 單一食譜結果
type BestMeal struct {
	MealName    string `json:"meal_name"`
	AdjustedFor int    `json:"adjusted_for"`
	CookingTime *int   `json:"cooking_time"`
	// []string，全部食材都有時為 AllComponentsAvailable 字串
	MissingComponents interface{} `json:"missing_components"`
}

// MealInfo 組合中的一道菜
type MealInfo struct {
	MealName    string `json:"meal_name"`
	AdjustedFor int    `json:"adjusted_for"`
	CookingTime *int   `json:"cooking_time"`
}

// ChosenMeal 食譜組合
type ChosenMeal struct {
	TotalPeopleAdjusted int        `json:"total_people_adjusted"`
	TotalDuration       int        `json:"total_duration"`
	Meals               []MealInfo `json:"meals"`
	Notes               []string   `json:"notes"`
}

// MatchResponse 配對響應
type MatchResponse struct {
	BestMeals   []BestMeal   `json:"best_meals"`
	ChosenMeals []ChosenMeal `json:"chosen_meals"`
}

// NewMatchResponse 將引擎結果轉為響應格式
func NewMatchResponse(result *matcher.Result) MatchResponse {
	resp := MatchResponse{
		BestMeals:   make([]BestMeal, 0, len(result.BestMeals)),
		ChosenMeals: make([]ChosenMeal, 0, len(result.ChosenMeals)),
	}

	for _, m := range result.BestMeals {
		var missing interface{} = AllComponentsAvailable
		if len(m.Missing) > 0 {
			missing = m.Missing
		}
		resp.BestMeals = append(resp.BestMeals, BestMeal{
			MealName:          m.Recipe.Name,
			AdjustedFor:       m.Recipe.NumPeople,
			CookingTime:       m.Recipe.Duration,
			MissingComponents: missing,
		})
	}

	for _, combo := range result.ChosenMeals {
		chosen := ChosenMeal{
			TotalPeopleAdjusted: combo.TotalPeopleAdjusted,
			TotalDuration:       combo.TotalDuration,
			Meals:               make([]MealInfo, 0, len(combo.Steps)),
			Notes:               append([]string{}, combo.Notes...),
		}
		for _, step := range combo.Steps {
			chosen.Meals = append(chosen.Meals, MealInfo{
				MealName:    step.Name,
				AdjustedFor: step.Recipe.NumPeople,
				CookingTime: step.Recipe.Duration,
			})
		}
		resp.ChosenMeals = append(resp.ChosenMeals, chosen)
	}

	return resp
}

// CatalogResponse 目錄列表
type CatalogResponse struct {
	Count    int               `json:"count"`
	Source   string            `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
	Recipes  []catalog.Summary `json:"recipes"`
}
