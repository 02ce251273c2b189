package catalog

import (
	"context"
	"fmt"
	"time"

	"meal-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// Catalog 啟動時建立一次的唯讀食譜目錄
//
// 建立後沒有任何寫入方法，可以在多個請求之間共享而不需加鎖。
type Catalog struct {
	recipes  []Recipe
	source   string
	loadedAt time.Time
}

// Summary 目錄摘要
type Summary struct {
	Name      string `json:"meal_name"`
	DishType  string `json:"dish_type,omitempty"`
	Duration  *int   `json:"cooking_time"`
	NumPeople int    `json:"num_people"`
}

// New 以既有的食譜建立目錄（會複製一份）
func New(recipes []Recipe) *Catalog {
	copied := make([]Recipe, len(recipes))
	for i, r := range recipes {
		copied[i] = r.Clone()
	}
	return &Catalog{
		recipes:  copied,
		source:   "memory",
		loadedAt: time.Now(),
	}
}

// Load 透過 Loader 建立目錄
func Load(ctx context.Context, loader *Loader) (*Catalog, error) {
	start := time.Now()
	recipes, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	c := New(recipes)
	c.source = loader.source.Name()

	common.LogInfo("Catalog loaded",
		zap.String("source", c.source),
		zap.Int("recipes", len(c.recipes)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

// Len 食譜數量
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.recipes)
}

// At 依索引取得食譜
func (c *Catalog) At(i int) Recipe {
	return c.recipes[i]
}

// Recipes 回傳食譜切片，呼叫端不得修改
func (c *Catalog) Recipes() []Recipe {
	if c == nil {
		return nil
	}
	return c.recipes
}

// Source 目錄來源
func (c *Catalog) Source() string {
	return c.source
}

// LoadedAt 載入時間
func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}

// Summaries 列出目錄摘要
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, 0, c.Len())
	for _, r := range c.Recipes() {
		out = append(out, Summary{
			Name:      r.Name,
			DishType:  r.DishType,
			Duration:  r.Duration,
			NumPeople: r.People(),
		})
	}
	return out
}
