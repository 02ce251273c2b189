package meal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-matcher/internal/core/cache"
	"meal-matcher/internal/core/catalog"
	"meal-matcher/internal/core/matcher"
	"meal-matcher/internal/core/queue"
	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Recipe{
		{
			Name:              "Rice and Chicken",
			Components:        []string{"rice", "chicken"},
			PrimaryComponents: []string{"chicken"},
			Quantities:        []*float64{catalog.Float(1), catalog.Float(1)},
			Duration:          catalog.Int(30),
			NumPeople:         catalog.Int(1),
		},
		{
			Name:              "Lentil Soup",
			Components:        []string{"lentils", "onion"},
			PrimaryComponents: []string{"lentils"},
			Quantities:        []*float64{catalog.Float(1), catalog.Float(1)},
			NumPeople:         catalog.Int(2),
		},
	})
}

func newTestHandler(t *testing.T, store cache.Store, limits config.MatcherConfig) *Handler {
	t.Helper()
	svc := matcher.NewService(testCatalog(), limits)
	q := queue.NewManager(config.QueueConfig{Workers: 1, MaxSize: 4})
	t.Cleanup(q.Close)
	return NewHandler(svc, q, store, false)
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/match", h.HandleMatch)
	r.GET("/catalog", h.HandleCatalog)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// rawResponse 以通用型別解碼，檢查 missing_components 的兩種形式
type rawResponse struct {
	BestMeals []struct {
		MealName          string      `json:"meal_name"`
		AdjustedFor       int         `json:"adjusted_for"`
		CookingTime       *int        `json:"cooking_time"`
		MissingComponents interface{} `json:"missing_components"`
	} `json:"best_meals"`
	ChosenMeals []ChosenMeal `json:"chosen_meals"`
}

func TestHandleMatch(t *testing.T) {
	r := newRouter(newTestHandler(t, nil, config.MatcherConfig{TopN: 5}))

	w := post(r, `{"components":{"Rice":2,"chicken":1,"lentils":2},"num_people":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(HeaderCache) != "" {
		t.Errorf("X-Cache should be absent when cache disabled")
	}

	var resp rawResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.BestMeals) != 2 {
		t.Fatalf("best meals = %+v", resp.BestMeals)
	}
	first := resp.BestMeals[0]
	if first.MealName != "Rice and Chicken" || first.AdjustedFor != 1 || *first.CookingTime != 30 {
		t.Errorf("unexpected first meal: %+v", first)
	}
	if first.MissingComponents != AllComponentsAvailable {
		t.Errorf("missing = %v", first.MissingComponents)
	}
	second := resp.BestMeals[1]
	missing, ok := second.MissingComponents.([]interface{})
	if !ok || len(missing) != 1 || missing[0] != "onion" {
		t.Errorf("lentil soup missing = %v", second.MissingComponents)
	}
	if second.CookingTime != nil {
		t.Errorf("absent cooking time should be null")
	}

	if len(resp.ChosenMeals) != 2 {
		t.Fatalf("chosen meals = %+v", resp.ChosenMeals)
	}
	for _, chosen := range resp.ChosenMeals {
		if chosen.Notes == nil {
			t.Errorf("notes should be a list")
		}
		if chosen.TotalPeopleAdjusted < 1 {
			t.Errorf("combination under-serves: %+v", chosen)
		}
	}
}

func TestHandleMatch_Validation(t *testing.T) {
	r := newRouter(newTestHandler(t, nil, config.MatcherConfig{TopN: 5}))

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"components":`},
		{"missing components", `{"num_people":2}`},
		{"zero people", `{"components":{"rice":1},"num_people":0}`},
		{"negative quantity", `{"components":{"rice":-1},"num_people":1}`},
		{"huge quantity", `{"components":{"rice":1e300},"num_people":1}`},
		{"limit without max", `{"components":{"rice":1},"num_people":1,"limit_time":true}`},
		{"negative max time", `{"components":{"rice":1},"num_people":1,"limit_time":true,"max_time":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), common.ErrCodeInvalidRequest) {
				t.Errorf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestHandleMatch_Cache(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })
	r := newRouter(newTestHandler(t, store, config.MatcherConfig{TopN: 5}))

	body := `{"components":{"rice":2,"chicken":1},"num_people":1}`
	w1 := post(r, body)
	if w1.Header().Get(HeaderCache) != "MISS" {
		t.Fatalf("first request X-Cache = %q", w1.Header().Get(HeaderCache))
	}

	// 名稱大小寫不同但正規化後相同
	w2 := post(r, `{"components":{"RICE":2," Chicken":1},"num_people":1}`)
	if w2.Header().Get(HeaderCache) != "HIT" {
		t.Fatalf("second request X-Cache = %q", w2.Header().Get(HeaderCache))
	}
	if w1.Body.String() != w2.Body.String() {
		t.Errorf("cached body differs:\n%s\n%s", w1.Body.String(), w2.Body.String())
	}
}

func TestHandleMatch_TruncatedNotCached(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })
	r := newRouter(newTestHandler(t, store, config.MatcherConfig{TopN: 5, MaxSearchNodes: 1}))

	body := `{"components":{"rice":2,"chicken":1,"lentils":2},"num_people":3}`
	w := post(r, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if w.Header().Get(HeaderTruncated) != "true" {
		t.Fatalf("expected truncated header")
	}

	if again := post(r, body); again.Header().Get(HeaderCache) != "MISS" {
		t.Errorf("truncated result should not be cached")
	}
}

func TestHandleMatch_NoCatalog(t *testing.T) {
	h := NewHandler(matcher.NewService(nil, config.MatcherConfig{}), nil, nil, false)
	w := post(newRouter(h), `{"components":{"rice":1},"num_people":1}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleCatalog(t *testing.T) {
	r := newRouter(newTestHandler(t, nil, config.MatcherConfig{TopN: 5}))

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp CatalogResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Recipes) != 2 || resp.Recipes[1].Name != "Lentil Soup" {
		t.Errorf("unexpected catalog: %+v", resp)
	}
}

func TestCacheKey_IgnoresMaxTimeWithoutLimit(t *testing.T) {
	base := matcher.Request{Components: matcher.Inventory{"rice": 1}, NumPeople: 1}
	withMax := base
	withMax.MaxTime = catalog.Int(10)

	k1, _ := cacheKey(base)
	k2, _ := cacheKey(withMax)
	if k1 != k2 {
		t.Errorf("max_time without limit_time should not change the key")
	}

	withMax.LimitTime = true
	k3, _ := cacheKey(withMax)
	if k1 == k3 {
		t.Errorf("active time limit should change the key")
	}
}
