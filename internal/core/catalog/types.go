package catalog

// Recipe 食譜目錄記錄，載入後不可變更
//
// Quantities 與 Components 逐項對齊；nil 表示份量未標示，不參與縮放。
// Duration、NumPeople 為 nil 表示原始資料缺漏或格式錯誤。
type Recipe struct {
	Name                string     `json:"meal_name"`
	Components          []string   `json:"components"`
	PrimaryComponents   []string   `json:"primary_components"`
	SecondaryComponents []string   `json:"secondary_components"`
	Quantities          []*float64 `json:"quantities"`
	Duration            *int       `json:"duration"` // 分鐘
	NumPeople           *int       `json:"num_people"`
	DishType            string     `json:"dish_type"`
}

// People 回傳基準份數，缺漏時視為 1
func (r Recipe) People() int {
	if r.NumPeople == nil {
		return 1
	}
	return *r.NumPeople
}

// Minutes 回傳烹調時間，缺漏時視為 0
func (r Recipe) Minutes() int {
	if r.Duration == nil {
		return 0
	}
	return *r.Duration
}

// Clone 深拷貝，調整份量時不影響目錄中的原始資料
func (r Recipe) Clone() Recipe {
	out := r
	out.Components = append([]string(nil), r.Components...)
	out.PrimaryComponents = append([]string(nil), r.PrimaryComponents...)
	out.SecondaryComponents = append([]string(nil), r.SecondaryComponents...)
	out.Quantities = make([]*float64, len(r.Quantities))
	for i, q := range r.Quantities {
		if q != nil {
			v := *q
			out.Quantities[i] = &v
		}
	}
	if r.Duration != nil {
		d := *r.Duration
		out.Duration = &d
	}
	if r.NumPeople != nil {
		n := *r.NumPeople
		out.NumPeople = &n
	}
	return out
}

// Float 建立 *float64
func Float(v float64) *float64 {
	return &v
}

// Int 建立 *int
func Int(v int) *int {
	return &v
}
