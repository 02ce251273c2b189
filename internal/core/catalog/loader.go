package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"meal-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// 欄位名稱，每個欄位支援英文與原始資料的阿拉伯文標題
const (
	fieldName       = "meal_name"
	fieldComponents = "components"
	fieldPrimary    = "primary_components"
	fieldSecondary  = "secondary_components"
	fieldQuantities = "quantities"
	fieldDuration   = "duration"
	fieldNumPeople  = "num_people"
	fieldDishType   = "dish_type"
)

var headerAliases = map[string]string{
	"meal_name":            fieldName,
	"name":                 fieldName,
	"اسم الوجبة":           fieldName,
	"components":           fieldComponents,
	"المكونات":             fieldComponents,
	"primary_components":   fieldPrimary,
	"مكونات اساسية":        fieldPrimary,
	"secondary_components": fieldSecondary,
	"مكونات فرعية":         fieldSecondary,
	"quantities":           fieldQuantities,
	"الكمية":               fieldQuantities,
	"duration":             fieldDuration,
	"الوقت المستهلك":       fieldDuration,
	"num_people":           fieldNumPeople,
	"عدد الاشخاص":          fieldNumPeople,
	"dish_type":            fieldDishType,
	"نوع الطبق":            fieldDishType,
}

var (
	decimalPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?|\.[0-9]+`)
	integerPattern = regexp.MustCompile(`[0-9]+`)

	// 阿拉伯-印度數字轉為 ASCII
	digitReplacer = strings.NewReplacer(
		"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
		"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
		"٫", ".",
	)
)

// ErrMissingColumn 必要欄位不存在
var ErrMissingColumn = errors.New("missing required column")

// Loader 讀取並正規化 CSV 食譜
type Loader struct {
	source Source
}

// NewLoader 創建新的 Loader
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load 讀取全部食譜，保持原始順序
func (l *Loader) Load(ctx context.Context) ([]Recipe, error) {
	rc, err := l.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Parse(rc)
}

// Parse 解析 CSV 內容；數值欄位格式錯誤時記為缺漏而不中斷
func Parse(r io.Reader) ([]Recipe, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty catalog: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	columns := mapColumns(header)
	for _, required := range []string{fieldName, fieldComponents} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var recipes []Recipe
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		get := func(field string) string {
			idx, ok := columns[field]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		recipe, ok := parseRecord(get)
		if !ok {
			common.LogWarn("Skipping catalog row without name",
				zap.Int("line", line),
			)
			continue
		}
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}

// mapColumns 將標題對應到欄位索引
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		key := strings.TrimSpace(h)
		field, ok := headerAliases[key]
		if !ok {
			field, ok = headerAliases[strings.ToLower(key)]
		}
		if !ok {
			continue
		}
		if _, dup := columns[field]; !dup {
			columns[field] = i
		}
	}
	return columns
}

func parseRecord(get func(string) string) (Recipe, bool) {
	name := strings.Trim(strings.TrimSpace(get(fieldName)), `"`)
	if name == "" {
		return Recipe{}, false
	}

	rawComponents := splitList(get(fieldComponents))
	rawQuantities := splitList(get(fieldQuantities))

	recipe := Recipe{
		Name:                strings.TrimSpace(name),
		PrimaryComponents:   normalizeList(get(fieldPrimary)),
		SecondaryComponents: normalizeList(get(fieldSecondary)),
		Duration:            ParseDuration(get(fieldDuration)),
		NumPeople:           ParseNumPeople(get(fieldNumPeople)),
		DishType:            strings.TrimSpace(get(fieldDishType)),
	}

	// 保持 Components 與 Quantities 對齊：空白成分連同其份量一起捨棄
	for i, raw := range rawComponents {
		component := common.NormalizeName(raw)
		if component == "" {
			continue
		}
		var quantity *float64
		if i < len(rawQuantities) {
			quantity = ParseQuantity(rawQuantities[i])
		}
		recipe.Components = append(recipe.Components, component)
		recipe.Quantities = append(recipe.Quantities, quantity)
	}

	return recipe, true
}

// splitList 以半形逗號或阿拉伯逗號切分，保留空白項以維持索引對齊
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(s, "،", ","), ",")
}

func normalizeList(s string) []string {
	var out []string
	for _, item := range splitList(s) {
		if v := common.NormalizeName(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseQuantity 取第一個數字作為份量，沒有數字時回傳 nil
func ParseQuantity(s string) *float64 {
	match := decimalPattern.FindString(digitReplacer.Replace(s))
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseDuration 取第一個整數作為分鐘數
func ParseDuration(s string) *int {
	match := integerPattern.FindString(digitReplacer.Replace(s))
	if match == "" {
		return nil
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &v
}

// ParseNumPeople 解析份數；"4-6" 這類範圍取整數平均
func ParseNumPeople(s string) *int {
	matches := integerPattern.FindAllString(digitReplacer.Replace(s), -1)
	if len(matches) == 0 {
		return nil
	}

	sum := 0
	for _, m := range matches {
		v, err := strconv.Atoi(m)
		if err != nil {
			return nil
		}
		sum += v
	}
	n := sum / len(matches)
	return &n
}
