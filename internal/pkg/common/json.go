package common

import (
	"strings"

	"github.com/goccy/go-json"
)

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToJSONBytes 將結構體轉換為 JSON 位元組
func ToJSONBytes(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// StringSliceToString 將字符串切片轉換為逗號分隔的字符串
func StringSliceToString(slice []string) string {
	if len(slice) == 0 {
		return ""
	}
	return strings.Join(slice, ", ")
}
