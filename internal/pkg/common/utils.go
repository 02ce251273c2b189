package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashString 計算字符串的 SHA-256 哈希值
func HashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// NormalizeName 統一食材名稱：去除前後空白、雙引號並轉小寫
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"`)
	return strings.ToLower(strings.TrimSpace(name))
}
