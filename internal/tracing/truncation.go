package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 普通span属性的最大长度
	DefaultMaxLength = 200

	// MaxSQLLength SQL语句属性的最大长度
	MaxSQLLength = 500

	// MaxRedisLength Redis键属性的最大长度
	MaxRedisLength = 100
)

// piiKeywords 属性名中出现这些关键字时，属性值需要掩码后才能写入span
var piiKeywords = []string{
	"email",
	"phone",
	"name",
	"address",
	"id_card",
	"password",
	"secret",
	"token",
	"姓名",
	"地址",
	"身份证",
}

// SafeAttributeValue 把属性值处理成可以安全写入span的形式：
// 属性名命中PII关键字时掩码，否则按maxLength截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range piiKeywords {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}

	return TruncateString(value, maxLength)
}

// MaskPII 掩码个人敏感信息，只保留首尾少量字符
func MaskPII(value string) string {
	runes := []rune(value)
	length := len(runes)

	switch {
	case length == 0:
		return ""
	case length <= 1:
		return "*"
	case length <= 4:
		// 短字符串（如中文姓名）保留首尾各一个字符
		if length == 2 {
			return string(runes[:1]) + "*"
		}
		return string(runes[:1]) + strings.Repeat("*", length-2) + string(runes[length-1:])
	default:
		// 邮箱、手机号等保留前后各两位
		return string(runes[:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
	}
}

// TruncateString 截断超长字符串，保留首尾并以省略号连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}

	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}

	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeSQL 按SQL长度上限截断语句
func SafeSQL(sql string) string {
	return TruncateString(sql, MaxSQLLength)
}

// SafeRedisKey 按Redis键长度上限截断键名
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}
