package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeAttributeValueMasksPIIByName(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"candidate.email", "myemail@example.com", "my***************om"},
		{"candidate.phone", "13812345678", "13*******78"},
		{"user.姓名", "王小明", "王*明"},
	}

	for _, tc := range cases {
		got := SafeAttributeValue(tc.name, tc.value, DefaultMaxLength)
		assert.Equal(t, tc.want, got, "属性 %s 应被掩码", tc.name)
	}
}

func TestSafeAttributeValueTruncatesNonPII(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SafeAttributeValue("db.operation", long, DefaultMaxLength)
	require.LessOrEqual(t, len([]rune(got)), DefaultMaxLength, "非敏感属性超长时应被截断")
	assert.Contains(t, got, "...", "截断应保留省略号标记")

	short := "SELECT"
	assert.Equal(t, short, SafeAttributeValue("db.operation", short, DefaultMaxLength), "未超长的值应原样返回")
}

func TestMaskPIIShortValues(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "a**d", MaskPII("abcd"))
}

func TestSafeSQLAndSafeRedisKey(t *testing.T) {
	sql := "SELECT * FROM match_evaluations WHERE " + strings.Repeat("x = 1 AND ", 100) + "1 = 1"
	safeSQL := SafeSQL(sql)
	require.LessOrEqual(t, len([]rune(safeSQL)), MaxSQLLength, "SQL语句应按上限截断")
	assert.True(t, strings.HasPrefix(safeSQL, "SELECT"), "截断应保留语句开头")

	key := "score:" + strings.Repeat("f", 200)
	safeKey := SafeRedisKey(key)
	require.LessOrEqual(t, len([]rune(safeKey)), MaxRedisLength, "Redis键应按上限截断")
	assert.True(t, strings.HasPrefix(safeKey, "score:"), "截断应保留键前缀")
}
