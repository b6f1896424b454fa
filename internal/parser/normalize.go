package parser

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// 保留 + # . 以免破坏 c++ / c# / node.js 这类技术词
	disallowedCharRe = regexp.MustCompile(`[^a-z0-9+#.\s]`)
)

// CleanText 规范化文本：统一小写、压缩空白、去除特殊字符
// 纯函数，无失败分支
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = disallowedCharRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// WordCount 统计规范化后的词数，用于评分中的短文本惩罚
func WordCount(text string) int {
	return len(strings.Fields(CleanText(text)))
}
