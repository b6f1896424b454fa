package scorer

import (
	"fmt"
	"strings"
)

// 固定的通用改进建议，始终追加在针对性建议之后
var genericTips = []string{
	"Keywords: Mirror the terminology used in the job description.",
	"Impact: Quantify achievements with numbers (e.g. \"reduced latency by 40%\").",
	"Formatting: Ensure you use standard section headers (Experience, Education, Skills).",
	"Compatibility: Avoid tables, images and multi-column layouts that confuse ATS parsers.",
}

// GenerateSuggestions 根据缺失技能生成改进建议
// 缺失技能先列前5项，超过5项时再补一条列出随后5项；无缺失时给出正向反馈
// 纯函数，相同输入产生相同输出
func GenerateSuggestions(missingSkills []string) []string {
	var suggestions []string

	if len(missingSkills) > 0 {
		head := missingSkills
		if len(head) > 5 {
			head = head[:5]
		}
		suggestions = append(suggestions, fmt.Sprintf(
			"Missing Critical Skills: Your resume is missing %s. Adding these can significantly boost your score.",
			strings.Join(head, ", ")))

		if len(missingSkills) > 5 {
			next := missingSkills[5:]
			if len(next) > 5 {
				next = next[:5]
			}
			suggestions = append(suggestions, fmt.Sprintf(
				"Additional Gaps: Also consider adding %s.",
				strings.Join(next, ", ")))
		}
	} else {
		suggestions = append(suggestions,
			"Great Coverage: Your resume covers all required skills for this position.")
	}

	suggestions = append(suggestions, genericTips...)
	return suggestions
}
