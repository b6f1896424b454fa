package parser

import (
	"regexp"
	"sort"
	"strings"
)

// proficiencyRe 匹配"experience with X"等能力陈述短语，捕获其后最多三个词
// 用于找回词表扫描遗漏的多词技能
var proficiencyRe = regexp.MustCompile(
	`(?:experience (?:with|in|using)|proficient (?:with|in)|proficiency (?:with|in)|skilled (?:with|in)|expertise (?:with|in)|knowledge of|familiar with|working with)\s+((?:[a-z0-9+#.]+ ?){1,3})`)

// ExtractSkills 从原始文本中提取规范化后的技能集合
// 第一遍按词表做边界感知扫描，第二遍从能力陈述短语中找回词表项
// 输出已去重，所有项均为规范形式
func ExtractSkills(text string, vocab *SkillVocabulary) []string {
	cleaned := CleanText(text)
	found := make(map[string]struct{})

	for _, surface := range vocab.Surfaces() {
		if vocab.Pattern(surface).MatchString(cleaned) {
			canon, _ := vocab.Canonical(surface)
			found[canon] = struct{}{}
		}
	}

	// 第二遍：能力陈述短语
	for _, match := range proficiencyRe.FindAllStringSubmatch(cleaned, -1) {
		candidate := strings.TrimSpace(match[1])
		words := strings.Fields(candidate)
		// 从最长的词组开始尝试，优先匹配多词技能
		for n := len(words); n >= 1; n-- {
			phrase := strings.Join(words[:n], " ")
			if canon, ok := vocab.Canonical(phrase); ok {
				found[canon] = struct{}{}
				break
			}
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// NormalizeSkill 将单个技能词规范化为词表中的标准形式
// 未知技能原样返回（统一成小写）
func NormalizeSkill(skill string, vocab *SkillVocabulary) string {
	cleaned := CleanText(skill)
	canon, _ := vocab.Canonical(cleaned)
	return canon
}
