package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ats-match-go/internal/types"
)

// 经验年限要求的模式级联，按固定顺序逐个尝试
// 每个模式贡献候选值，最终对全部候选取最大
var minYearsPatterns = []*regexp.Regexp{
	// "minimum of 3 years" / "at least 5 years"
	regexp.MustCompile(`(?:minimum(?:\s+of)?|min\.?|at least)\s+(\d+)\s*\+?\s*years?`),
	// "3-5 years" / "3 to 5 years"，取下界
	regexp.MustCompile(`(\d+)\s*(?:-|–|to)\s*\d+\s*years?`),
	// "5 years required" / "5+ years preferred"
	regexp.MustCompile(`(\d+)\s*\+?\s*years?[a-z\s]*(?:required|preferred)`),
	// 兜底："5+ years"
	regexp.MustCompile(`(\d+)\s*\+?\s*years?`),
}

// degreePatterns 学历关键词模式，记录命中的学历层级
var degreePatterns = []struct {
	Level   string
	Pattern *regexp.Regexp
}{
	{"phd", regexp.MustCompile(`ph\.?d|doctorate|doctoral`)},
	{"master", regexp.MustCompile(`master(?:'?s)?(?:\s+degree)?|\bm\.s\.?c?\b|\bmsc\b|\bmba\b`)},
	{"bachelor", regexp.MustCompile(`bachelor(?:'?s)?(?:\s+degree)?|\bb\.s\.?c?\b|\bbsc\b|\bb\.?tech\b`)},
	{"associate", regexp.MustCompile(`associate(?:'?s)?(?:\s+degree)?`)},
}

// JDParser 将岗位描述解析为结构化的任职要求
type JDParser struct {
	vocab  *SkillVocabulary
	logger zerolog.Logger
}

// JDParserOption 岗位描述解析器的配置选项
type JDParserOption func(*JDParser)

// WithJDVocabulary 替换技能词表
func WithJDVocabulary(vocab *SkillVocabulary) JDParserOption {
	return func(p *JDParser) {
		p.vocab = vocab
	}
}

// WithJDParserLogger 配置自定义日志记录器
func WithJDParserLogger(logger zerolog.Logger) JDParserOption {
	return func(p *JDParser) {
		p.logger = logger
	}
}

// NewJDParser 创建岗位描述解析器
func NewJDParser(options ...JDParserOption) *JDParser {
	p := &JDParser{
		vocab:  DefaultVocabulary(),
		logger: log.With().Str("component", "jd_parser").Logger(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Parse 解析岗位描述，提取必备技能、最低年限与学历要求
// 未写明年限要求时MinYearsRequired为0，表示无要求
func (p *JDParser) Parse(text string) *types.ParsedJob {
	job := &types.ParsedJob{
		RequiredSkills:        ExtractSkills(text, p.vocab),
		MinYearsRequired:      minYearsRequired(text),
		EducationRequirements: detectDegrees(text),
	}

	p.logger.Debug().
		Int("required_skill_count", len(job.RequiredSkills)).
		Int("min_years_required", job.MinYearsRequired).
		Strs("education_requirements", job.EducationRequirements).
		Msg("岗位描述解析完成")

	return job
}

// minYearsRequired 依次运行所有年限模式，对候选值取最大
func minYearsRequired(text string) int {
	lowered := strings.ToLower(text)
	best := 0
	for _, pattern := range minYearsPatterns {
		for _, m := range pattern.FindAllStringSubmatch(lowered, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n > best {
				best = n
			}
		}
	}
	return best
}

// detectDegrees 记录岗位描述中出现过的学历层级，按模式顺序输出
func detectDegrees(text string) []string {
	lowered := strings.ToLower(text)
	var levels []string
	for _, dp := range degreePatterns {
		if dp.Pattern.MatchString(lowered) {
			levels = append(levels, dp.Level)
		}
	}
	return levels
}
