package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ats-match-go/internal/types"
)

var (
	emailRe = regexp.MustCompile(`[a-z0-9.\-+_]+@[a-z0-9.\-+]+\.[a-z]+`)
	// 美式电话号码，可带国家码与分机号
	phoneRe = regexp.MustCompile(`(?:\+?(\d{1,3}))?[-. (]*(\d{3})[-. )]*(\d{3})[-. ]*(\d{4})(?: *[x/#](\d+))?`)
)

// educationKeywords 机构名中出现这些关键词时归为教育经历
var educationKeywords = []string{"university", "college", "institute", "school"}

// ResumeParser 将简历纯文本解析为结构化档案
type ResumeParser struct {
	vocab      *SkillVocabulary
	detector   OrganizationDetector
	experience *ExperienceExtractor
	logger     zerolog.Logger
}

// ResumeParserOption 简历解析器的配置选项
type ResumeParserOption func(*ResumeParser)

// WithVocabulary 替换技能词表
func WithVocabulary(vocab *SkillVocabulary) ResumeParserOption {
	return func(p *ResumeParser) {
		p.vocab = vocab
	}
}

// WithDetector 替换实体识别器
func WithDetector(detector OrganizationDetector) ResumeParserOption {
	return func(p *ResumeParser) {
		p.detector = detector
	}
}

// WithClock 替换时钟，测试中用于冻结"present"的解析结果
func WithClock(now func() time.Time) ResumeParserOption {
	return func(p *ResumeParser) {
		p.experience = NewExperienceExtractor(now)
	}
}

// WithResumeParserLogger 配置自定义日志记录器
func WithResumeParserLogger(logger zerolog.Logger) ResumeParserOption {
	return func(p *ResumeParser) {
		p.logger = logger
	}
}

// NewResumeParser 创建简历解析器，默认使用内置词表与默认识别器
func NewResumeParser(options ...ResumeParserOption) *ResumeParser {
	p := &ResumeParser{
		vocab:      DefaultVocabulary(),
		detector:   NewDefaultDetector(),
		experience: NewExperienceExtractor(nil),
		logger:     log.With().Str("component", "resume_parser").Logger(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Parse 解析简历文本，输出结构化档案
// 联系方式缺失用"not found"占位，绝不因字段缺失报错
func (p *ResumeParser) Parse(text string) *types.ParsedResume {
	resume := &types.ParsedResume{
		Email: types.ContactNotFound,
		Phone: types.ContactNotFound,
	}

	lowered := strings.ToLower(text)
	if email := emailRe.FindString(lowered); email != "" {
		resume.Email = email
	}
	if m := phoneRe.FindStringSubmatch(text); m != nil {
		var digits strings.Builder
		for _, part := range m[1:] {
			digits.WriteString(part)
		}
		if digits.Len() > 0 {
			resume.Phone = digits.String()
		}
	}

	resume.Skills = ExtractSkills(text, p.vocab)
	resume.YearsOfExperience = p.experience.Years(text)
	resume.Education = p.extractEducation(text)

	p.logger.Debug().
		Int("skill_count", len(resume.Skills)).
		Int("education_count", len(resume.Education)).
		Float64("years_of_experience", resume.YearsOfExperience).
		Bool("has_email", resume.HasEmail()).
		Bool("has_phone", resume.HasPhone()).
		Msg("简历解析完成")

	return resume
}

// extractEducation 从实体识别结果中挑出教育机构，保持首次出现顺序去重
func (p *ResumeParser) extractEducation(text string) []string {
	entities, err := p.detector.DetectOrganizations(text)
	if err != nil {
		// 识别失败降级为无教育经历，不中断解析
		p.logger.Warn().Err(err).Msg("实体识别失败，教育经历置空")
		return nil
	}

	seen := make(map[string]struct{})
	var education []string
	for _, ent := range entities {
		// 只认机构实体，PERSON/GPE等即使带教育关键词也不算院校
		if ent.Label != "ORG" {
			continue
		}
		lowerText := strings.ToLower(ent.Text)
		for _, keyword := range educationKeywords {
			if strings.Contains(lowerText, keyword) {
				if _, ok := seen[ent.Text]; !ok {
					seen[ent.Text] = struct{}{}
					education = append(education, strings.TrimSpace(ent.Text))
				}
				break
			}
		}
	}
	return education
}
