package scorer

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ats-match-go/internal/parser"
	"ats-match-go/internal/types"
)

// 综合评分的固定权重，策略常量不开放配置
const (
	WeightSkill      = 0.40
	WeightKeyword    = 0.35
	WeightExperience = 0.15
	WeightQuality    = 0.10
)

const (
	// 额外技能加分：每项2分，封顶10分
	extraSkillBonus    = 2.0
	extraSkillBonusCap = 10.0

	// 短文本惩罚阈值与系数
	shortResumeWords   = 100
	shortResumeFactor  = 0.70
	mediumResumeWords  = 200
	mediumResumeFactor = 0.85
)

// Scorer 简历与岗位描述的匹配评分器
type Scorer struct {
	vocab  *parser.SkillVocabulary
	logger zerolog.Logger
}

// ScorerOption 评分器的配置选项
type ScorerOption func(*Scorer)

// WithScorerVocabulary 替换技能词表
func WithScorerVocabulary(vocab *parser.SkillVocabulary) ScorerOption {
	return func(s *Scorer) {
		s.vocab = vocab
	}
}

// WithScorerLogger 配置自定义日志记录器
func WithScorerLogger(logger zerolog.Logger) ScorerOption {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// NewScorer 创建评分器
func NewScorer(options ...ScorerOption) *Scorer {
	s := &Scorer{
		vocab:  parser.DefaultVocabulary(),
		logger: log.With().Str("component", "scorer").Logger(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Score 计算简历对岗位的综合匹配分
// 四个子分各自截断到[0,100]后按固定权重加权，结果保留两位小数
func (s *Scorer) Score(resumeText, jdText string, resume *types.ParsedResume, job *types.ParsedJob) *types.ScoreBreakdown {
	skillScore, matched := s.skillMatchScore(resume, job)
	keywordScore := s.keywordDensityScore(resumeText, jdText)
	experienceScore := experienceMatchScore(resume.YearsOfExperience, job.MinYearsRequired)
	qualityScore := resumeQualityScore(resume)

	overall := WeightSkill*skillScore +
		WeightKeyword*keywordScore +
		WeightExperience*experienceScore +
		WeightQuality*qualityScore
	overall = clampScore(round2(overall))

	breakdown := &types.ScoreBreakdown{
		OverallScore: overall,
		Details: types.MatchDetails{
			SkillMatch:          round2(skillScore),
			KeywordDensity:      round2(keywordScore),
			ExperienceMatch:     round2(experienceScore),
			ResumeQuality:       round2(qualityScore),
			MatchedSkills:       matched,
			TotalMatchedSkills:  len(matched),
			TotalRequiredSkills: len(job.RequiredSkills),
			ResumeExperience:    fmt.Sprintf("%.1f years", resume.YearsOfExperience),
			RequiredExperience:  fmt.Sprintf("%d+ years", job.MinYearsRequired),
		},
		RequiredSkills: append([]string(nil), job.RequiredSkills...),
	}

	s.logger.Debug().
		Float64("overall_score", breakdown.OverallScore).
		Float64("skill_match", breakdown.Details.SkillMatch).
		Float64("keyword_density", breakdown.Details.KeywordDensity).
		Float64("experience_match", breakdown.Details.ExperienceMatch).
		Float64("resume_quality", breakdown.Details.ResumeQuality).
		Int("matched_skills", len(matched)).
		Msg("评分完成")

	return breakdown
}

// skillMatchScore 技能重合度子分
// 岗位未列出必备技能时恒为100；词表内的非必备技能按每项2分加分，封顶10分
func (s *Scorer) skillMatchScore(resume *types.ParsedResume, job *types.ParsedJob) (float64, []string) {
	resumeSkills := resume.SkillSet()
	requiredSkills := job.SkillSet()

	var matched []string
	var base float64
	if len(requiredSkills) == 0 {
		base = 100
		for skill := range resumeSkills {
			matched = append(matched, skill)
		}
	} else {
		for skill := range resumeSkills {
			if _, ok := requiredSkills[skill]; ok {
				matched = append(matched, skill)
			}
		}
		base = float64(len(matched)) / float64(len(requiredSkills)) * 100
	}
	sort.Strings(matched)

	// 词表内但岗位未要求的技能视作相关广度加分
	var bonus float64
	for skill := range resumeSkills {
		if _, required := requiredSkills[skill]; required {
			continue
		}
		if s.vocab.Contains(skill) {
			bonus += extraSkillBonus
		}
	}
	if bonus > extraSkillBonusCap {
		bonus = extraSkillBonusCap
	}

	return clampScore(base + bonus), matched
}

// keywordDensityScore 关键词相似度子分
// 过短的简历按系数打折：不足100词×0.70，不足200词×0.85
func (s *Scorer) keywordDensityScore(resumeText, jdText string) float64 {
	score := Similarity(resumeText, jdText) * 100

	words := parser.WordCount(resumeText)
	if words < shortResumeWords {
		score *= shortResumeFactor
	} else if words < mediumResumeWords {
		score *= mediumResumeFactor
	}

	return clampScore(score)
}

// experienceMatchScore 年限匹配子分
// 达标即满分，接近要求时平缓扣分，严重不足时陡峭扣分
func experienceMatchScore(resumeYears float64, requiredYears int) float64 {
	if requiredYears == 0 {
		return 100
	}

	r := resumeYears / float64(requiredYears)
	var score float64
	switch {
	case r >= 1:
		score = 100
	case r >= 0.75:
		score = 85 + (r-0.75)*60
	case r >= 0.5:
		score = 60 + (r-0.5)*100
	default:
		score = r * 120
	}
	return clampScore(score)
}

// resumeQualityScore 简历完整度子分，五项各20分
func resumeQualityScore(resume *types.ParsedResume) float64 {
	var score float64
	if resume.HasEmail() {
		score += 20
	}
	if resume.HasPhone() {
		score += 20
	}
	if len(resume.Education) >= 1 {
		score += 20
	}
	if len(resume.Skills) >= 3 {
		score += 20
	}
	if resume.YearsOfExperience > 0 {
		score += 20
	}
	return score
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
