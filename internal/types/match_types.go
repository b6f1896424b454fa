package types

// ContactNotFound 联系方式缺失时的哨兵值，解析过程从不因缺失联系方式报错
const ContactNotFound = "not found"

// ParsedResume 从简历文本解析出的候选人画像
// 由原始文本纯函数推导，创建后不再修改
type ParsedResume struct {
	// 联系方式，缺失时为 ContactNotFound
	Email string `json:"email"`
	Phone string `json:"phone"`

	// 教育背景（按出现顺序去重的机构名）
	Education []string `json:"education"`

	// 规范化后的技能标识符集合（已做同义词归一）
	Skills []string `json:"skills"`

	// 估算的工作年限（非负，保留一位小数）
	YearsOfExperience float64 `json:"years_of_experience"`
}

// SkillSet 返回技能集合的map形式，便于求交
func (p *ParsedResume) SkillSet() map[string]bool {
	set := make(map[string]bool, len(p.Skills))
	for _, s := range p.Skills {
		set[s] = true
	}
	return set
}

// HasEmail 是否解析到了邮箱
func (p *ParsedResume) HasEmail() bool {
	return p.Email != "" && p.Email != ContactNotFound
}

// HasPhone 是否解析到了电话
func (p *ParsedResume) HasPhone() bool {
	return p.Phone != "" && p.Phone != ContactNotFound
}

// ParsedJob 从岗位描述解析出的要求画像
type ParsedJob struct {
	// 规范化后的必需技能标识符集合
	RequiredSkills []string `json:"required_skills"`

	// 最低年限要求，0 表示未声明
	MinYearsRequired int `json:"min_years_required"`

	// 命中的学历要求关键词（按模式去重）
	EducationRequirements []string `json:"education_requirements"`
}

// SkillSet 返回必需技能集合的map形式
func (p *ParsedJob) SkillSet() map[string]bool {
	set := make(map[string]bool, len(p.RequiredSkills))
	for _, s := range p.RequiredSkills {
		set[s] = true
	}
	return set
}

// MatchDetails 一次评分的分项明细
// 四个分项与总分都落在 [0,100] 区间
type MatchDetails struct {
	SkillMatch      float64 `json:"skill_match"`
	KeywordDensity  float64 `json:"keyword_density"`
	ExperienceMatch float64 `json:"experience_match"`
	ResumeQuality   float64 `json:"resume_quality"`

	// 命中的规范化技能列表及计数
	MatchedSkills       []string `json:"matched_skills"`
	TotalMatchedSkills  int      `json:"total_matched_skills"`
	TotalRequiredSkills int      `json:"total_required_skills"`

	// 人类可读的年限描述，如 "5.0 years" / "5+ years"
	ResumeExperience   string `json:"resume_experience"`
	RequiredExperience string `json:"required_experience"`
}

// ScoreBreakdown 一次 (简历, 岗位) 评分的完整结果
// 每次评分新建，核心逻辑本身不做持久化
type ScoreBreakdown struct {
	// 加权总分，保留两位小数
	OverallScore float64 `json:"ats_score"`

	Details MatchDetails `json:"match_details"`

	// 岗位的全部必需技能，调用方据此求缺失技能集
	RequiredSkills []string `json:"required_skills"`
}

// MissingSkills 必需但未命中的技能，保持 RequiredSkills 的顺序
func (b *ScoreBreakdown) MissingSkills() []string {
	matched := make(map[string]bool, len(b.Details.MatchedSkills))
	for _, s := range b.Details.MatchedSkills {
		matched[s] = true
	}
	var missing []string
	for _, s := range b.RequiredSkills {
		if !matched[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

// AnalysisResult 单份简历分析的聚合输出
type AnalysisResult struct {
	ATSScore     float64       `json:"ats_score"`
	MatchDetails MatchDetails  `json:"match_details"`
	Suggestions  []string      `json:"suggestions"`
	ParsedResume *ParsedResume `json:"parsed_resume"`
}

// CandidateResult 批量排序里单个候选人的条目
type CandidateResult struct {
	CandidateName  string  `json:"candidate_name"`
	ATSScore       float64 `json:"ats_score"`
	SkillMatch     float64 `json:"skill_match"`
	KeywordDensity float64 `json:"keyword_density"`
	MatchedSkills  string  `json:"matched_skills"`
	MissingSkills  string  `json:"missing_skills"`
}

// Entity 命名实体识别输出的一个片段
type Entity struct {
	// 实体文本（原文切片）
	Text string
	// 实体标签，如 ORG / PERSON / GPE
	Label string
}
