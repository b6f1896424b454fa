package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ats-match-go/internal/types"
)

// stubDetector 返回预置实体列表，避免测试依赖统计模型
type stubDetector struct {
	entities []types.Entity
	err      error
}

func (d *stubDetector) DetectOrganizations(string) ([]types.Entity, error) {
	return d.entities, d.err
}

const sampleResume = `John Doe
john.doe@example.com | +1 (555) 123-4567

Senior Software Engineer with 5 years of experience in Python development.
Skilled in Python, SQL, Docker and k8s.

EDUCATION
Stanford University, B.S. Computer Science

EXPERIENCE
Acme Corp, Jan 2020 - Present`

func TestParseResumeContactInfo(t *testing.T) {
	p := NewResumeParser(WithDetector(&stubDetector{}), WithClock(frozenClock()))
	resume := p.Parse(sampleResume)

	assert.Equal(t, "john.doe@example.com", resume.Email)
	assert.Equal(t, "15551234567", resume.Phone, "电话号码应拼接为纯数字")
	assert.True(t, resume.HasEmail())
	assert.True(t, resume.HasPhone())
}

func TestParseResumeMissingContactSentinel(t *testing.T) {
	p := NewResumeParser(WithDetector(&stubDetector{}), WithClock(frozenClock()))
	resume := p.Parse("just some text with no contact info at all")

	assert.Equal(t, types.ContactNotFound, resume.Email, "缺失邮箱应使用占位值而不是报错")
	assert.Equal(t, types.ContactNotFound, resume.Phone)
	assert.False(t, resume.HasEmail())
	assert.False(t, resume.HasPhone())
}

func TestParseResumeSkillsAndExperience(t *testing.T) {
	p := NewResumeParser(WithDetector(&stubDetector{}), WithClock(frozenClock()))
	resume := p.Parse(sampleResume)

	assert.Contains(t, resume.Skills, "python")
	assert.Contains(t, resume.Skills, "sql")
	assert.Contains(t, resume.Skills, "docker")
	assert.Contains(t, resume.Skills, "kubernetes", "k8s应归一为kubernetes")

	// 自述5年 vs Jan 2020到冻结时间(2025-06)的5.4年，取较大
	assert.InDelta(t, 5.4, resume.YearsOfExperience, 0.001)
}

func TestParseResumeEducation(t *testing.T) {
	detector := &stubDetector{entities: []types.Entity{
		{Text: "Acme Corp", Label: "ORG"},
		{Text: "Stanford University", Label: "ORG"},
		{Text: "Stanford University", Label: "ORG"},
		{Text: "Boston College", Label: "ORG"},
	}}
	p := NewResumeParser(WithDetector(detector), WithClock(frozenClock()))
	resume := p.Parse(sampleResume)

	// 只保留含教育关键词的机构，按首次出现顺序去重
	require.Equal(t, []string{"Stanford University", "Boston College"}, resume.Education)
}

func TestParseResumeEducationRequiresOrgLabel(t *testing.T) {
	detector := &stubDetector{entities: []types.Entity{
		{Text: "Washington University Smith", Label: "PERSON"},
		{Text: "College Station", Label: "GPE"},
		{Text: "Stanford University", Label: "ORG"},
	}}
	p := NewResumeParser(WithDetector(detector), WithClock(frozenClock()))
	resume := p.Parse(sampleResume)

	// 非ORG实体即使文本含教育关键词也不应计入教育经历
	require.Equal(t, []string{"Stanford University"}, resume.Education)
}

func TestParseResumeDetectorFailureDegrades(t *testing.T) {
	detector := &stubDetector{err: assert.AnError}
	p := NewResumeParser(WithDetector(detector), WithClock(frozenClock()))
	resume := p.Parse(sampleResume)

	assert.Empty(t, resume.Education, "识别器失败应降级为无教育经历")
	assert.NotEmpty(t, resume.Skills, "其余字段不受识别器失败影响")
}

func TestParseResumeIdempotent(t *testing.T) {
	p := NewResumeParser(WithDetector(&stubDetector{}), WithClock(frozenClock()))

	first := p.Parse(sampleResume)
	second := p.Parse(sampleResume)
	assert.Equal(t, first, second, "相同输入解析结果必须一致")
}

func TestPatternDetectorFindsEducationOrgs(t *testing.T) {
	d := NewPatternDetector()
	entities, err := d.DetectOrganizations("Graduated from Stanford University in 2015.")
	require.NoError(t, err)

	var texts []string
	for _, e := range entities {
		texts = append(texts, e.Text)
	}
	assert.Contains(t, texts, "Stanford University")
}

func TestCompositeDetectorDeduplicates(t *testing.T) {
	a := &stubDetector{entities: []types.Entity{{Text: "MIT", Label: "ORG"}}}
	b := &stubDetector{entities: []types.Entity{
		{Text: "MIT", Label: "ORG"},
		{Text: "Harvard University", Label: "ORG"},
	}}

	entities, err := NewCompositeDetector(a, b).DetectOrganizations("ignored")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "MIT", entities[0].Text)
	assert.Equal(t, "Harvard University", entities[1].Text)
}

func TestCompositeDetectorPartialFailure(t *testing.T) {
	failing := &stubDetector{err: assert.AnError}
	ok := &stubDetector{entities: []types.Entity{{Text: "Yale University", Label: "ORG"}}}

	entities, err := NewCompositeDetector(failing, ok).DetectOrganizations("ignored")
	require.NoError(t, err, "部分识别器失败时应返回其余结果")
	require.Len(t, entities, 1)
}
