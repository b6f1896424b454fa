package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJD = `We are looking for a Senior Software Engineer with 5+ years of experience.
Must be proficient in Python, JavaScript, React, and Node.js.
Experience deploying with AWS, Docker, and Kubernetes is required.
Strong knowledge of SQL databases.
Bachelor's degree in Computer Science required.`

func TestParseJDRequiredSkills(t *testing.T) {
	job := NewJDParser().Parse(sampleJD)

	expected := []string{"python", "javascript", "react", "node.js", "aws", "docker", "kubernetes", "sql"}
	for _, skill := range expected {
		assert.Contains(t, job.RequiredSkills, skill, "必备技能应包含%s", skill)
	}
}

func TestParseJDMinYears(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"加号写法", "5+ years of experience", 5},
		{"at least写法", "at least 3 years in backend development", 3},
		{"minimum写法", "minimum of 7 years required", 7},
		{"区间写法取最大信号", "3-5 years of experience", 5},
		{"多处出现取最大", "2 years with Go. 6+ years overall experience required.", 6},
		{"未写明要求", "passionate engineers welcome", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJDParser().Parse(tt.text)
			assert.Equal(t, tt.expected, job.MinYearsRequired)
		})
	}
}

func TestParseJDEducationRequirements(t *testing.T) {
	job := NewJDParser().Parse(sampleJD)
	assert.Contains(t, job.EducationRequirements, "bachelor")

	job = NewJDParser().Parse("PhD or Master's degree in a quantitative field preferred")
	assert.Contains(t, job.EducationRequirements, "phd")
	assert.Contains(t, job.EducationRequirements, "master")

	job = NewJDParser().Parse("no formal education required")
	assert.Empty(t, job.EducationRequirements)
}

func TestParseJDEndToEnd(t *testing.T) {
	// 完整示例：8项必备技能与5年年限要求
	job := NewJDParser().Parse(sampleJD)

	require.Equal(t, 5, job.MinYearsRequired)
	skills := job.SkillSet()
	for _, s := range []string{"python", "javascript", "react", "node.js", "aws", "docker", "kubernetes", "sql"} {
		_, ok := skills[s]
		assert.True(t, ok, "技能集合应包含%s", s)
	}
}
