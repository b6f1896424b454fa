package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSkillsBasic(t *testing.T) {
	text := "Proficient in Python, Java and SQL. Built pipelines with Docker and Kubernetes."
	skills := ExtractSkills(text, DefaultVocabulary())

	assert.Contains(t, skills, "python")
	assert.Contains(t, skills, "java")
	assert.Contains(t, skills, "sql")
	assert.Contains(t, skills, "docker")
	assert.Contains(t, skills, "kubernetes")
}

func TestExtractSkillsBoundarySafety(t *testing.T) {
	// 子串不应命中：googler里不含go，javascripting里不含javascript
	skills := ExtractSkills("worked as a googler on javascripting frameworks", DefaultVocabulary())
	assert.NotContains(t, skills, "go", "go不应从googler中被误提取")
	assert.NotContains(t, skills, "javascript", "javascript不应从javascripting中被误提取")
}

func TestExtractSkillsSynonymCollapse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		canonical string
	}{
		{"k8s归一为kubernetes", "deployed services on k8s clusters", "kubernetes"},
		{"js归一为javascript", "wrote frontend code in js", "javascript"},
		{"reactjs归一为react", "built SPA with reactjs", "react"},
		{"react.js归一为react", "experience with react.js components", "react"},
		{"nodejs归一为node.js", "backend in nodejs", "node.js"},
		{"postgres归一为postgresql", "stored data in postgres", "postgresql"},
		{"golang归一为go", "microservices in golang", "go"},
		{"sklearn归一为scikit-learn", "models built with sklearn", "scikit-learn"},
	}

	vocab := DefaultVocabulary()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skills := ExtractSkills(tt.text, vocab)
			assert.Contains(t, skills, tt.canonical, "同义词应收敛到规范形式")
		})
	}
}

func TestExtractSkillsNoSurfaceFormLeaks(t *testing.T) {
	// 输出中绝不出现未规范化的表面形式
	skills := ExtractSkills("k8s and reactjs and golang", DefaultVocabulary())
	assert.NotContains(t, skills, "k8s")
	assert.NotContains(t, skills, "reactjs")
	assert.NotContains(t, skills, "golang")
}

func TestExtractSkillsProficiencyPhrases(t *testing.T) {
	// 能力陈述短语的第二遍扫描，可找回多词技能
	skills := ExtractSkills("Candidate has extensive experience with machine learning systems", DefaultVocabulary())
	assert.Contains(t, skills, "machine learning")

	skills = ExtractSkills("proficient in project management", DefaultVocabulary())
	assert.Contains(t, skills, "project management")
}

func TestExtractSkillsSpecialCharTerms(t *testing.T) {
	skills := ExtractSkills("Languages: C++, C#, and Node.js", DefaultVocabulary())
	assert.Contains(t, skills, "c++")
	assert.Contains(t, skills, "c#")
	assert.Contains(t, skills, "node.js")
}

func TestExtractSkillsDeduplicated(t *testing.T) {
	skills := ExtractSkills("python python js javascript", DefaultVocabulary())

	counts := make(map[string]int)
	for _, s := range skills {
		counts[s]++
	}
	for skill, n := range counts {
		assert.Equal(t, 1, n, "技能%s出现了%d次，输出应去重", skill, n)
	}
}

func TestExtractSkillsEmptyText(t *testing.T) {
	assert.Empty(t, ExtractSkills("", DefaultVocabulary()), "空文本不应提取出任何技能")
}

func TestNormalizeSkill(t *testing.T) {
	vocab := DefaultVocabulary()
	assert.Equal(t, "kubernetes", NormalizeSkill("K8s", vocab))
	assert.Equal(t, "kubernetes", NormalizeSkill("kubernetes", vocab))
	assert.Equal(t, "javascript", NormalizeSkill("JS", vocab))
	// 未知技能保持小写原样
	assert.Equal(t, "cobol", NormalizeSkill("COBOL", vocab))
}

func TestVocabularySynonymClosure(t *testing.T) {
	// 每个同义词组的全部成员都必须收敛到同一个规范形式
	vocab := DefaultVocabulary()
	for surface, expected := range skillSynonyms {
		canon, ok := vocab.Canonical(surface)
		require.True(t, ok, "同义词%s应在词表中可解析", surface)
		assert.Equal(t, expected, canon, "同义词%s未收敛到规范形式", surface)
		assert.True(t, vocab.Contains(canon), "规范形式%s必须是词表项", canon)
	}
}
