package parser

import (
	"regexp"
	"sort"
	"sync"
)

// skillDB 内置技能词表，全部为小写的规范形式
var skillDB = []string{
	// 编程语言
	"python", "java", "c++", "c", "c#", "ruby", "php", "swift", "kotlin", "go", "rust",
	"typescript", "javascript", "scala", "perl", "r", "matlab", "dart", "lua", "shell",
	"bash", "powershell",
	// Web开发
	"html", "css", "react", "angular", "vue", "node.js", "django", "flask", "spring boot",
	"asp.net", "laravel", "ruby on rails", "jquery", "bootstrap", "tailwind", "sass",
	"less", "graphql", "rest api", "soap",
	// 数据科学与AI
	"machine learning", "deep learning", "nlp", "computer vision", "tensorflow", "pytorch",
	"keras", "scikit-learn", "pandas", "numpy", "matplotlib", "seaborn", "opencv",
	"hugging face", "transformers", "llm", "generative ai", "data analysis",
	"data visualization", "big data", "spark", "hadoop",
	// 数据库
	"sql", "mysql", "postgresql", "mongodb", "redis", "oracle", "sql server", "sqlite",
	"cassandra", "dynamodb", "elasticsearch", "firebase", "snowflake", "databricks",
	// DevOps与云
	"aws", "azure", "google cloud", "gcp", "docker", "kubernetes", "jenkins", "gitlab ci",
	"github actions", "terraform", "ansible", "linux", "unix", "nginx", "apache",
	"circleci", "travis ci",
	// 商业与数据工具
	"excel", "power bi", "tableau", "salesforce", "sap", "jira", "confluence",
	"sharepoint", "ms office", "google analytics", "seo", "sem", "crm",
	// 工具与其他
	"git", "github", "gitlab", "bitbucket", "trello", "slack", "agile", "scrum", "kanban",
	"sdlc", "unit testing", "selenium", "cypress", "jest", "mocha", "junit",
	// 软技能
	"communication", "leadership", "teamwork", "problem solving", "critical thinking",
	"time management", "adaptability", "creativity", "collaboration", "mentoring",
	"presentation", "project management", "negotiation",
}

// skillSynonyms 同义词到规范形式的映射
// 注意：scikit-learn中的连字符会被规范化去掉，所以sklearn的匹配面为"sklearn"
var skillSynonyms = map[string]string{
	"js":                  "javascript",
	"reactjs":             "react",
	"react.js":            "react",
	"nodejs":              "node.js",
	"node js":             "node.js",
	"k8s":                 "kubernetes",
	"postgres":            "postgresql",
	"ml":                  "machine learning",
	"sklearn":             "scikit-learn",
	"scikitlearn":         "scikit-learn",
	"golang":              "go",
	"csharp":              "c#",
	"tf":                  "tensorflow",
	"vuejs":               "vue",
	"vue.js":              "vue",
	"angularjs":           "angular",
	"springboot":          "spring boot",
	"restful api":         "rest api",
	"amazon web services": "aws",
}

// SkillVocabulary 技能词表：规范技能集合、同义词映射与预编译的边界匹配模式
// 启动时构建一次，之后只读
type SkillVocabulary struct {
	canonical map[string]struct{}
	synonyms  map[string]string
	patterns  map[string]*regexp.Regexp // 匹配面(词表项+同义词) -> 边界正则
	surfaces  []string                  // 固定迭代顺序
}

// NewSkillVocabulary 从规范词表与同义词映射构建词表
// 匹配面为词表与同义词键的并集，命中后一律映射为规范形式
func NewSkillVocabulary(skills []string, synonyms map[string]string) *SkillVocabulary {
	v := &SkillVocabulary{
		canonical: make(map[string]struct{}, len(skills)),
		synonyms:  make(map[string]string, len(synonyms)),
		patterns:  make(map[string]*regexp.Regexp, len(skills)+len(synonyms)),
	}

	for _, s := range skills {
		v.canonical[s] = struct{}{}
	}
	for surface, canon := range synonyms {
		v.synonyms[surface] = canon
	}

	surfaceSet := make(map[string]struct{}, len(skills)+len(synonyms))
	for _, s := range skills {
		surfaceSet[s] = struct{}{}
	}
	for surface := range synonyms {
		surfaceSet[surface] = struct{}{}
	}

	for surface := range surfaceSet {
		// 边界感知匹配，防止"go"命中"google"
		v.patterns[surface] = regexp.MustCompile(`(?:^|[\s,.])` + regexp.QuoteMeta(surface) + `(?:[\s,.]|$)`)
		v.surfaces = append(v.surfaces, surface)
	}
	sort.Strings(v.surfaces)

	return v
}

// Contains 判断一个技能是否为词表中的规范项
func (v *SkillVocabulary) Contains(skill string) bool {
	_, ok := v.canonical[skill]
	return ok
}

// Canonical 将任意匹配面映射为规范形式
// 非词表项返回原值和false
func (v *SkillVocabulary) Canonical(surface string) (string, bool) {
	if canon, ok := v.synonyms[surface]; ok {
		return canon, true
	}
	if _, ok := v.canonical[surface]; ok {
		return surface, true
	}
	return surface, false
}

// Surfaces 返回全部匹配面，顺序固定
func (v *SkillVocabulary) Surfaces() []string {
	return v.surfaces
}

// Pattern 返回某个匹配面的预编译边界正则
func (v *SkillVocabulary) Pattern(surface string) *regexp.Regexp {
	return v.patterns[surface]
}

// Size 规范技能数
func (v *SkillVocabulary) Size() int {
	return len(v.canonical)
}

var (
	defaultVocabOnce sync.Once
	defaultVocab     *SkillVocabulary
)

// DefaultVocabulary 返回进程级共享的内置词表，只构建一次
func DefaultVocabulary() *SkillVocabulary {
	defaultVocabOnce.Do(func() {
		defaultVocab = NewSkillVocabulary(skillDB, skillSynonyms)
	})
	return defaultVocab
}
