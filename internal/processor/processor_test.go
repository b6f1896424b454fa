package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"ats-match-go/internal/parser"
	"ats-match-go/internal/scorer"
	"ats-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopDetector struct{}

func (noopDetector) DetectOrganizations(text string) ([]types.Entity, error) {
	return nil, nil
}

func frozenClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	components := &Components{
		Extractor:    parser.NewDocumentExtractor(nil),
		ResumeParser: parser.NewResumeParser(parser.WithDetector(noopDetector{}), parser.WithClock(frozenClock())),
		JDParser:     parser.NewJDParser(),
		Scorer:       scorer.NewScorer(),
	}
	analyzer, err := NewAnalyzer(components)
	require.NoError(t, err, "创建Analyzer不应失败")
	return analyzer
}

const testResumeText = `John Doe
Email: john.doe@example.com
Phone: +1 (555) 123-4567
Senior engineer with 5 years of experience in Python development.
Skills: Python, SQL, Docker, AWS, Machine Learning.`

const testJDText = `Looking for a backend engineer with strong Python and SQL skills.
Experience with Docker and AWS preferred. Requires 3+ years of experience.`

func textDocument(name, content string) *Document {
	return &Document{
		Filename: name,
		MIMEType: "text/plain",
		Data:     []byte(content),
	}
}

func TestAnalyzeResumeEndToEnd(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	result, err := analyzer.AnalyzeResume(context.Background(), textDocument("resume.txt", testResumeText), nil, testJDText)
	require.NoError(t, err, "纯文本简历评估不应失败")
	require.NotNil(t, result)

	assert.Greater(t, result.ATSScore, 0.0, "总分应大于0")
	assert.LessOrEqual(t, result.ATSScore, 100.0, "总分不应超过100")
	assert.Equal(t, 100.0, result.MatchDetails.SkillMatch, "必需技能全部命中时技能分应为满分")
	assert.Equal(t, 100.0, result.MatchDetails.ExperienceMatch, "5年经验满足3年要求时经验分应为满分")
	assert.NotEmpty(t, result.Suggestions, "建议列表不应为空")

	require.NotNil(t, result.ParsedResume)
	assert.Equal(t, "john.doe@example.com", result.ParsedResume.Email)
	assert.Contains(t, result.ParsedResume.Skills, "python")
}

func TestAnalyzeResumeEmptyDocument(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	_, err := analyzer.AnalyzeResume(context.Background(), nil, nil, testJDText)
	require.Error(t, err, "空简历应返回错误")
	assert.True(t, errors.Is(err, ErrExtractTextFailed), "应可通过errors.Is识别提取错误")

	_, err = analyzer.AnalyzeResume(context.Background(), &Document{Filename: "empty.txt"}, nil, testJDText)
	require.Error(t, err, "零字节简历应返回错误")
}

func TestAnalyzeResumeUnsupportedFormat(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	doc := &Document{Filename: "resume.xyz", Data: []byte("some content")}
	_, err := analyzer.AnalyzeResume(context.Background(), doc, nil, testJDText)
	require.Error(t, err, "不支持的格式应返回错误")
	assert.True(t, errors.Is(err, ErrExtractTextFailed))

	var analyzeErr *AnalyzeError
	require.True(t, errors.As(err, &analyzeErr))
	assert.Equal(t, "resume.xyz", analyzeErr.Filename)
	assert.Equal(t, "extract", analyzeErr.Op)
}

func TestAnalyzeResumeDefaultJD(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	// 不提供JD时使用兜底JD文本，流程照常完成
	result, err := analyzer.AnalyzeResume(context.Background(), textDocument("resume.txt", testResumeText), nil, "")
	require.NoError(t, err)
	assert.Greater(t, result.ATSScore, 0.0, "兜底JD下仍应产生有效分数")
}

func TestAnalyzeResumeJDFromFile(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	jdFile := textDocument("jd.txt", testJDText)
	fromFile, err := analyzer.AnalyzeResume(context.Background(), textDocument("resume.txt", testResumeText), jdFile, "")
	require.NoError(t, err)

	fromText, err := analyzer.AnalyzeResume(context.Background(), textDocument("resume.txt", testResumeText), nil, testJDText)
	require.NoError(t, err)

	assert.Equal(t, fromText.ATSScore, fromFile.ATSScore, "JD文件与等价JD文本应得到相同分数")
}

func TestRankCandidatesOrdering(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	strong := textDocument("strong.txt", testResumeText)
	weak := textDocument("weak.txt", `Jane Smith
Worked in retail for 2 years. Skills: Excel.`)
	medium := textDocument("medium.txt", `Bob Lee
bob@example.com
3 years of experience in Python development. Skills: Python, SQL.`)

	ranked, err := analyzer.RankCandidates(context.Background(), nil, testJDText, []*Document{weak, strong, medium})
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "strong.txt", ranked[0].CandidateName, "最匹配的简历应排第一")
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].ATSScore, ranked[i].ATSScore, "结果应按总分降序")
	}
}

func TestRankCandidatesDropsFailures(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	good := textDocument("good.txt", testResumeText)
	bad := &Document{Filename: "bad.xyz", Data: []byte("unsupported")}

	ranked, err := analyzer.RankCandidates(context.Background(), nil, testJDText, []*Document{bad, good})
	require.NoError(t, err, "单份简历失败不应使整批失败")
	require.Len(t, ranked, 1, "失败的简历应被丢弃")
	assert.Equal(t, "good.txt", ranked[0].CandidateName)
}

func TestRankCandidatesMissingSkillsNone(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	ranked, err := analyzer.RankCandidates(context.Background(), nil, testJDText, []*Document{textDocument("full.txt", testResumeText)})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "None", ranked[0].MissingSkills, "无缺失技能时应显示None")
	assert.Contains(t, ranked[0].MatchedSkills, "python")
}

func TestNewAnalyzerValidation(t *testing.T) {
	_, err := NewAnalyzer(nil)
	assert.Error(t, err, "空组件应报错")

	_, err = NewAnalyzer(&Components{})
	assert.Error(t, err, "缺少提取器应报错")
}
