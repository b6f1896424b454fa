package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"ats-match-go/internal/api/handler"
	"ats-match-go/internal/api/router"
	"ats-match-go/internal/config"
	"ats-match-go/internal/parser"
	"ats-match-go/internal/processor"
	"ats-match-go/internal/scorer"
	"ats-match-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/require"
)

const (
	testResumeText = `John Doe
Email: john.doe@example.com
Phone: +1 (555) 123-4567

5 years of experience in Python development.
Skills: Python, SQL, Docker, AWS, Machine Learning.
`
	testJDText = `We are hiring a backend engineer.
Required skills: Python, SQL, Docker, AWS.
Requires 3+ years of experience.
`
)

// newTestEngine 构建不依赖外部存储的测试引擎
func newTestEngine(t *testing.T, apiKey string) *server.Hertz {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.APIKey = apiKey
	cfg.Server.DefaultJDText = config.DefaultJDText

	analyzer, err := processor.NewAnalyzer(&processor.Components{
		Extractor:    parser.NewDocumentExtractor(nil),
		ResumeParser: parser.NewResumeParser(parser.WithDetector(parser.NewPatternDetector())),
		JDParser:     parser.NewJDParser(),
		Scorer:       scorer.NewScorer(),
	}, processor.WithDefaultJDText(cfg.Server.DefaultJDText))
	require.NoError(t, err, "构建分析器失败")

	analyzeHandler := handler.NewAnalyzeHandler(cfg, analyzer, nil)

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, analyzeHandler, cfg)
	return h
}

type formFile struct {
	field    string
	filename string
	content  string
}

func buildMultipartForm(t *testing.T, files []formFile, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader([]byte(f.content)))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func performRequest(engine *server.Hertz, method, path string, body *bytes.Buffer, contentType string, headers ...ut.Header) *ut.ResponseRecorder {
	allHeaders := []ut.Header{{Key: "Content-Type", Value: contentType}}
	allHeaders = append(allHeaders, headers...)
	return ut.PerformRequest(engine.Engine, method, path,
		&ut.Body{Body: body, Len: body.Len()},
		allHeaders...,
	)
}

// 验证单份简历评估接口返回完整的评分结果
func TestHandleAnalyze_Success(t *testing.T) {
	engine := newTestEngine(t, "")

	body, contentType := buildMultipartForm(t,
		[]formFile{{field: "resume", filename: "resume.txt", content: testResumeText}},
		map[string]string{"jd_text": testJDText},
	)

	resp := performRequest(engine, "POST", "/api/v1/analyze", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Greater(t, result.ATSScore, 0.0, "总分应大于0")
	require.LessOrEqual(t, result.ATSScore, 100.0)
	require.NotEmpty(t, result.Suggestions, "应返回改进建议")
	require.NotNil(t, result.ParsedResume)
	require.Equal(t, "john.doe@example.com", result.ParsedResume.Email)
}

// 缺少resume文件字段应返回400
func TestHandleAnalyze_MissingResume(t *testing.T) {
	engine := newTestEngine(t, "")

	body, contentType := buildMultipartForm(t, nil, map[string]string{"jd_text": testJDText})

	resp := performRequest(engine, "POST", "/api/v1/analyze", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Contains(t, errResp["error"], "简历文件未找到")
}

// 不支持的文件格式应返回422
func TestHandleAnalyze_UnsupportedFormat(t *testing.T) {
	engine := newTestEngine(t, "")

	body, contentType := buildMultipartForm(t,
		[]formFile{{field: "resume", filename: "resume.xyz", content: "some binary content"}},
		map[string]string{"jd_text": testJDText},
	)

	resp := performRequest(engine, "POST", "/api/v1/analyze", body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

// 未提供JD时使用兜底岗位描述，仍应正常评分
func TestHandleAnalyze_DefaultJD(t *testing.T) {
	engine := newTestEngine(t, "")

	body, contentType := buildMultipartForm(t,
		[]formFile{{field: "resume", filename: "resume.txt", content: testResumeText}},
		nil,
	)

	resp := performRequest(engine, "POST", "/api/v1/analyze", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Greater(t, result.ATSScore, 0.0)
}

// 验证批量排序接口按总分降序返回候选人
func TestHandleRank_Ordering(t *testing.T) {
	engine := newTestEngine(t, "")

	strongResume := testResumeText
	weakResume := "Worked in retail for a while. Skills: Excel."

	body, contentType := buildMultipartForm(t,
		[]formFile{
			{field: "resumes", filename: "weak.txt", content: weakResume},
			{field: "resumes", filename: "strong.txt", content: strongResume},
		},
		map[string]string{"jd_text": testJDText},
	)

	resp := performRequest(engine, "POST", "/api/v1/rank", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)

	var rankResp struct {
		Candidates []types.CandidateResult `json:"candidates"`
		Count      int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rankResp))
	require.Equal(t, 2, rankResp.Count)
	require.Len(t, rankResp.Candidates, 2)
	require.Equal(t, "strong.txt", rankResp.Candidates[0].CandidateName, "强匹配简历应排在首位")
	require.GreaterOrEqual(t, rankResp.Candidates[0].ATSScore, rankResp.Candidates[1].ATSScore)
}

// 无法解析的简历被剔除，不影响其余候选人
func TestHandleRank_DropsUnreadable(t *testing.T) {
	engine := newTestEngine(t, "")

	body, contentType := buildMultipartForm(t,
		[]formFile{
			{field: "resumes", filename: "good.txt", content: testResumeText},
			{field: "resumes", filename: "bad.xyz", content: "unparseable"},
		},
		map[string]string{"jd_text": testJDText},
	)

	resp := performRequest(engine, "POST", "/api/v1/rank", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)

	var rankResp struct {
		Candidates []types.CandidateResult `json:"candidates"`
		Count      int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rankResp))
	require.Equal(t, 1, rankResp.Count)
	require.Equal(t, "good.txt", rankResp.Candidates[0].CandidateName)
}

// 空的resumes字段应返回400
func TestHandleRank_NoResumes(t *testing.T) {
	engine := newTestEngine(t, "")

	body, contentType := buildMultipartForm(t, nil, map[string]string{"jd_text": testJDText})

	resp := performRequest(engine, "POST", "/api/v1/rank", body, contentType)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

// 健康检查不需要鉴权
// 未配置数据库与对象存储时，制品查询接口返回503而不是panic
func TestHandleGetArtifacts_StorageUnavailable(t *testing.T) {
	engine := newTestEngine(t, "")

	resp := ut.PerformRequest(engine.Engine, "GET",
		"/api/v1/submissions/0190a1b2-0000-7000-8000-000000000000/artifacts", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Contains(t, payload["error"], "未配置")
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t, "secret-key")

	resp := ut.PerformRequest(engine.Engine, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

// 配置了api_key时，业务接口要求正确的X-API-Key请求头
func TestAPIKeyAuth(t *testing.T) {
	engine := newTestEngine(t, "secret-key")

	body, contentType := buildMultipartForm(t,
		[]formFile{{field: "resume", filename: "resume.txt", content: testResumeText}},
		map[string]string{"jd_text": testJDText},
	)
	resp := performRequest(engine, "POST", "/api/v1/analyze", body, contentType)
	require.Equal(t, http.StatusUnauthorized, resp.Code, "缺少API密钥应返回401")

	body2, contentType2 := buildMultipartForm(t,
		[]formFile{{field: "resume", filename: "resume.txt", content: testResumeText}},
		map[string]string{"jd_text": testJDText},
	)
	resp2 := performRequest(engine, "POST", "/api/v1/analyze", body2, contentType2,
		ut.Header{Key: "X-API-Key", Value: "secret-key"})
	require.Equal(t, http.StatusOK, resp2.Code, "携带正确密钥应放行")

	body3, contentType3 := buildMultipartForm(t,
		[]formFile{{field: "resume", filename: "resume.txt", content: testResumeText}},
		map[string]string{"jd_text": testJDText},
	)
	resp3 := performRequest(engine, "POST", "/api/v1/analyze", body3, contentType3,
		ut.Header{Key: "X-API-Key", Value: "wrong-key"})
	require.Equal(t, http.StatusUnauthorized, resp3.Code, "错误密钥应拒绝")
}
