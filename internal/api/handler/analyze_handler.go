package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"time"

	"ats-match-go/internal/config"
	"ats-match-go/internal/logger"
	"ats-match-go/internal/processor"
	"ats-match-go/internal/storage"
	"ats-match-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"
)

// artifactURLExpiry 原始简历预签名下载链接的有效期
const artifactURLExpiry = 15 * time.Minute

// AnalyzeHandler 简历评估HTTP处理器
type AnalyzeHandler struct {
	cfg      *config.Config
	analyzer *processor.Analyzer
	storage  *storage.Storage
}

// NewAnalyzeHandler 创建简历评估处理器
func NewAnalyzeHandler(cfg *config.Config, analyzer *processor.Analyzer, store *storage.Storage) *AnalyzeHandler {
	return &AnalyzeHandler{
		cfg:      cfg,
		analyzer: analyzer,
		storage:  store,
	}
}

// HandleAnalyze 处理单份简历评估请求。
// multipart表单: resume文件必填，jd文件与jd_text二选一，都缺省时使用兜底JD。
func (h *AnalyzeHandler) HandleAnalyze(c context.Context, ctx *app.RequestContext) {
	resumeDoc, err := h.readFormDocument(ctx, "resume")
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "简历文件未找到"})
		return
	}

	jdDoc, _ := h.readFormDocument(ctx, "jd")
	jdText := ctx.PostForm("jd_text")

	result, err := h.analyzer.AnalyzeResume(c, resumeDoc, jdDoc, jdText)
	if err != nil {
		h.writeAnalyzeError(c, ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, result)
}

// HandleRank 处理批量简历排序请求。
// multipart表单: resumes文件可重复，jd文件与jd_text二选一。
func (h *AnalyzeHandler) HandleRank(c context.Context, ctx *app.RequestContext) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "无效的multipart表单"})
		return
	}

	fileHeaders := form.File["resumes"]
	if len(fileHeaders) == 0 {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "至少需要一份简历文件"})
		return
	}

	resumes := make([]*processor.Document, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		doc, err := readFileHeader(fh)
		if err != nil {
			logger.Ctx(c).Warn().Err(err).Str("filename", fh.Filename).Msg("读取上传文件失败，跳过")
			continue
		}
		resumes = append(resumes, doc)
	}
	if len(resumes) == 0 {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "所有简历文件均读取失败"})
		return
	}

	jdDoc, _ := h.readFormDocument(ctx, "jd")
	jdText := ctx.PostForm("jd_text")

	ranked, err := h.analyzer.RankCandidates(c, jdDoc, jdText, resumes)
	if err != nil {
		tracing.RecordHTTPError(trace.SpanFromContext(c), err, consts.StatusInternalServerError)
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"candidates": ranked,
		"count":      len(ranked),
	})
}

// HandleListEvaluations 返回某岗位按总分降序的历史评估记录
func (h *AnalyzeHandler) HandleListEvaluations(c context.Context, ctx *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "数据库未配置"})
		return
	}

	jobID := ctx.Param("job_id")
	if jobID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少job_id"})
		return
	}

	limit := 50
	evaluations, err := h.storage.MySQL.ListEvaluationsByJob(c, jobID, limit)
	if err != nil {
		tracing.RecordHTTPError(trace.SpanFromContext(c), err, consts.StatusInternalServerError)
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	resp := utils.H{
		"job_id":      jobID,
		"evaluations": evaluations,
		"count":       len(evaluations),
	}
	if jdText := h.lookupJobText(c, jobID); jdText != "" {
		resp["job_description_text"] = jdText
	}

	ctx.JSON(consts.StatusOK, resp)
}

// lookupJobText 读取岗位JD文本，优先Redis缓存，未命中时回源MySQL并回填缓存
func (h *AnalyzeHandler) lookupJobText(c context.Context, jobID string) string {
	if h.storage.Redis != nil {
		if text, err := h.storage.Redis.GetJobText(c, jobID); err == nil && text != "" {
			return text
		}
	}

	job, err := h.storage.MySQL.GetJobByID(c, jobID)
	if err != nil {
		return ""
	}
	if h.storage.Redis != nil {
		if err := h.storage.Redis.CacheJobText(c, jobID, job.JobDescriptionText); err != nil {
			logger.Ctx(c).Warn().Err(err).Str("job_id", jobID).Msg("回填JD文本缓存失败")
		}
	}
	return job.JobDescriptionText
}

// HandleGetArtifacts 返回某次提交的原始文件下载链接与解析后的纯文本
func (h *AnalyzeHandler) HandleGetArtifacts(c context.Context, ctx *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "数据库未配置"})
		return
	}
	if h.storage.MinIO == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "对象存储未配置"})
		return
	}

	submissionUUID := ctx.Param("submission_uuid")
	if submissionUUID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少submission_uuid"})
		return
	}

	submission, err := h.storage.MySQL.GetSubmissionByUUID(c, submissionUUID)
	if err != nil {
		ctx.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
		return
	}

	resp := utils.H{
		"submission_uuid":   submission.SubmissionUUID,
		"original_filename": submission.OriginalFilename,
		"processing_status": submission.ProcessingStatus,
	}

	if submission.OriginalFilePathOSS != "" {
		url, err := h.storage.MinIO.GetPresignedURL(c, submission.OriginalFilePathOSS, artifactURLExpiry)
		if err != nil {
			logger.Ctx(c).Warn().Err(err).Str("object", submission.OriginalFilePathOSS).Msg("生成预签名URL失败")
		} else {
			resp["original_file_url"] = url
		}
	}
	if submission.ParsedTextPathOSS != "" {
		text, err := h.storage.MinIO.GetParsedText(c, submission.ParsedTextPathOSS)
		if err != nil {
			logger.Ctx(c).Warn().Err(err).Str("object", submission.ParsedTextPathOSS).Msg("下载解析文本失败")
		} else {
			resp["parsed_text"] = text
		}
	}

	ctx.JSON(consts.StatusOK, resp)
}

// readFormDocument 读取multipart表单中的单个文件字段
func (h *AnalyzeHandler) readFormDocument(ctx *app.RequestContext, field string) (*processor.Document, error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		return nil, err
	}
	return readFileHeader(fileHeader)
}

func readFileHeader(fh *multipart.FileHeader) (*processor.Document, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &processor.Document{
		Filename: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

// writeAnalyzeError 将评估错误映射为HTTP状态码
func (h *AnalyzeHandler) writeAnalyzeError(c context.Context, ctx *app.RequestContext, err error) {
	status := consts.StatusInternalServerError
	if errors.Is(err, processor.ErrExtractTextFailed) {
		// 提取失败通常是客户端上传了不支持或损坏的文件
		status = consts.StatusUnprocessableEntity
	}
	tracing.RecordHTTPError(trace.SpanFromContext(c), err, status)
	logger.Ctx(c).Warn().Err(err).Int("status", status).Msg("简历评估请求失败")
	ctx.JSON(status, utils.H{"error": err.Error()})
}
