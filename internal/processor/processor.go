// Package processor 编排一次简历评估的完整流程：
// 文本提取、简历/JD解析、打分、建议生成与结果落库。
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ats-match-go/internal/config"
	"ats-match-go/internal/constants"
	"ats-match-go/internal/parser"
	"ats-match-go/internal/scorer"
	"ats-match-go/internal/storage"
	"ats-match-go/internal/storage/models"
	"ats-match-go/internal/tracing"
	"ats-match-go/internal/types"
	"ats-match-go/pkg/utils"

	"github.com/gofrs/uuid/v5"
	googleuuid "github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultWorkerCount = 4

// jobCreateLockTTL 岗位创建锁的过期时间，防止持锁方异常退出后死锁
const jobCreateLockTTL = 10 * time.Second

// Components 聚合分析流程的依赖组件
type Components struct {
	Extractor    *parser.DocumentExtractor
	ResumeParser *parser.ResumeParser
	JDParser     *parser.JDParser
	Scorer       *scorer.Scorer

	// Storage 可选，为nil时跳过所有持久化步骤
	Storage *storage.Storage
}

// Document 一份待处理的文档（简历或JD文件）
type Document struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Analyzer 简历评估编排器
type Analyzer struct {
	components    *Components
	defaultJDText string
	workerCount   int
	mqExchange    string
	mqRoutingKey  string
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// AnalyzerOption 配置 Analyzer
type AnalyzerOption func(*Analyzer)

// WithDefaultJDText 设置未提供JD时使用的兜底JD文本
func WithDefaultJDText(text string) AnalyzerOption {
	return func(a *Analyzer) {
		if text != "" {
			a.defaultJDText = text
		}
	}
}

// WithWorkerCount 设置批量排序时的并发工作协程数
func WithWorkerCount(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.workerCount = n
		}
	}
}

// WithAnalyzerLogger 设置日志记录器
func WithAnalyzerLogger(logger zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithAnalysisRouting 设置分析完成事件的交换机与路由键
func WithAnalysisRouting(exchange, routingKey string) AnalyzerOption {
	return func(a *Analyzer) {
		if exchange != "" {
			a.mqExchange = exchange
		}
		if routingKey != "" {
			a.mqRoutingKey = routingKey
		}
	}
}

// NewAnalyzer 创建简历评估编排器
func NewAnalyzer(components *Components, options ...AnalyzerOption) (*Analyzer, error) {
	if components == nil {
		return nil, fmt.Errorf("组件不能为空")
	}
	if components.Extractor == nil {
		return nil, fmt.Errorf("文档提取器不能为空")
	}
	if components.ResumeParser == nil {
		return nil, fmt.Errorf("简历解析器不能为空")
	}
	if components.JDParser == nil {
		return nil, fmt.Errorf("JD解析器不能为空")
	}
	if components.Scorer == nil {
		return nil, fmt.Errorf("评分器不能为空")
	}

	a := &Analyzer{
		components:    components,
		defaultJDText: config.DefaultJDText,
		workerCount:   defaultWorkerCount,
		mqExchange:    "analysis.events.exchange",
		mqRoutingKey:  "analysis.completed",
		logger:        zerolog.Nop(),
		tracer:        otel.Tracer("ats-match-go/processor"),
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// AnalyzeResume 对单份简历执行完整评估。
// jdFile 与 jdText 二选一；都缺失时使用兜底JD文本。
// 文本提取失败是致命错误，持久化失败仅记录警告不影响返回结果。
func (a *Analyzer) AnalyzeResume(ctx context.Context, resume *Document, jdFile *Document, jdText string) (*types.AnalysisResult, error) {
	if resume == nil || len(resume.Data) == 0 {
		return nil, NewExtractError("", "简历内容为空")
	}

	ctx, span := a.tracer.Start(ctx, "Analyzer.AnalyzeResume",
		trace.WithAttributes(attribute.String("resume.filename", resume.Filename)))
	defer span.End()

	resumeText, err := a.components.Extractor.ExtractText(ctx, resume.Data, resume.Filename, resume.MIMEType)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return nil, NewExtractError(resume.Filename, err.Error())
	}

	resolvedJD := a.resolveJDText(ctx, jdFile, jdText)

	resumeMD5 := utils.CalculateMD5([]byte(resumeText))
	jdMD5 := utils.CalculateMD5([]byte(resolvedJD))

	parsedResume := a.components.ResumeParser.Parse(resumeText)
	parsedJob := a.components.JDParser.Parse(resolvedJD)

	breakdown := a.cachedScore(ctx, resumeMD5, jdMD5)
	if breakdown == nil {
		breakdown = a.components.Scorer.Score(resumeText, resolvedJD, parsedResume, parsedJob)
		a.cacheScore(ctx, resumeMD5, jdMD5, breakdown)
	} else {
		span.SetAttributes(attribute.Bool("score.cache_hit", true))
	}

	suggestions := scorer.GenerateSuggestions(breakdown.MissingSkills())

	a.persistEvaluation(ctx, resume, resumeText, resolvedJD, resumeMD5, jdMD5, parsedResume, parsedJob, breakdown, suggestions)

	span.SetAttributes(attribute.Float64("score.overall", breakdown.OverallScore))
	span.SetStatus(codes.Ok, "")

	return &types.AnalysisResult{
		ATSScore:     breakdown.OverallScore,
		MatchDetails: breakdown.Details,
		Suggestions:  suggestions,
		ParsedResume: parsedResume,
	}, nil
}

// RankCandidates 批量评估多份简历并按总分降序排序。
// 单份简历失败时记录日志并丢弃，不影响其余简历。
func (a *Analyzer) RankCandidates(ctx context.Context, jdFile *Document, jdText string, resumes []*Document) ([]types.CandidateResult, error) {
	// 排序会话ID只用于日志与追踪关联
	rankSessionID := googleuuid.NewString()
	ctx, span := a.tracer.Start(ctx, "Analyzer.RankCandidates",
		trace.WithAttributes(
			attribute.Int("resume.count", len(resumes)),
			attribute.String("rank.session_id", rankSessionID),
		))
	defer span.End()

	a.logger.Info().Str("rank_session_id", rankSessionID).Int("resume_count", len(resumes)).Msg("开始批量简历排序")

	resolvedJD := a.resolveJDText(ctx, jdFile, jdText)
	parsedJob := a.components.JDParser.Parse(resolvedJD)

	results := make([]*types.CandidateResult, len(resumes))

	var wg sync.WaitGroup
	sem := make(chan struct{}, a.workerCount)

	for i, doc := range resumes {
		if doc == nil || len(doc.Data) == 0 {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, doc *Document) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := a.scoreCandidate(ctx, doc, resolvedJD, parsedJob)
			if err != nil {
				a.logger.Warn().Err(err).Str("filename", doc.Filename).Msg("简历评估失败，跳过该候选人")
				return
			}
			results[idx] = result
		}(i, doc)
	}
	wg.Wait()

	ranked := make([]types.CandidateResult, 0, len(resumes))
	for _, r := range results {
		if r != nil {
			ranked = append(ranked, *r)
		}
	}

	// 稳定排序保证同分时维持输入顺序
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ATSScore > ranked[j].ATSScore
	})

	span.SetAttributes(attribute.Int("result.count", len(ranked)))
	span.SetStatus(codes.Ok, "")
	return ranked, nil
}

// scoreCandidate 为排序流程评估单份简历
func (a *Analyzer) scoreCandidate(ctx context.Context, doc *Document, jdText string, parsedJob *types.ParsedJob) (*types.CandidateResult, error) {
	resumeText, err := a.components.Extractor.ExtractText(ctx, doc.Data, doc.Filename, doc.MIMEType)
	if err != nil {
		return nil, NewExtractError(doc.Filename, err.Error())
	}

	parsedResume := a.components.ResumeParser.Parse(resumeText)
	breakdown := a.components.Scorer.Score(resumeText, jdText, parsedResume, parsedJob)

	return &types.CandidateResult{
		CandidateName:  doc.Filename,
		ATSScore:       breakdown.OverallScore,
		SkillMatch:     breakdown.Details.SkillMatch,
		KeywordDensity: breakdown.Details.KeywordDensity,
		MatchedSkills:  joinOrNone(breakdown.Details.MatchedSkills),
		MissingSkills:  joinOrNone(breakdown.MissingSkills()),
	}, nil
}

// resolveJDText 确定本次评估使用的JD文本。
// 优先用JD文件的提取结果，其次是直接传入的文本，最后退回兜底JD。
func (a *Analyzer) resolveJDText(ctx context.Context, jdFile *Document, jdText string) string {
	if jdFile != nil && len(jdFile.Data) > 0 {
		text, err := a.components.Extractor.ExtractText(ctx, jdFile.Data, jdFile.Filename, jdFile.MIMEType)
		if err != nil {
			a.logger.Warn().Err(err).Str("filename", jdFile.Filename).Msg("JD文件提取失败，回退到文本JD")
		} else if strings.TrimSpace(text) != "" {
			return text
		}
	}
	if strings.TrimSpace(jdText) != "" {
		return jdText
	}
	a.logger.Debug().Msg("未提供JD，使用兜底JD文本")
	return a.defaultJDText
}

// cachedScore 查询评分缓存，任何失败都按未命中处理
func (a *Analyzer) cachedScore(ctx context.Context, resumeMD5, jdMD5 string) *types.ScoreBreakdown {
	if a.components.Storage == nil || a.components.Storage.Redis == nil {
		return nil
	}
	breakdown, err := a.components.Storage.Redis.GetCachedScore(ctx, resumeMD5, jdMD5)
	if err != nil {
		if err != storage.ErrNotFound {
			a.logger.Warn().Err(err).Msg("读取评分缓存失败")
		}
		return nil
	}
	return breakdown
}

// cacheScore 写入评分缓存，失败仅记录警告
func (a *Analyzer) cacheScore(ctx context.Context, resumeMD5, jdMD5 string, breakdown *types.ScoreBreakdown) {
	if a.components.Storage == nil || a.components.Storage.Redis == nil {
		return
	}
	if err := a.components.Storage.Redis.CacheScore(ctx, resumeMD5, jdMD5, breakdown); err != nil {
		a.logger.Warn().Err(err).Msg("写入评分缓存失败")
	}
}

// persistEvaluation 将本次评估落库并登记Outbox消息。
// 所有持久化失败都只记录警告，评估结果照常返回给调用方。
func (a *Analyzer) persistEvaluation(ctx context.Context, resume *Document, resumeText, jdText, resumeMD5, jdMD5 string, parsedResume *types.ParsedResume, parsedJob *types.ParsedJob, breakdown *types.ScoreBreakdown, suggestions []string) {
	store := a.components.Storage
	if store == nil || store.MySQL == nil {
		return
	}

	submissionUUID := a.newSubmissionUUID(ctx, resume, resumeMD5)
	if submissionUUID == "" {
		return
	}

	job, err := a.findOrCreateJob(ctx, jdText, jdMD5, parsedJob)
	if err != nil {
		a.logger.Warn().Err(err).Msg("查找或创建岗位记录失败，跳过落库")
		return
	}

	originalPath, parsedPath := a.uploadArtifacts(ctx, submissionUUID, resume, resumeText)
	status := models.SubmissionStatusEvaluated
	if store.MinIO != nil && (originalPath == "" || parsedPath == "") {
		status = models.SubmissionStatusUploadFailed
	}

	var candidateID *string
	if parsedResume.HasEmail() || parsedResume.HasPhone() {
		email, phone := "", ""
		if parsedResume.HasEmail() {
			email = parsedResume.Email
		}
		if parsedResume.HasPhone() {
			phone = parsedResume.Phone
		}
		candidate, err := store.MySQL.FindOrCreateCandidate(ctx, nil, "", email, phone)
		if err != nil {
			a.logger.Warn().Err(err).Msg("查找或创建候选人失败")
		} else {
			candidateID = &candidate.CandidateID
		}
	}

	basicInfo, err := json.Marshal(parsedResume)
	if err != nil {
		a.logger.Warn().Err(err).Msg("序列化简历画像失败")
		basicInfo = []byte("{}")
	}

	submission := &models.ResumeSubmission{
		SubmissionUUID:      submissionUUID,
		CandidateID:         candidateID,
		SubmissionTimestamp: time.Now(),
		OriginalFilename:    resume.Filename,
		OriginalFilePathOSS: originalPath,
		ParsedTextPathOSS:   parsedPath,
		RawTextMD5:          resumeMD5,
		ParsedBasicInfo:     basicInfo,
		ParserVersion:       constants.DefaultParserVer,
		ProcessingStatus:    status,
	}

	matchedJSON, _ := models.StringsToJSON(breakdown.Details.MatchedSkills)
	missingJSON, _ := models.StringsToJSON(breakdown.MissingSkills())
	suggestionsJSON, _ := models.StringsToJSON(suggestions)

	now := time.Now()
	evaluation := &models.MatchEvaluation{
		SubmissionUUID:    submissionUUID,
		JobID:             job.JobID,
		OverallScore:      breakdown.OverallScore,
		SkillMatchScore:   breakdown.Details.SkillMatch,
		KeywordScore:      breakdown.Details.KeywordDensity,
		ExperienceScore:   breakdown.Details.ExperienceMatch,
		QualityScore:      breakdown.Details.ResumeQuality,
		MatchedSkillsJSON: matchedJSON,
		MissingSkillsJSON: missingJSON,
		SuggestionsJSON:   suggestionsJSON,
		ScorerVersion:     constants.DefaultScorerVer,
		EvaluatedAt:       utils.TimePtr(now),
	}

	outboxMsg := a.buildOutboxMessage(submissionUUID, job.JobID, resume.Filename, breakdown, now)

	if err := store.MySQL.SaveEvaluationWithOutbox(ctx, submission, evaluation, outboxMsg); err != nil {
		a.logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("评估结果落库失败")
		// 落库失败时回滚去重登记，同一文件重试时不会被当作已处理
		if store.Redis != nil {
			fileMD5 := utils.CalculateMD5(resume.Data)
			if remErr := store.Redis.RemoveFileMD5(ctx, fileMD5); remErr != nil {
				a.logger.Warn().Err(remErr).Msg("回滚文件去重登记失败")
			}
		}
	}
}

// newSubmissionUUID 生成提交UUID，文件MD5已登记过时复用首次的UUID
func (a *Analyzer) newSubmissionUUID(ctx context.Context, resume *Document, resumeMD5 string) string {
	newUUID, err := uuid.NewV7()
	if err != nil {
		a.logger.Warn().Err(err).Msg("生成UUIDv7失败")
		return ""
	}
	submissionUUID := newUUID.String()

	store := a.components.Storage
	if store.Redis != nil {
		fileMD5 := utils.CalculateMD5(resume.Data)
		exists, existingUUID, err := store.Redis.CheckAndSetFileMD5(ctx, fileMD5, submissionUUID)
		if err != nil {
			a.logger.Warn().Err(err).Msg("文件去重检查失败")
		} else if exists && existingUUID != "" {
			a.logger.Debug().Str("submission_uuid", existingUUID).Msg("文件已处理过，复用已有提交记录")
			return existingUUID
		}
	}
	return submissionUUID
}

// findOrCreateJob 按JD文本MD5复用岗位记录，未命中时新建
func (a *Analyzer) findOrCreateJob(ctx context.Context, jdText, jdMD5 string, parsedJob *types.ParsedJob) (*models.Job, error) {
	store := a.components.Storage

	job, err := store.MySQL.FindJobByTextMD5(ctx, jdMD5)
	if err == nil {
		return job, nil
	}

	// 并发分析同一份JD时用分布式锁避免重复建岗位，拿到锁后再查一次
	if store.Redis != nil {
		lockKey := fmt.Sprintf(constants.KeyJobCreateLock, jdMD5)
		lockValue, lockErr := store.Redis.AcquireLock(ctx, lockKey, jobCreateLockTTL)
		if lockErr != nil {
			a.logger.Warn().Err(lockErr).Msg("获取岗位创建锁失败")
		} else if lockValue != "" {
			defer func() {
				if _, relErr := store.Redis.ReleaseLock(ctx, lockKey, lockValue); relErr != nil {
					a.logger.Warn().Err(relErr).Msg("释放岗位创建锁失败")
				}
			}()
			if job, err := store.MySQL.FindJobByTextMD5(ctx, jdMD5); err == nil {
				return job, nil
			}
		}
	}

	newUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}

	skillsJSON, _ := models.StringsToJSON(parsedJob.RequiredSkills)
	educationJSON, _ := models.StringsToJSON(parsedJob.EducationRequirements)

	job = &models.Job{
		JobID:               newUUID.String(),
		JobDescriptionText:  jdText,
		JDTextMD5:           jdMD5,
		RequiredSkillsJSON:  skillsJSON,
		MinYearsRequired:    parsedJob.MinYearsRequired,
		EducationLevelsJSON: educationJSON,
	}
	if err := store.MySQL.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	if store.Redis != nil {
		if err := store.Redis.CacheJobText(ctx, job.JobID, jdText); err != nil {
			a.logger.Warn().Err(err).Msg("缓存JD文本失败")
		}
	}
	return job, nil
}

// uploadArtifacts 上传原始文件与提取文本到对象存储，失败仅记录警告。
// 返回两个对象在存储中的路径，上传失败的路径为空串。
func (a *Analyzer) uploadArtifacts(ctx context.Context, submissionUUID string, resume *Document, resumeText string) (originalPath, parsedPath string) {
	store := a.components.Storage
	if store.MinIO == nil {
		return "", ""
	}

	ext := filepath.Ext(resume.Filename)
	originalPath, err := store.MinIO.UploadResumeFile(ctx, submissionUUID, ext, bytes.NewReader(resume.Data), int64(len(resume.Data)))
	if err != nil {
		a.logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("上传原始简历失败")
		originalPath = ""
	}
	parsedPath, err = store.MinIO.UploadParsedText(ctx, submissionUUID, resumeText)
	if err != nil {
		a.logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("上传解析文本失败")
		parsedPath = ""
	}
	return originalPath, parsedPath
}

// buildOutboxMessage 构造分析完成事件的Outbox记录
func (a *Analyzer) buildOutboxMessage(submissionUUID, jobID, filename string, breakdown *types.ScoreBreakdown, evaluatedAt time.Time) *models.OutboxMessage {
	store := a.components.Storage
	if store.RabbitMQ == nil {
		return nil
	}

	event := &storage.AnalysisCompletedEvent{
		SubmissionUUID:   submissionUUID,
		JobID:            jobID,
		OverallScore:     breakdown.OverallScore,
		SkillMatchScore:  breakdown.Details.SkillMatch,
		KeywordScore:     breakdown.Details.KeywordDensity,
		ExperienceScore:  breakdown.Details.ExperienceMatch,
		QualityScore:     breakdown.Details.ResumeQuality,
		MissingSkills:    breakdown.MissingSkills(),
		OriginalFilename: filename,
		EvaluatedAt:      evaluatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		a.logger.Warn().Err(err).Msg("序列化分析完成事件失败")
		return nil
	}

	return &models.OutboxMessage{
		AggregateID:      submissionUUID,
		EventType:        storage.EventTypeAnalysisCompleted,
		Payload:          string(payload),
		TargetExchange:   a.mqExchange,
		TargetRoutingKey: a.mqRoutingKey,
		Status:           models.OutboxStatusPending,
	}
}

// joinOrNone 逗号拼接技能列表，空列表返回 "None"
func joinOrNone(skills []string) string {
	if len(skills) == 0 {
		return "None"
	}
	return strings.Join(skills, ", ")
}
