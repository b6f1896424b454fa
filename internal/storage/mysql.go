package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ats-match-go/internal/config"
	"ats-match-go/internal/storage/models"
	"ats-match-go/internal/tracing"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("ats-match-go/storage/mysql")

// GormTracingPlugin 是一个GORM插件，用于向OpenTelemetry中添加数据库操作的追踪点
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	dbSystem       string
	disableErrSkip bool
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}

	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}

	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

// before 返回在GORM操作之前执行的回调函数
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		spanName := fmt.Sprintf("%s %s", operation, tableName)
		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}

		sqlStatement := db.Statement.SQL.String()
		if sqlStatement != "" {
			opts = append(opts, trace.WithAttributes(
				attribute.String("db.statement", tracing.SafeSQL(sqlStatement)),
			))
		}

		newCtx, span := p.tracer.Start(ctx, spanName, opts...)

		// 将span保存在DB上下文中，以便在after回调中使用
		db.Statement.Context = context.WithValue(newCtx, "otel-span", span)
	}
}

// after 返回在GORM操作之后执行的回调函数
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value("otel-span").(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if db.Statement.RowsAffected > 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		} else {
			span.SetAttributes(attribute.Int64("db.rows_affected", 0))
		}

		if db.Error != nil {
			if db.Error == gorm.ErrRecordNotFound {
				// ErrRecordNotFound 属于正常业务分支，不作为错误上报
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				span.SetAttributes(attribute.String("error.type", "database_error"))
				span.SetAttributes(attribute.String("error.message", db.Error.Error()))
				span.RecordError(db.Error)
				span.SetStatus(codes.Error, db.Error.Error())
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         mysqlTracer,
		dbName:         dbName,
		dbSystem:       "mysql",
		disableErrSkip: true,
	}
}

// WithDisableErrSkip 设置是否禁用错误跳过
func (p *GormTracingPlugin) WithDisableErrSkip(disable bool) *GormTracingPlugin {
	p.disableErrSkip = disable
	return p
}

// Database 关系数据库接口
type Database interface {
	// DB 返回GORM数据库连接实例
	DB() *gorm.DB

	// Close 关闭数据库连接
	Close() error
}

// 确保MySQL实现了Database接口
var _ Database = (*MySQL)(nil)

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{
		db:  db,
		cfg: cfg,
	}

	// 注册OpenTelemetry追踪插件
	tracingPlugin := NewGormTracingPlugin(cfg.Database).WithDisableErrSkip(true)
	if err := db.Use(tracingPlugin); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	if err := m.autoMigrateSchema(); err != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构
func (m *MySQL) autoMigrateSchema() error {
	currentLogger := m.db.Logger

	// 迁移期间关闭SQL日志打印
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})

	err := silentDB.AutoMigrate(
		&models.Candidate{},
		&models.Job{},
		&models.ResumeSubmission{},
		&models.MatchEvaluation{},
		&models.OutboxMessage{},
	)

	m.db = m.db.Session(&gorm.Session{Logger: currentLogger})

	if err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// CreateJob 创建一个新的Job记录
func (m *MySQL) CreateJob(ctx context.Context, job *models.Job) error {
	return m.db.WithContext(ctx).Create(job).Error
}

// GetJobByID 通过 JobID 获取 Job 记录
func (m *MySQL) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := m.db.WithContext(ctx).Where("job_id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindJobByTextMD5 通过JD文本的MD5查找已有岗位，未找到时返回gorm.ErrRecordNotFound
func (m *MySQL) FindJobByTextMD5(ctx context.Context, textMD5 string) (*models.Job, error) {
	var job models.Job
	if err := m.db.WithContext(ctx).Where("jd_text_md5 = ?", textMD5).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindOrCreateCandidate 按邮箱/电话查找候选人，不存在则创建。
// tx 不为空时在该事务的连接上执行。
func (m *MySQL) FindOrCreateCandidate(ctx context.Context, tx *gorm.DB, name, email, phone string) (*models.Candidate, error) {
	ctx, span := mysqlTracer.Start(ctx, "FindOrCreateCandidate", trace.WithAttributes(
		attribute.String("candidate.email", tracing.SafeAttributeValue("candidate.email", email, tracing.DefaultMaxLength)),
		attribute.String("candidate.phone", tracing.SafeAttributeValue("candidate.phone", phone, tracing.DefaultMaxLength)),
	))
	defer span.End()

	if email == "" && phone == "" {
		err := fmt.Errorf("邮箱和电话至少需要一个")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	db := m.db
	if tx != nil {
		db = tx
	}

	query := db.WithContext(ctx).Model(&models.Candidate{})
	switch {
	case email != "" && phone != "":
		query = query.Where("primary_email = ?", email).Or("primary_phone = ?", phone)
	case email != "":
		query = query.Where("primary_email = ?", email)
	default:
		query = query.Where("primary_phone = ?", phone)
	}

	var candidate models.Candidate
	err := query.First(&candidate).Error
	if err == nil {
		span.SetAttributes(attribute.Bool("candidate.found", true), attribute.String("candidate.id", candidate.CandidateID))
		return &candidate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query candidate")
		return nil, fmt.Errorf("查询候选人失败: %w", err)
	}

	span.SetAttributes(attribute.Bool("candidate.found", false))

	newUUID, err := uuid.NewV7()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate UUIDv7")
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}

	newCandidate := &models.Candidate{
		CandidateID:  newUUID.String(),
		PrimaryName:  name,
		PrimaryEmail: email,
		PrimaryPhone: phone,
	}

	if err := db.WithContext(ctx).Create(newCandidate).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create candidate")
		return nil, fmt.Errorf("创建新候选人失败: %w", err)
	}

	span.SetAttributes(attribute.String("candidate.id", newCandidate.CandidateID))
	return newCandidate, nil
}

// SaveEvaluationWithOutbox 在一个事务内落库简历快照、匹配评估与Outbox消息。
// 评估表按 (submission_uuid, job_id) 唯一，重复评估时覆盖旧的分数字段。
func (m *MySQL) SaveEvaluationWithOutbox(ctx context.Context, submission *models.ResumeSubmission, evaluation *models.MatchEvaluation, outboxMsg *models.OutboxMessage) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveEvaluationWithOutbox",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("submission.uuid", submission.SubmissionUUID),
		attribute.String("job.id", evaluation.JobID),
	)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 简历快照按主键幂等写入
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_uuid"}},
			DoUpdates: clause.AssignmentColumns([]string{"submission_uuid"}),
		}).Create(submission).Error; err != nil {
			return fmt.Errorf("写入简历快照失败: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "submission_uuid"}, {Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"overall_score", "skill_match_score", "keyword_score",
				"experience_score", "quality_score",
				"matched_skills_json", "missing_skills_json", "suggestions_json",
				"scorer_version", "evaluated_at",
			}),
		}).Create(evaluation).Error; err != nil {
			return fmt.Errorf("写入匹配评估失败: %w", err)
		}

		if outboxMsg != nil {
			if err := tx.Create(outboxMsg).Error; err != nil {
				return fmt.Errorf("写入Outbox消息失败: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetEvaluation 获取指定简历与岗位的评估记录
func (m *MySQL) GetEvaluation(ctx context.Context, submissionUUID, jobID string) (*models.MatchEvaluation, error) {
	var evaluation models.MatchEvaluation
	err := m.db.WithContext(ctx).
		Where("submission_uuid = ? AND job_id = ?", submissionUUID, jobID).
		First(&evaluation).Error
	if err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// GetSubmissionByUUID 获取指定提交的简历快照记录
func (m *MySQL) GetSubmissionByUUID(ctx context.Context, submissionUUID string) (*models.ResumeSubmission, error) {
	var submission models.ResumeSubmission
	err := m.db.WithContext(ctx).
		Where("submission_uuid = ?", submissionUUID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListEvaluationsByJob 按总分降序返回某岗位的评估记录
func (m *MySQL) ListEvaluationsByJob(ctx context.Context, jobID string, limit int) ([]models.MatchEvaluation, error) {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.ListEvaluationsByJob",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("job.id", jobID),
		attribute.Int("limit", limit),
	)

	query := m.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("overall_score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var evaluations []models.MatchEvaluation
	if err := query.Find(&evaluations).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(evaluations)))
	span.SetStatus(codes.Ok, "")
	return evaluations, nil
}
