package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"ats-match-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadResumeFile 上传原始简历文件
	UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error)

	// UploadParsedText 上传提取后的纯文本
	UploadParsedText(ctx context.Context, submissionUUID string, text string) (string, error)

	// GetParsedText 下载提取后的纯文本
	GetParsedText(ctx context.Context, objectKey string) (string, error)

	// GetPresignedURL 获取原始文件的预签名URL
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
	logger         zerolog.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger zerolog.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	originalBucket := cfg.OriginalsBucket
	if originalBucket == "" {
		originalBucket = "resume-originals"
	}
	parsedBucket := cfg.ParsedTextBucket
	if parsedBucket == "" {
		parsedBucket = "resume-parsed-text"
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: originalBucket,
		parsedBucket:   parsedBucket,
		logger:         logger,
	}

	if err := m.ensureBucketExists(originalBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保原始简历存储桶 %s 存在失败: %w", originalBucket, err)
	}
	if err := m.ensureBucketExists(parsedBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保解析文本存储桶 %s 存在失败: %w", parsedBucket, err)
	}

	if cfg.OriginalsExpiryDays > 0 {
		if err := m.setupBucketLifecycle(context.Background(), originalBucket, "expire-originals", cfg.OriginalsExpiryDays); err != nil {
			m.logger.Warn().Err(err).Str("bucket", originalBucket).Msg("设置生命周期规则失败")
		}
	}

	m.logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("originals_bucket", originalBucket).
		Str("parsed_bucket", parsedBucket).
		Msg("MinIO客户端初始化完成")
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Info().Str("bucket", bucketName).Msg("创建存储桶")
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置过期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lcConfig := lifecycle.NewConfiguration()
	lcConfig.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, lcConfig)
}

// UploadResumeFile 上传原始简历文件到originalsBucket，返回对象键
func (m *MinIO) UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	objectName := fmt.Sprintf("resume/%s/original%s", submissionUUID, fileExt)
	contentType := contentTypeForExt(fileExt)

	_, err := m.client.PutObject(ctx, m.originalBucket, objectName, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.originalBucket, objectName, err)
	}

	m.logger.Debug().Str("object", objectName).Int64("size", fileSize).Msg("原始简历上传完成")
	return objectName, nil
}

// UploadParsedText 上传提取后的纯文本到parsedBucket，返回对象键
func (m *MinIO) UploadParsedText(ctx context.Context, submissionUUID string, text string) (string, error) {
	objectName := fmt.Sprintf("resume/%s/parsed_text.txt", submissionUUID)

	_, err := m.client.PutObject(ctx, m.parsedBucket, objectName, strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return "", fmt.Errorf("上传解析文本 %s 到存储桶 %s 失败: %w", objectName, m.parsedBucket, err)
	}

	m.logger.Debug().Str("object", objectName).Int("text_length", len(text)).Msg("解析文本上传完成")
	return objectName, nil
}

// GetParsedText 从parsedBucket下载提取后的纯文本
func (m *MinIO) GetParsedText(ctx context.Context, objectKey string) (string, error) {
	data, err := m.downloadObject(ctx, m.parsedBucket, objectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *MinIO) downloadObject(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	// Stat 能在对象不存在时尽早报错
	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, objectKey, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectKey, err)
	}
	return data, nil
}

// GetPresignedURL 获取原始文件的预签名URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.originalBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
