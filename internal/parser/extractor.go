package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MIME类型常量，与上传端声明的Content-Type对应
const (
	MIMEPDF       = "application/pdf"
	MIMEDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPlainText = "text/plain"
)

var (
	// ErrUnsupportedFormat 声明的文档类型不在支持范围内
	ErrUnsupportedFormat = errors.New("不支持的文档格式")
	// ErrExtractionFailed 受支持的类型但字节内容无法解析
	ErrExtractionFailed = errors.New("文本提取失败")
)

// PDFTextExtractor PDF文本提取的抽象，便于在不同后端之间切换
type PDFTextExtractor interface {
	ExtractText(ctx context.Context, data []byte, uri string) (string, error)
}

// DocumentExtractor 按声明的MIME类型分发到具体的提取实现
// 声明类型与字节内容不符时返回ErrExtractionFailed而不是panic
type DocumentExtractor struct {
	pdf     PDFTextExtractor
	timeout time.Duration
	logger  zerolog.Logger
}

// DocumentExtractorOption 文档提取器的配置选项
type DocumentExtractorOption func(*DocumentExtractor)

// WithExtractionTimeout 配置单个文档的提取超时
func WithExtractionTimeout(d time.Duration) DocumentExtractorOption {
	return func(e *DocumentExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithExtractorLogger 配置自定义日志记录器
func WithExtractorLogger(logger zerolog.Logger) DocumentExtractorOption {
	return func(e *DocumentExtractor) {
		e.logger = logger
	}
}

// NewDocumentExtractor 创建文档提取器，pdf后端由调用方注入
func NewDocumentExtractor(pdf PDFTextExtractor, options ...DocumentExtractorOption) *DocumentExtractor {
	e := &DocumentExtractor{
		pdf:     pdf,
		timeout: 30 * time.Second,
		logger:  log.With().Str("component", "document_extractor").Logger(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractText 从原始字节中提取纯文本
// mimeType为空或为通用二进制类型时根据文件名后缀推断
func (e *DocumentExtractor) ExtractText(ctx context.Context, data []byte, filename string, mimeType string) (string, error) {
	// multipart上传默认带 application/octet-stream，视同未声明
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = MIMETypeFromFilename(filename)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	startTime := time.Now()
	var (
		text string
		err  error
	)

	switch mimeType {
	case MIMEPlainText:
		text, err = extractPlainText(data)
	case MIMEPDF:
		if e.pdf == nil {
			return "", fmt.Errorf("%w: 未配置PDF后端", ErrExtractionFailed)
		}
		text, err = e.pdf.ExtractText(ctx, data, filename)
	case MIMEDocx:
		text, err = extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("filename", filename).
			Str("mime_type", mimeType).
			Msg("文档文本提取失败")
		if errors.Is(err, ErrExtractionFailed) || errors.Is(err, ErrUnsupportedFormat) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	e.logger.Debug().
		Str("filename", filename).
		Str("mime_type", mimeType).
		Int("text_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("文档文本提取完成")

	return text, nil
}

// MIMETypeFromFilename 根据文件名后缀推断MIME类型，未知后缀返回空串
func MIMETypeFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDocx
	case ".txt":
		return MIMEPlainText
	default:
		return ""
	}
}

// extractPlainText 纯文本直接透传，但要求内容是合法UTF-8
func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: 内容不是合法的UTF-8文本", ErrExtractionFailed)
	}
	return string(data), nil
}
