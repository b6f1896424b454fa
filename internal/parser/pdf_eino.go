package parser

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EinoPDFExtractor 使用 Eino PDF Parser 提取文本
type EinoPDFExtractor struct {
	parser *pdf.PDFParser
	logger zerolog.Logger
}

var _ PDFTextExtractor = (*EinoPDFExtractor)(nil)

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFExtractor) {
		e.logger = logger
	}
}

// NewEinoPDFExtractor 初始化 Eino PDF 文本提取器
// 配置为不按页面分割，以获取整个文档的连续文本
func NewEinoPDFExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}

	extractor := &EinoPDFExtractor{
		parser: p,
		logger: log.With().Str("component", "eino_pdf_extractor").Logger(),
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractText 从字节内容中提取完整的纯文本
func (e *EinoPDFExtractor) ExtractText(ctx context.Context, data []byte, uri string) (string, error) {
	startTime := time.Now()

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(map[string]interface{}{
			"extraction_time": time.Now().Format(time.RFC3339),
		}),
	)

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("uri", uri).
			Dur("duration", duration).
			Msg("Eino PDF解析失败")
		return "", fmt.Errorf("%w: eino解析器错误 (%s): %v", ErrExtractionFailed, uri, err)
	}

	if len(docs) == 0 {
		return "", fmt.Errorf("%w: eino解析器未返回任何文档 (%s)", ErrExtractionFailed, uri)
	}

	// 合并所有文档的内容（以防万一返回了多个）
	var fullContent string
	for i, doc := range docs {
		fullContent += doc.Content
		if i < len(docs)-1 {
			fullContent += "\n\n"
		}
	}

	e.logger.Debug().
		Str("uri", uri).
		Int("document_count", len(docs)).
		Int("text_length", len(fullContent)).
		Dur("duration", duration).
		Msg("Eino PDF提取完成")

	return fullContent, nil
}
