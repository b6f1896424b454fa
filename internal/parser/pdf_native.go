package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativePDFExtractor 纯Go实现的PDF文本提取，无外部服务依赖
type NativePDFExtractor struct{}

var _ PDFTextExtractor = (*NativePDFExtractor)(nil)

// NewNativePDFExtractor 创建本地PDF提取器
func NewNativePDFExtractor() *NativePDFExtractor {
	return &NativePDFExtractor{}
}

// ExtractText 逐页提取PDF中的纯文本并拼接
func (e *NativePDFExtractor) ExtractText(ctx context.Context, data []byte, uri string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: 读取PDF失败: %v", ErrExtractionFailed, err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, ctx.Err())
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// 单页解析失败跳过该页，不影响其余页面
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	result := builder.String()
	if strings.TrimSpace(result) == "" && numPages > 0 {
		return "", fmt.Errorf("%w: PDF未提取到任何文本 (%s)", ErrExtractionFailed, uri)
	}
	return result, nil
}
