package parser

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	// docx正文XML中的段落结束标记，替换为换行以保留段落结构
	docxParagraphEndRe = regexp.MustCompile(`</w:p>`)
	docxTagRe          = regexp.MustCompile(`<[^>]+>`)
)

// extractDocxText 提取docx文件中所有段落文本，以换行连接
func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: 解析docx失败: %v", ErrExtractionFailed, err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()

	// GetContent返回document.xml原文，需要剥掉标记只留文本
	content = docxParagraphEndRe.ReplaceAllString(content, "\n")
	content = docxTagRe.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	// 压缩多余空行
	lines := strings.Split(content, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}
