package parser

import (
	"fmt"
	"regexp"

	"github.com/jdkato/prose/v2"

	"ats-match-go/internal/types"
)

// OrganizationDetector 命名实体识别的抽象
// 实现只需给出(文本片段, 标签)列表，具体模型可替换而不影响解析管线
type OrganizationDetector interface {
	DetectOrganizations(text string) ([]types.Entity, error)
}

// ProseDetector 基于prose内置统计模型的实体识别
type ProseDetector struct{}

var _ OrganizationDetector = (*ProseDetector)(nil)

// NewProseDetector 创建prose实体识别器
func NewProseDetector() *ProseDetector {
	return &ProseDetector{}
}

// DetectOrganizations 对文本运行NER，按出现顺序返回全部实体
func (d *ProseDetector) DetectOrganizations(text string) ([]types.Entity, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("prose解析失败: %w", err)
	}

	var entities []types.Entity
	for _, ent := range doc.Entities() {
		entities = append(entities, types.Entity{
			Text:  ent.Text,
			Label: ent.Label,
		})
	}
	return entities, nil
}

// orgPatternRe 连续大写开头单词中包含教育机构关键词的片段
// 如 "Stanford University"、"Indian Institute of Technology"
var orgPatternRe = regexp.MustCompile(
	`(?:[A-Z][A-Za-z&.]*\s+)*(?:University|College|Institute|School|Academy)(?:\s+(?:of|for)\s+[A-Z][A-Za-z&.]*(?:\s+[A-Z][A-Za-z&.]*)*)?`)

// PatternDetector 基于大写词序列启发式的机构识别，作为统计模型的补充
// 统计模型对简历这种碎片化文本召回偏低，启发式能兜住常见的院校写法
type PatternDetector struct{}

var _ OrganizationDetector = (*PatternDetector)(nil)

// NewPatternDetector 创建启发式机构识别器
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{}
}

// DetectOrganizations 返回文本中疑似机构名的片段，统一标记为ORG
func (d *PatternDetector) DetectOrganizations(text string) ([]types.Entity, error) {
	var entities []types.Entity
	for _, match := range orgPatternRe.FindAllString(text, -1) {
		entities = append(entities, types.Entity{
			Text:  match,
			Label: "ORG",
		})
	}
	return entities, nil
}

// CompositeDetector 依次运行多个识别器并按文本去重
type CompositeDetector struct {
	detectors []OrganizationDetector
}

var _ OrganizationDetector = (*CompositeDetector)(nil)

// NewCompositeDetector 组合多个识别器
func NewCompositeDetector(detectors ...OrganizationDetector) *CompositeDetector {
	return &CompositeDetector{detectors: detectors}
}

// DetectOrganizations 合并各识别器的结果，保持首次出现顺序
// 单个识别器失败不影响其余识别器的结果
func (d *CompositeDetector) DetectOrganizations(text string) ([]types.Entity, error) {
	seen := make(map[string]struct{})
	var merged []types.Entity
	var lastErr error

	for _, detector := range d.detectors {
		entities, err := detector.DetectOrganizations(text)
		if err != nil {
			lastErr = err
			continue
		}
		for _, ent := range entities {
			if _, ok := seen[ent.Text]; ok {
				continue
			}
			seen[ent.Text] = struct{}{}
			merged = append(merged, ent)
		}
	}

	if merged == nil && lastErr != nil {
		return nil, lastErr
	}
	return merged, nil
}

// NewDefaultDetector 默认识别器：统计模型优先，启发式兜底
func NewDefaultDetector() OrganizationDetector {
	return NewCompositeDetector(NewProseDetector(), NewPatternDetector())
}
