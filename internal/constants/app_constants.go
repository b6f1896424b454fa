package constants

import "time"

const (
	// DefaultParserVer 解析管线版本，随提取/评分逻辑变更而递增
	DefaultParserVer = "1.0"

	// DefaultScorerVer 评分算法版本
	DefaultScorerVer = "1.0"

	// JDCacheDuration JD文本缓存时长
	JDCacheDuration = 24 * time.Hour
)
