package processor

import (
	"context"

	"ats-match-go/internal/config"
	"ats-match-go/internal/logger"
	"ats-match-go/internal/parser"
)

// BuildPDFExtractor 根据配置返回合适的PDF文本提取实现。
// 配置为 "eino" 时使用eino-ext的PDF解析器，否则退回纯Go实现。
func BuildPDFExtractor(ctx context.Context, cfg *config.Config) (parser.PDFTextExtractor, error) {
	if cfg != nil && cfg.Extractor.PDFBackend == "eino" {
		logger.Info().Msg("使用Eino作为PDF解析后端")
		return parser.NewEinoPDFExtractor(ctx, parser.WithEinoLogger(logger.Logger))
	}
	logger.Info().Msg("使用内置PDF解析后端")
	return parser.NewNativePDFExtractor(), nil
}
