package router

import (
	"context"
	"crypto/subtle"

	"ats-match-go/internal/api/handler"
	"ats-match-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, analyzeHandler *handler.AnalyzeHandler, cfg *config.Config) {
	api := h.Group("/api/v1")

	// 健康检查不做鉴权，先于中间件注册
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	// 配置了 api_key 时启用请求头鉴权
	if cfg.Server.APIKey != "" {
		expected := cfg.Server.APIKey
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1, nil
			}),
			keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
				c.JSON(consts.StatusUnauthorized, utils.H{"error": "无效的API密钥"})
				c.Abort()
			}),
		))
	}

	api.POST("/analyze", analyzeHandler.HandleAnalyze)
	api.POST("/rank", analyzeHandler.HandleRank)
	api.GET("/jobs/:job_id/evaluations", analyzeHandler.HandleListEvaluations)
	api.GET("/submissions/:submission_uuid/artifacts", analyzeHandler.HandleGetArtifacts)
}
