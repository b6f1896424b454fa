package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ats-match-go/internal/api/handler"
	"ats-match-go/internal/api/router"
	"ats-match-go/internal/config"
	appCoreLogger "ats-match-go/internal/logger"
	"ats-match-go/internal/outbox"
	"ats-match-go/internal/parser"
	"ats-match-go/internal/processor"
	"ats-match-go/internal/scorer"
	"ats-match-go/internal/storage"
	"ats-match-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	hertzadapter "github.com/hertz-contrib/logger/zerolog"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("关闭链路追踪失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	// 仅当MySQL与RabbitMQ同时可用时启动outbox中继
	var messageRelay *outbox.MessageRelay
	if storageManager.MySQL != nil && storageManager.RabbitMQ != nil {
		messageRelay = outbox.NewMessageRelay(
			storageManager.MySQL.DB(),
			storageManager.RabbitMQ,
			appCoreLogger.Logger,
			outbox.WithPollingInterval(cfg.RabbitMQ.RelayPollingDuration()),
			outbox.WithBatchSize(cfg.RabbitMQ.RelayBatchSize),
		)
		messageRelay.Start()
		glog.Info("消息中继服务已启动")
	} else {
		glog.Warn("MySQL或RabbitMQ未配置，跳过outbox消息中继")
	}

	// 消费评估完成事件，输出评估摘要日志
	var consumerStop chan struct{}
	if storageManager.RabbitMQ != nil {
		consumerStop, err = storageManager.RabbitMQ.StartConsumer(
			cfg.RabbitMQ.AnalysisEventsQueue, analysisConsumerPrefetch, handleAnalysisEvent)
		if err != nil {
			glog.Warnf("启动评估事件消费者失败: %v", err)
		}
	}

	pdfExtractor, err := processor.BuildPDFExtractor(ctx, cfg)
	if err != nil {
		glog.Fatalf("创建PDF提取器失败: %v", err)
	}

	documentExtractor := parser.NewDocumentExtractor(
		pdfExtractor,
		parser.WithExtractionTimeout(time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second),
		parser.WithExtractorLogger(appCoreLogger.Logger),
	)
	resumeParser := parser.NewResumeParser(
		parser.WithResumeParserLogger(appCoreLogger.Logger),
	)
	jdParser := parser.NewJDParser(
		parser.WithJDParserLogger(appCoreLogger.Logger),
	)
	matchScorer := scorer.NewScorer(
		scorer.WithScorerLogger(appCoreLogger.Logger),
	)
	glog.Info("文档提取与评分组件初始化成功")

	analyzer, err := processor.NewAnalyzer(
		&processor.Components{
			Extractor:    documentExtractor,
			ResumeParser: resumeParser,
			JDParser:     jdParser,
			Scorer:       matchScorer,
			Storage:      storageManager,
		},
		processor.WithDefaultJDText(cfg.Server.DefaultJDText),
		processor.WithAnalysisRouting(cfg.RabbitMQ.AnalysisEventsExchange, cfg.RabbitMQ.AnalysisRoutingKey),
		processor.WithAnalyzerLogger(appCoreLogger.Logger),
	)
	if err != nil {
		glog.Fatalf("初始化分析器失败: %v", err)
	}
	glog.Info("分析器初始化成功")

	analyzeHandler := handler.NewAnalyzeHandler(cfg, analyzer, storageManager)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, analyzeHandler, cfg)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	if messageRelay != nil {
		messageRelay.Stop()
		glog.Info("消息中继服务已停止")
	}
	if consumerStop != nil {
		close(consumerStop)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// analysisConsumerPrefetch 评估事件消费者的QoS预取数
const analysisConsumerPrefetch = 8

// handleAnalysisEvent 消费一条评估完成事件，返回true表示确认消息
func handleAnalysisEvent(body []byte) bool {
	var event storage.AnalysisCompletedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// 无法解析的消息重新入队也处理不了，直接确认丢弃
		glog.Errorf("解析评估完成事件失败: %v", err)
		return true
	}

	glog.Infof("评估完成: submission=%s job=%s overall=%.1f",
		event.SubmissionUUID, event.JobID, event.OverallScore)
	return true
}

func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	// Hertz 框架日志走同一个 zerolog 实例
	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
