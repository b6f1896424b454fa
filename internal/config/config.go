package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Address string `yaml:"address"`
	// APIKey 非空时启用 keyauth 中间件校验
	APIKey string `yaml:"api_key"`
	// DefaultJDText 未提供JD时使用的兜底岗位描述
	DefaultJDText string `yaml:"default_jd_text"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json 或 pretty
	TimeFormat   string `yaml:"time_format"`   // 时间戳格式
	ReportCaller bool   `yaml:"report_caller"` // 是否记录调用位置
}

// ExtractorConfig 文本提取配置
type ExtractorConfig struct {
	// PDFBackend 选择PDF解析实现: "eino" 或 "native"
	PDFBackend string `yaml:"pdf_backend"`
	// TimeoutSeconds 单个文档的提取超时(秒)
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// MySQLConfig MySQL连接配置
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// 日志级别: 1=Silent 2=Error 3=Warn 4=Info
	LogLevel int `yaml:"log_level"`
	// 连接池设置
	MaxIdleConns           int `yaml:"max_idle_conns"`
	MaxOpenConns           int `yaml:"max_open_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
	ConnMaxIdleTimeMinutes int `yaml:"conn_max_idle_time_minutes"`
	// 超时设置
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds   int `yaml:"write_timeout_seconds"`
}

// RedisConfig Redis连接配置
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	// 评分缓存TTL(小时)，0表示使用默认值
	ScoreCacheTTLHours int `yaml:"score_cache_ttl_hours"`
}

// MinIOConfig 对象存储配置
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Location        string `yaml:"location"`
	// 原始简历与解析文本分桶存放
	OriginalsBucket  string `yaml:"originals_bucket"`
	ParsedTextBucket string `yaml:"parsed_text_bucket"`
	// 原始文件过期天数，0表示不过期
	OriginalsExpiryDays int `yaml:"originals_expiry_days"`
}

// RabbitMQConfig 消息队列配置
type RabbitMQConfig struct {
	URL string `yaml:"url"`
	// 分析完成事件的交换机与路由键
	AnalysisEventsExchange string `yaml:"analysis_events_exchange"`
	AnalysisEventsQueue    string `yaml:"analysis_events_queue"`
	AnalysisRoutingKey     string `yaml:"analysis_routing_key"`
	// outbox中继轮询间隔，如 "5s"
	RelayPollingInterval string `yaml:"relay_polling_interval"`
	RelayBatchSize       int    `yaml:"relay_batch_size"`
}

// TracingConfig OpenTelemetry配置
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// OTLP gRPC collector地址，如 "localhost:4317"
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	// 采样率 [0,1]
	SampleRate float64 `yaml:"sample_rate"`
}

// Config 应用总配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	Extractor ExtractorConfig `yaml:"extractor"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	MinIO     MinIOConfig     `yaml:"minio"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// RelayPollingDuration 解析outbox中继轮询间隔，非法或缺省时回退到5秒
func (c *RabbitMQConfig) RelayPollingDuration() time.Duration {
	if c.RelayPollingInterval == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(c.RelayPollingInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ScoreCacheTTL 评分缓存TTL，缺省24小时
func (c *RedisConfig) ScoreCacheTTL() time.Duration {
	if c.ScoreCacheTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ScoreCacheTTLHours) * time.Hour
}

// LoadConfig 从YAML文件加载配置，并用环境变量覆盖敏感项
// 测试环境下文件缺失时返回默认配置而不报错
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		if inTestEnvironment() {
			return createDefaultConfig(), nil
		}
		configPath = "config.yaml"
	}

	// 检查文件是否存在
	if _, err := os.Stat(configPath); err != nil {
		if inTestEnvironment() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 从环境变量覆盖敏感配置（如果存在）
	if v := os.Getenv("ATS_API_KEY"); v != "" {
		config.Server.APIKey = v
	}
	if v := os.Getenv("ATS_MYSQL_PASSWORD"); v != "" {
		config.MySQL.Password = v
	}
	if v := os.Getenv("ATS_REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("ATS_MINIO_SECRET_KEY"); v != "" {
		config.MinIO.SecretAccessKey = v
	}
	if v := os.Getenv("ATS_RABBITMQ_URL"); v != "" {
		config.RabbitMQ.URL = v
	}

	applyDefaults(&config)
	return &config, nil
}

// inTestEnvironment 通过命令行参数判断是否在go test下运行
func inTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}

// applyDefaults 补齐缺省值
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Server.DefaultJDText == "" {
		config.Server.DefaultJDText = DefaultJDText
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Extractor.PDFBackend == "" {
		config.Extractor.PDFBackend = "native"
	}
	if config.Extractor.TimeoutSeconds <= 0 {
		config.Extractor.TimeoutSeconds = 30
	}
	if config.RabbitMQ.AnalysisEventsExchange == "" {
		config.RabbitMQ.AnalysisEventsExchange = "analysis.events.exchange"
	}
	if config.RabbitMQ.AnalysisEventsQueue == "" {
		config.RabbitMQ.AnalysisEventsQueue = "q.analysis_completed"
	}
	if config.RabbitMQ.AnalysisRoutingKey == "" {
		config.RabbitMQ.AnalysisRoutingKey = "analysis.completed"
	}
	if config.RabbitMQ.RelayPollingInterval == "" {
		config.RabbitMQ.RelayPollingInterval = "5s"
	}
	if config.RabbitMQ.RelayBatchSize <= 0 {
		config.RabbitMQ.RelayBatchSize = 10
	}
	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = "ats-match-go"
	}
	if config.Tracing.SampleRate <= 0 || config.Tracing.SampleRate > 1 {
		config.Tracing.SampleRate = 1
	}
	if config.MinIO.OriginalsBucket == "" {
		config.MinIO.OriginalsBucket = "resume-originals"
	}
	if config.MinIO.ParsedTextBucket == "" {
		config.MinIO.ParsedTextBucket = "resume-parsed-text"
	}
}

// DefaultJDText 原始服务中未上传JD时的兜底岗位描述
const DefaultJDText = "Highly skilled software engineer with strong Python, Machine Learning, and SQL expertise. Needs 5+ years of experience."

// 创建一个默认配置，用于测试环境
func createDefaultConfig() *Config {
	config := &Config{}
	config.Server.Address = ":8080"
	config.Logger.Level = "info"
	config.Extractor.PDFBackend = "native"
	config.Extractor.TimeoutSeconds = 30

	// 本地默认的存储组件地址，测试里按需使用
	config.Redis.Address = ""
	config.RabbitMQ.URL = ""

	applyDefaults(config)
	return config
}
