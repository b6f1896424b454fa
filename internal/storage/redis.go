package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"ats-match-go/internal/config"
	"ats-match-go/internal/constants"
	"ats-match-go/internal/tracing"
	"ats-match-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("ats-match-go/storage/redis")

// 文件去重记录的保留时间
const md5RecordExpiry = 365 * 24 * time.Hour

// Redis操作前缀采样率配置
var redisKeySamplingRates = map[string]float64{
	"app:match:": 0.25, // 评分缓存操作采样25%
	"app:job:":   0.1,  // JD缓存操作采样10%
	"app:file:":  0.05, // 文件去重操作采样5%
	"lock:":      0.5,  // 锁操作采样50%
}

var (
	rnd      *rand.Rand
	rndMutex sync.Mutex
)

func init() {
	source := rand.NewSource(time.Now().UnixNano())
	rnd = rand.New(source)
}

// shouldSampleRedisOp 根据key前缀决定是否需要创建span
func shouldSampleRedisOp(key string) bool {
	if key == "" {
		return false
	}

	for prefix, rate := range redisKeySamplingRates {
		if strings.HasPrefix(key, prefix) {
			return randFloat() < rate
		}
	}

	// 默认采样率5%
	return randFloat() < 0.05
}

func randFloat() float64 {
	rndMutex.Lock()
	defer rndMutex.Unlock()
	return rnd.Float64()
}

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// Get 获取键的值
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}

	var span trace.Span

	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Get", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "GET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		)
	}

	val, err := r.Client.Get(ctx, key).Result()

	if span != nil {
		if err != nil {
			// key不存在不算错误
			if err == redis.Nil {
				span.SetStatus(codes.Ok, "key not found")
				span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
			} else {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return "", err
		}

		span.SetAttributes(
			attribute.Bool("db.redis.key_exists", true),
			attribute.Int("db.redis.value_length", len(val)),
		)
		span.SetStatus(codes.Ok, "")
	}

	return val, err
}

// Set 设置键的值
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	var span trace.Span

	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Set", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "SET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
			attribute.Int("db.redis.value_length", len(value)),
		)

		if expiration > 0 {
			span.SetAttributes(attribute.Int64("db.redis.expiration_ms", expiration.Milliseconds()))
		}
	}

	err := r.Client.Set(ctx, key, value, expiration).Err()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// CacheScore 缓存一次评分结果，键由简历文本MD5与JD文本MD5组成
func (r *Redis) CacheScore(ctx context.Context, resumeMD5, jdMD5 string, breakdown *types.ScoreBreakdown) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if breakdown == nil {
		return fmt.Errorf("评分结果不能为空")
	}

	payload, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("序列化评分结果失败: %w", err)
	}

	key := fmt.Sprintf(constants.KeyMatchScore, resumeMD5, jdMD5)
	return r.Set(ctx, key, string(payload), r.config.ScoreCacheTTL())
}

// GetCachedScore 获取缓存的评分结果，未命中时返回ErrNotFound
func (r *Redis) GetCachedScore(ctx context.Context, resumeMD5, jdMD5 string) (*types.ScoreBreakdown, error) {
	key := fmt.Sprintf(constants.KeyMatchScore, resumeMD5, jdMD5)
	val, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var breakdown types.ScoreBreakdown
	if err := json.Unmarshal([]byte(val), &breakdown); err != nil {
		return nil, fmt.Errorf("反序列化评分缓存失败: %w", err)
	}
	return &breakdown, nil
}

// CacheJobText 缓存岗位JD文本
func (r *Redis) CacheJobText(ctx context.Context, jobID string, jdText string) error {
	key := fmt.Sprintf(constants.KeyJobDescriptionText, jobID)
	return r.Set(ctx, key, jdText, constants.JDCacheDuration)
}

// GetJobText 获取缓存的岗位JD文本，未命中时返回ErrNotFound
func (r *Redis) GetJobText(ctx context.Context, jobID string) (string, error) {
	key := fmt.Sprintf(constants.KeyJobDescriptionText, jobID)
	return r.Get(ctx, key)
}

// CheckAndSetFileMD5 原子地检查文件MD5是否已处理过，未处理时登记到去重集合。
// 返回exists=true时附带首次处理该文件的submissionUUID。
func (r *Redis) CheckAndSetFileMD5(ctx context.Context, md5Hex string, submissionUUID string) (exists bool, existingUUID string, err error) {
	ctx, span := redisTracer.Start(ctx, "Redis.CheckAndSetFileMD5",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.redis.database", fmt.Sprintf("%d", r.config.DB)),
		attribute.String("net.peer.name", r.config.Address),
		attribute.String("db.operation", "EVAL"),
		attribute.String("db.redis.key", constants.KeyFileMD5Set),
		attribute.String("db.redis.member", md5Hex),
	)

	if r.Client == nil {
		err = fmt.Errorf("redis client is not initialized")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, "", err
	}

	setKey := constants.KeyFileMD5Set
	mapKey := fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, md5Hex)

	// Lua脚本保证检查与登记的原子性：已存在时返回首次登记的UUID
	script := `
		local exists = redis.call('SISMEMBER', KEYS[1], ARGV[1])
		if exists == 1 then
			return redis.call('GET', KEYS[2])
		end
		redis.call('SADD', KEYS[1], ARGV[1])
		redis.call('EXPIRE', KEYS[1], ARGV[3])
		redis.call('SET', KEYS[2], ARGV[2], 'EX', ARGV[3])
		return false
	`

	expiry := int64(md5RecordExpiry.Seconds())

	res, err := r.Client.Eval(ctx, script, []string{setKey, mapKey}, md5Hex, submissionUUID, expiry).Result()
	if err != nil && err != redis.Nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, "", fmt.Errorf("执行原子检查和登记操作失败: %w", err)
	}

	// Lua返回false被映射为redis.Nil，表示首次登记成功
	if err == redis.Nil || res == nil {
		span.SetAttributes(attribute.Bool("already_exists", false))
		span.SetStatus(codes.Ok, "")
		return false, "", nil
	}

	uuidStr, ok := res.(string)
	if !ok {
		err := fmt.Errorf("意外的Redis返回类型: %T", res)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, "", err
	}

	span.SetAttributes(attribute.Bool("already_exists", true))
	span.SetStatus(codes.Ok, "")
	return true, uuidStr, nil
}

// RemoveFileMD5 从去重集合中移除文件MD5及其UUID映射
func (r *Redis) RemoveFileMD5(ctx context.Context, md5Hex string) error {
	ctx, span := redisTracer.Start(ctx, "Redis.RemoveFileMD5",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.redis.database", fmt.Sprintf("%d", r.config.DB)),
		attribute.String("net.peer.name", r.config.Address),
		attribute.String("db.operation", "SREM"),
		attribute.String("db.redis.key", constants.KeyFileMD5Set),
		attribute.String("db.redis.member", md5Hex),
	)

	pipe := r.Client.Pipeline()
	remCmd := pipe.SRem(ctx, constants.KeyFileMD5Set, md5Hex)
	pipe.Del(ctx, fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, md5Hex))
	_, err := pipe.Exec(ctx)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("从集合中移除MD5失败: %w", err)
	}

	span.SetAttributes(attribute.Int64("removed_count", remCmd.Val()))
	span.SetStatus(codes.Ok, "")

	return nil
}

// AcquireLock 尝试获取一个分布式锁
func (r *Redis) AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}
	lockValue := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := r.Client.SetNX(ctx, lockKey, lockValue, expiration).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return lockValue, nil
	}
	return "", nil
}

// ReleaseLock 释放一个分布式锁，使用Lua脚本保证原子性
func (r *Redis) ReleaseLock(ctx context.Context, lockKey string, lockValue string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	script := `
        if redis.call("get", KEYS[1]) == ARGV[1] then
            return redis.call("del", KEYS[1])
        else
            return 0
        end
    `
	res, err := r.Client.Eval(ctx, script, []string{lockKey}, lockValue).Result()
	if err != nil {
		return false, err
	}

	if released, ok := res.(int64); ok && released == 1 {
		return true, nil
	}

	return false, nil
}
