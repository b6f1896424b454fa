// Package outbox 实现本地消息表（Outbox Pattern）的消息中继。
package outbox

import (
	"context"
	"strconv"
	"time"

	"ats-match-go/internal/storage"
	"ats-match-go/internal/storage/models"
	"ats-match-go/internal/tracing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPollingInterval = 5 * time.Second
	defaultBatchSize       = 10
	maxRetryCount          = 5
)

// MessageRelay 轮询 outbox 表并将消息发布到消息代理。
type MessageRelay struct {
	db              *gorm.DB
	publisher       *storage.RabbitMQ
	logger          zerolog.Logger
	pollingInterval time.Duration
	batchSize       int
	done            chan struct{}
	tracer          trace.Tracer
}

// RelayOption 配置 MessageRelay
type RelayOption func(*MessageRelay)

// WithPollingInterval 设置轮询间隔
func WithPollingInterval(interval time.Duration) RelayOption {
	return func(r *MessageRelay) {
		if interval > 0 {
			r.pollingInterval = interval
		}
	}
}

// WithBatchSize 设置每次轮询处理的消息批量大小
func WithBatchSize(size int) RelayOption {
	return func(r *MessageRelay) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

// NewMessageRelay 创建一个新的 MessageRelay 实例。
func NewMessageRelay(db *gorm.DB, publisher *storage.RabbitMQ, logger zerolog.Logger, opts ...RelayOption) *MessageRelay {
	r := &MessageRelay{
		db:              db,
		publisher:       publisher,
		logger:          logger,
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		done:            make(chan struct{}),
		tracer:          otel.Tracer("outbox-relay"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start 开始消息中继的轮询过程。
func (r *MessageRelay) Start() {
	r.logger.Info().Dur("interval", r.pollingInterval).Msg("MessageRelay启动")
	ticker := time.NewTicker(r.pollingInterval)

	go func() {
		for {
			select {
			case <-r.done:
				ticker.Stop()
				r.logger.Info().Msg("MessageRelay已停止")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(context.Background()); err != nil {
					r.logger.Error().Err(err).Msg("处理待发送消息失败")
				}
			}
		}
	}()
}

// Stop 优雅地停止消息中继服务。
func (r *MessageRelay) Stop() {
	close(r.done)
}

// processPendingMessages 获取并处理一批来自 outbox 表的待处理消息。
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	// FOR UPDATE SKIP LOCKED 让多实例部署时各自跳过已被锁定的行
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error

	if err != nil {
		r.logger.Error().Err(err).Msg("查询待发送的outbox消息失败")
		return err
	}

	if len(messages) == 0 {
		return tx.Commit().Error
	}

	// 空轮询不建span，只有拿到消息才追踪
	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	r.logger.Debug().Int("count", len(messages)).Msg("开始发布outbox消息批次")

	for _, msg := range messages {
		err := r.publisher.PublishMessage(
			ctx,
			msg.TargetExchange,
			msg.TargetRoutingKey,
			[]byte(msg.Payload),
			true,
		)

		if err != nil {
			tracing.RecordRabbitMQNack(span, strconv.FormatUint(msg.ID, 10), err.Error())
			r.logger.Warn().
				Err(err).
				Uint64("message_id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retry_count", msg.RetryCount+1).
				Msg("发布outbox消息失败")
			msg.RetryCount++
			msg.ErrorMessage = err.Error()
			if msg.RetryCount >= maxRetryCount {
				msg.Status = models.OutboxStatusFailed
			}
		} else {
			msg.Status = models.OutboxStatusSent
			now := time.Now()
			msg.ProcessedAt = &now
			msg.ErrorMessage = ""
		}

		if err := tx.Save(&msg).Error; err != nil {
			// 更新失败会回滚整个事务，消息保持PENDING等待下次轮询
			r.logger.Error().Err(err).Uint64("message_id", msg.ID).Msg("更新outbox消息状态失败")
			return err
		}
	}

	return tx.Commit().Error
}
