// Package outbox 提供基于 GORM 的事务性发件箱：业务事务内落库，由后台 Processor 投递到 Kafka
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wyfcoding/storefront/pkg/logger"
	"gorm.io/gorm"
)

// Message 发件箱消息记录
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	Topic     string    `gorm:"column:topic;type:varchar(100);not null"`
	Key       string    `gorm:"column:msg_key;type:varchar(100);not null"`
	Payload   []byte    `gorm:"column:payload;type:blob;not null"`
	Published bool      `gorm:"column:published;index;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Message) TableName() string { return "outbox_messages" }

// Manager 发件箱管理器
type Manager struct {
	db *gorm.DB
}

// NewManager 创建发件箱管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// DB 返回底层数据库句柄（用于非事务发布）
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// PublishInTx 在给定事务中写入一条待投递消息
func (m *Manager) PublishInTx(ctx context.Context, tx *gorm.DB, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox event: %w", err)
	}
	msg := &Message{
		Topic:   topic,
		Key:     key,
		Payload: payload,
	}
	return tx.WithContext(ctx).Create(msg).Error
}

// Pusher 投递函数，由调用方绑定到具体的消息队列
type Pusher func(ctx context.Context, topic, key string, payload []byte) error

// Processor 后台轮询器：批量取出未投递消息，推送成功后标记已投递
type Processor struct {
	manager   *Manager
	pusher    Pusher
	batchSize int
	interval  time.Duration
	stop      chan struct{}
	done      chan struct{}
}

// NewProcessor 创建发件箱轮询器
func NewProcessor(manager *Manager, pusher Pusher, batchSize int, interval time.Duration) *Processor {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Processor{
		manager:   manager,
		pusher:    pusher,
		batchSize: batchSize,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start 启动轮询（阻塞，应在独立 goroutine 中调用）
func (p *Processor) Start() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if err := p.drain(context.Background()); err != nil {
				logger.Error(context.Background(), "Outbox drain failed", "error", err)
			}
		}
	}
}

// Stop 停止轮询并等待当前批次完成
func (p *Processor) Stop() {
	close(p.stop)
	<-p.done
}

// drain 处理一批未投递消息
func (p *Processor) drain(ctx context.Context) error {
	var messages []Message
	err := p.manager.db.WithContext(ctx).
		Where("published = ?", false).
		Order("id asc").
		Limit(p.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := p.pusher(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			// 投递失败的消息留在队列里，下一轮重试
			logger.Warn(ctx, "Outbox push failed, will retry",
				"id", msg.ID,
				"topic", msg.Topic,
				"error", err,
			)
			continue
		}
		if err := p.manager.db.WithContext(ctx).
			Model(&Message{}).
			Where("id = ?", msg.ID).
			Update("published", true).Error; err != nil {
			return err
		}
	}
	return nil
}
