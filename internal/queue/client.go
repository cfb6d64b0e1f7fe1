package queue

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/constants"
	"github.com/offeroye/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultConcurrency      = 10
	catalogRebuildMaxRetry  = 3
	catalogRebuildUniqueTTL = 5 * time.Minute
	catalogRebuildTimeout   = 2 * time.Minute
	workerShutdownTimeout   = 30 * time.Second
)

var (
	// ErrQueueDisabled 队列未启用
	ErrQueueDisabled = errors.New("queue disabled")
	// ErrTaskDuplicate 已有相同任务待执行
	ErrTaskDuplicate = errors.New("task already queued")
)

// Client 队列客户端封装，未启用时 client 为 nil
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{queue: DefaultQueue}
	if cfg != nil && cfg.Enabled {
		c.client = asynq.NewClient(buildRedisOpt(cfg))
	}
	return c, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueCatalogRebuild 推送目录重建任务
// 同一时刻只保留一个待执行的重建任务。
func (c *Client) EnqueueCatalogRebuild(payload CatalogRebuildPayload, opts ...asynq.Option) (string, error) {
	if !c.Enabled() {
		return "", ErrQueueDisabled
	}
	task, err := NewCatalogRebuildTask(payload)
	if err != nil {
		return "", err
	}
	options := append([]asynq.Option{
		asynq.Queue(c.queue),
		asynq.MaxRetry(catalogRebuildMaxRetry),
		asynq.Unique(catalogRebuildUniqueTTL),
		asynq.Timeout(catalogRebuildTimeout),
	}, opts...)
	info, err := c.client.Enqueue(task, options...)
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		return "", ErrTaskDuplicate
	case err != nil:
		return "", err
	}
	logger.Infow("queue_catalog_rebuild_enqueued", "task_id", info.ID, "reason", payload.Reason)
	return info.ID, nil
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency:     defaultConcurrency,
		Queues:          map[string]int{DefaultQueue: 1},
		ShutdownTimeout: workerShutdownTimeout,
		Logger:          logger.S(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warnw("queue_task_failed",
				"task_type", task.Type(),
				"retried", retried,
				"max_retry", maxRetry,
				"error", err,
			)
		}),
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return buildRedisOpt(cfg), serverCfg
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
