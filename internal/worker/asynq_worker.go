package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/models"
	"github.com/offeroye/internal/provider"
	"github.com/offeroye/internal/queue"
	"github.com/offeroye/internal/service"

	"github.com/hibiken/asynq"
)

// CatalogRebuilder 目录重建接口
type CatalogRebuilder interface {
	Rebuild(ctx context.Context, cities []string) (*models.Catalog, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCatalogRebuild, c.handleCatalogRebuild)
}

func (c *Consumer) handleCatalogRebuild(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.CatalogService == nil {
		logger.Warnw("worker_catalog_rebuild_skip_service_nil")
		return nil
	}
	payload, err := queue.ParseCatalogRebuildPayload(task)
	if err != nil {
		logger.Warnw("worker_catalog_rebuild_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return runCatalogRebuild(ctx, c.CatalogService, payload)
}

// runCatalogRebuild 执行目录重建
// 构建失败不重试；仅写入失败时返回错误以便队列重试。
func runCatalogRebuild(ctx context.Context, rebuilder CatalogRebuilder, payload queue.CatalogRebuildPayload) error {
	catalog, err := rebuilder.Rebuild(ctx, payload.Cities)
	switch {
	case err == nil:
		logger.Infow("worker_catalog_rebuild_done",
			"reason", payload.Reason,
			"cities", payload.Cities,
			"count", catalog.Len(),
			"generation", catalog.Generation,
		)
		return nil
	case service.IsNotPersisted(err):
		logger.Warnw("worker_catalog_rebuild_not_persisted", "reason", payload.Reason, "error", err)
		return err
	case errors.Is(err, service.ErrCatalogUnavailable):
		logger.Errorw("worker_catalog_rebuild_failed", "reason", payload.Reason, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		logger.Warnw("worker_catalog_rebuild_failed", "reason", payload.Reason, "error", err)
		return err
	}
}
