package service

import (
	"context"
	"errors"

	"github.com/offeroye/internal/constants"
	"github.com/offeroye/internal/queue"
)

const (
	// RefreshModeInline 同步重建
	RefreshModeInline = "inline"
	// RefreshModeQueued 已推送到队列
	RefreshModeQueued = "queued"
	// RefreshModePending 已有待执行的重建任务
	RefreshModePending = "pending"
)

// RefreshResult 手动刷新结果
type RefreshResult struct {
	Mode   string        `json:"mode"`
	TaskID string        `json:"task_id,omitempty"`
	Status CatalogStatus `json:"status"`
}

// RefreshService 手动刷新目录
// 队列启用时推送重建任务，否则在当前请求内同步重建。
type RefreshService struct {
	catalog *CatalogService
	queue   *queue.Client
}

// NewRefreshService 创建刷新服务
func NewRefreshService(catalog *CatalogService, queueClient *queue.Client) *RefreshService {
	return &RefreshService{catalog: catalog, queue: queueClient}
}

// Refresh 触发目录重建
func (s *RefreshService) Refresh(ctx context.Context, cities []string) (*RefreshResult, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	if s.queue.Enabled() {
		taskID, err := s.queue.EnqueueCatalogRebuild(queue.CatalogRebuildPayload{
			Cities: cities,
			Reason: constants.RebuildReasonManual,
		})
		switch {
		case err == nil:
			return &RefreshResult{Mode: RefreshModeQueued, TaskID: taskID, Status: s.catalog.Status()}, nil
		case errors.Is(err, queue.ErrTaskDuplicate):
			return &RefreshResult{Mode: RefreshModePending, Status: s.catalog.Status()}, nil
		default:
			return nil, err
		}
	}

	if _, err := s.catalog.Rebuild(ctx, cities); err != nil && !IsNotPersisted(err) {
		return nil, err
	}
	return &RefreshResult{Mode: RefreshModeInline, Status: s.catalog.Status()}, nil
}
