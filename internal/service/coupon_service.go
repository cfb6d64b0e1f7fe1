package service

import (
	"context"
	"time"

	"github.com/offeroye/internal/cache"
	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/models"
	"github.com/offeroye/internal/query"
)

// CouponListResult 优惠列表结果
type CouponListResult struct {
	query.Result
	LastUpdated string `json:"last_updated"`
}

// CouponStats 目录统计结果
type CouponStats struct {
	query.Stats
	LastUpdated string `json:"last_updated"`
}

// CouponService 优惠查询服务
type CouponService struct {
	provider CatalogProvider
	engine   *query.Engine
	cacheTTL time.Duration
}

// NewCouponService 创建优惠查询服务
func NewCouponService(provider CatalogProvider, engine *query.Engine, cacheTTL time.Duration) *CouponService {
	if engine == nil {
		engine = query.NewEngine()
	}
	return &CouponService{
		provider: provider,
		engine:   engine,
		cacheTTL: cacheTTL,
	}
}

// List 按条件查询优惠
// 带筛选条件的结果按快照版本缓存；无筛选时精选随机，不缓存。
func (s *CouponService) List(ctx context.Context, q query.Query) (*CouponListResult, error) {
	snapshot := s.snapshot(ctx)
	cacheable := q.HasFilters() && s.cacheTTL > 0 && snapshot.Generation != ""

	if cacheable {
		var cached CouponListResult
		hit, err := cache.GetQueryResult(ctx, snapshot.Generation, q.Key(), &cached)
		if err != nil {
			logger.Warnw("coupon_query_cache_get_failed", "generation", snapshot.Generation, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	result := &CouponListResult{
		Result:      s.engine.Run(snapshot, q),
		LastUpdated: snapshot.GeneratedAt,
	}
	if cacheable {
		if err := cache.SetQueryResult(ctx, snapshot.Generation, q.Key(), result, s.cacheTTL); err != nil {
			logger.Warnw("coupon_query_cache_set_failed", "generation", snapshot.Generation, "error", err)
		}
	}
	return result, nil
}

// Stats 返回全量目录统计
func (s *CouponService) Stats(ctx context.Context) *CouponStats {
	snapshot := s.snapshot(ctx)
	return &CouponStats{
		Stats:       query.Aggregate(snapshot.Coupons),
		LastUpdated: snapshot.GeneratedAt,
	}
}

// Lookup 按优惠码或描述在当前快照中查找优惠
func (s *CouponService) Lookup(ctx context.Context, couponID string) (*models.Coupon, bool) {
	if couponID == "" {
		return nil, false
	}
	snapshot := s.snapshot(ctx)
	for i := range snapshot.Coupons {
		c := snapshot.Coupons[i]
		if c.CodeValue() == couponID || c.Description == couponID {
			return &c, true
		}
	}
	return nil, false
}

func (s *CouponService) snapshot(ctx context.Context) *models.Catalog {
	if s.provider == nil {
		return emptyCatalog()
	}
	snapshot := s.provider.Snapshot(ctx)
	if snapshot == nil {
		return emptyCatalog()
	}
	return snapshot
}
