package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/offeroye/internal/catalog"
	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/models"
	"github.com/offeroye/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCatalogTTL 目录快照默认有效期
	DefaultCatalogTTL = 4 * time.Hour
	// DefaultSyncInterval 检查目录文件是否已被其他进程更新的默认间隔
	DefaultSyncInterval = time.Minute

	catalogOriginFile  = "file"
	catalogOriginBuild = "build"
	catalogOriginEmpty = "empty"

	refreshFlightKey = "catalog_refresh"
	refreshTimeout   = 2 * time.Minute
)

// CatalogProvider 目录快照提供方
type CatalogProvider interface {
	Snapshot(ctx context.Context) *models.Catalog
}

// CatalogServiceOptions 目录服务配置
type CatalogServiceOptions struct {
	Cities       []string
	TTL          time.Duration
	SyncInterval time.Duration // 小于 0 时不检查文件更新
	Location     *time.Location
	Now          func() time.Time
}

// CatalogStatus 目录状态
type CatalogStatus struct {
	LastUpdated string     `json:"last_updated"`
	Count       int        `json:"coupons_count"`
	Generation  string     `json:"generation"`
	Origin      string     `json:"origin"`
	LoadedAt    *time.Time `json:"loaded_at"`
	NextRefresh *time.Time `json:"next_refresh"`
	Stale       bool       `json:"stale"`
	DataFile    string     `json:"data_file"`
}

type catalogState struct {
	catalog   *models.Catalog
	origin    string
	expiresAt time.Time
}

// CatalogService 目录快照服务
// 读取方只拿到完整快照；写入通过 singleflight 与互斥锁串行化后整体替换。
// 其他进程（worker、命令行）写入的更新文件会在下次检查时被采用。
type CatalogService struct {
	builder      *catalog.Builder
	repo         repository.CatalogRepository
	cities       []string
	ttl          time.Duration
	syncInterval time.Duration
	location     *time.Location
	now          func() time.Time

	current atomic.Pointer[catalogState]
	syncAt  atomic.Int64
	flight  singleflight.Group
	writeMu sync.Mutex
}

// NewCatalogService 创建目录服务
func NewCatalogService(builder *catalog.Builder, repo repository.CatalogRepository, opts CatalogServiceOptions) *CatalogService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	syncInterval := opts.SyncInterval
	if syncInterval == 0 {
		syncInterval = DefaultSyncInterval
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		builder:      builder,
		repo:         repo,
		cities:       append([]string(nil), opts.Cities...),
		ttl:          ttl,
		syncInterval: syncInterval,
		location:     location,
		now:          now,
	}
}

// Snapshot 返回当前快照
// 快照过期或尚未加载时同步刷新，同一时刻只有一个刷新在执行。
// 刷新不随发起请求取消，等待同一刷新的其他请求不受影响。
func (s *CatalogService) Snapshot(ctx context.Context) *models.Catalog {
	if state := s.current.Load(); s.fresh(state) && !s.syncDue() {
		return state.catalog
	}
	value, _, _ := s.flight.Do(refreshFlightKey, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		if state := s.current.Load(); s.fresh(state) {
			if !s.syncDue() {
				return state.catalog, nil
			}
			if synced, ok := s.adoptPersisted(flightCtx); ok {
				return synced, nil
			}
			s.scheduleSync()
			return state.catalog, nil
		}
		return s.refresh(flightCtx), nil
	})
	if snapshot, ok := value.(*models.Catalog); ok && snapshot != nil {
		return snapshot
	}
	return emptyCatalog()
}

func (s *CatalogService) fresh(state *catalogState) bool {
	return state != nil && s.now().Before(state.expiresAt)
}

func (s *CatalogService) syncDue() bool {
	if s.syncInterval < 0 || s.repo == nil {
		return false
	}
	return !s.now().Before(time.Unix(0, s.syncAt.Load()))
}

func (s *CatalogService) scheduleSync() {
	s.syncAt.Store(s.now().Add(s.syncInterval).UnixNano())
}

// refresh 优先采用未过期且更新的文件；否则重建，重建失败再回退到文件或旧快照
func (s *CatalogService) refresh(ctx context.Context) *models.Catalog {
	if snapshot, ok := s.adoptPersisted(ctx); ok {
		return snapshot
	}

	snapshot, err := s.Rebuild(ctx, nil)
	if snapshot != nil {
		return snapshot
	}
	logger.Warnw("catalog_rebuild_failed", "error", err)

	if snapshot, err := s.Reload(ctx); err == nil {
		return snapshot
	}
	if state := s.current.Load(); state != nil {
		return state.catalog
	}
	logger.Errorw("catalog_unavailable", "data_file", s.repoPath())
	return emptyCatalog()
}

// adoptPersisted 文件未过期且比当前快照新时替换快照
func (s *CatalogService) adoptPersisted(ctx context.Context) (*models.Catalog, bool) {
	if s.repo == nil {
		return nil, false
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	loaded, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCatalogNotFound) {
			logger.Warnw("catalog_load_failed", "data_file", s.repo.Path(), "error", err)
		}
		return nil, false
	}
	generated, ok := repository.ParseCatalogTime(loaded.GeneratedAt, s.location)
	if !ok || s.now().Sub(generated) >= s.ttl {
		return nil, false
	}
	if state := s.current.Load(); state != nil && state.catalog != nil {
		if current, ok := repository.ParseCatalogTime(state.catalog.GeneratedAt, s.location); ok && !generated.After(current) {
			return nil, false
		}
	}
	snapshot := s.swap(loaded, catalogOriginFile, generated.Add(s.ttl))
	logger.Infow("catalog_synced",
		"data_file", s.repo.Path(),
		"count", snapshot.Count,
		"generation", snapshot.Generation,
		"generated_at", snapshot.GeneratedAt,
	)
	return snapshot, true
}

// emptyCatalog 无可用数据时的空目录，不写入快照，下次请求会重试
func emptyCatalog() *models.Catalog {
	return &models.Catalog{Coupons: []models.Coupon{}}
}

// Reload 从文件重新加载目录并替换快照
func (s *CatalogService) Reload(ctx context.Context) (*models.Catalog, error) {
	if s.repo == nil {
		return nil, ErrCatalogUnavailable
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	loaded, err := s.repo.Load(ctx)
	if err != nil {
		logger.Warnw("catalog_load_failed", "data_file", s.repo.Path(), "error", err)
		return nil, err
	}
	expiresAt := s.now().Add(s.ttl)
	if generated, ok := repository.ParseCatalogTime(loaded.GeneratedAt, s.location); ok {
		expiresAt = generated.Add(s.ttl)
	}
	snapshot := s.swap(loaded, catalogOriginFile, expiresAt)
	logger.Infow("catalog_loaded",
		"data_file", s.repo.Path(),
		"count", snapshot.Count,
		"generation", snapshot.Generation,
	)
	return snapshot, nil
}

// Rebuild 构建目录、写入文件并替换快照
// cities 为空时使用配置的城市；写入失败时快照仍会替换，并返回 ErrCatalogNotPersisted。
func (s *CatalogService) Rebuild(ctx context.Context, cities []string) (*models.Catalog, error) {
	if s.builder == nil {
		return nil, ErrCatalogUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cities) == 0 {
		cities = s.cities
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()
	built, err := s.builder.Build(cities, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	var saveErr error
	if s.repo != nil {
		if err := s.repo.Save(ctx, built); err != nil {
			logger.Warnw("catalog_save_failed", "data_file", s.repo.Path(), "error", err)
			saveErr = fmt.Errorf("%w: %v", ErrCatalogNotPersisted, err)
		}
	}
	snapshot := s.swap(built, catalogOriginBuild, now.Add(s.ttl))
	logger.Infow("catalog_rebuilt",
		"count", snapshot.Count,
		"cities", len(s.builder.ResolveCities(cities)),
		"generation", snapshot.Generation,
		"persisted", saveErr == nil,
	)
	return snapshot, saveErr
}

// swap 生成新版本号后整体替换快照
func (s *CatalogService) swap(source *models.Catalog, origin string, expiresAt time.Time) *models.Catalog {
	snapshot := *source
	if snapshot.Coupons == nil {
		snapshot.Coupons = []models.Coupon{}
	}
	snapshot.Count = len(snapshot.Coupons)
	snapshot.Generation = uuid.NewString()
	snapshot.LoadedAt = s.now()
	if len(snapshot.Coupons) == 0 {
		origin = catalogOriginEmpty
	}
	s.current.Store(&catalogState{
		catalog:   &snapshot,
		origin:    origin,
		expiresAt: expiresAt,
	})
	s.scheduleSync()
	return &snapshot
}

// Status 返回当前快照状态，不触发刷新
func (s *CatalogService) Status() CatalogStatus {
	status := CatalogStatus{
		Origin:   catalogOriginEmpty,
		Stale:    true,
		DataFile: s.repoPath(),
	}
	state := s.current.Load()
	if state == nil || state.catalog == nil {
		return status
	}
	loadedAt := state.catalog.LoadedAt
	nextRefresh := state.expiresAt
	status.LastUpdated = state.catalog.GeneratedAt
	status.Count = state.catalog.Len()
	status.Generation = state.catalog.Generation
	status.Origin = state.origin
	status.LoadedAt = &loadedAt
	status.NextRefresh = &nextRefresh
	status.Stale = !s.now().Before(state.expiresAt)
	return status
}

// TTL 快照有效期
func (s *CatalogService) TTL() time.Duration {
	return s.ttl
}

func (s *CatalogService) repoPath() string {
	if s.repo == nil {
		return ""
	}
	return s.repo.Path()
}

// IsNotPersisted 判断错误是否仅为写入失败
func IsNotPersisted(err error) bool {
	return errors.Is(err, ErrCatalogNotPersisted)
}
