package provider

import (
	"github.com/offeroye/internal/cache"
	"github.com/offeroye/internal/catalog"
	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/models"
	"github.com/offeroye/internal/query"
	"github.com/offeroye/internal/queue"
	"github.com/offeroye/internal/repository"
	"github.com/offeroye/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Builder     *catalog.Builder
	Engine      *query.Engine

	// Repositories
	CatalogRepo repository.CatalogRepository
	VisitRepo   repository.VisitRepository

	// Services
	CatalogService *service.CatalogService
	CouponService  *service.CouponService
	VisitService   *service.VisitService
	RefreshService *service.RefreshService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Builder:     catalog.NewBuilder(loadTables(cfg.Catalog.DataFile)),
		Engine:      query.NewEngine(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	c.CatalogRepo = repository.NewFileCatalogRepository(c.Config.Catalog.OutputFile)
	if models.DB != nil {
		c.VisitRepo = repository.NewVisitRepository(models.DB)
	}
}

func (c *Container) initServices() {
	c.CatalogService = service.NewCatalogService(c.Builder, c.CatalogRepo, service.CatalogServiceOptions{
		Cities:       c.Config.Catalog.Cities,
		TTL:          c.Config.Catalog.RefreshInterval(),
		SyncInterval: c.Config.Catalog.SyncInterval(),
		Location:     c.Config.Catalog.TimeLocation(),
	})
	c.CouponService = service.NewCouponService(c.CatalogService, c.Engine, c.Config.Catalog.QueryCacheTTL())
	if c.VisitRepo != nil {
		c.VisitService = service.NewVisitService(c.VisitRepo)
	}
	c.RefreshService = service.NewRefreshService(c.CatalogService, c.QueueClient)
}

// loadTables 读取自定义数据表，失败时回退到内置数据表
func loadTables(path string) *catalog.Tables {
	tables, err := catalog.LoadTables(path)
	if err == nil {
		return tables
	}
	logger.Warnw("provider_load_tables_failed", "data_file", path, "error", err)
	tables, err = catalog.DefaultTables()
	if err != nil {
		logger.Errorw("provider_load_default_tables_failed", "error", err)
		panic(err)
	}
	return tables
}
