package app

import (
	"errors"

	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/provider"
	"github.com/offeroye/internal/router"
	"github.com/offeroye/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return BuildRunnerWithContainer(cfg, mode, provider.NewContainer(cfg))
}

// BuildRunnerWithContainer 使用已有容器构建服务运行器
func BuildRunnerWithContainer(cfg *config.Config, mode string, container *provider.Container) (*Runner, error) {
	if cfg == nil || container == nil {
		return nil, errors.New("config or container is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if servesHTTP(mode) {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if runsWorkers(mode) {
		// 定时重建目录
		scheduler, err := worker.NewScheduler(&cfg.Catalog, container.CatalogService)
		if err != nil {
			return nil, err
		}
		services = append(services, scheduler)

		// 队列未开启时手动刷新走同步重建，不需要消费者
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else {
			logger.Infow("app_queue_worker_skipped", "reason", "queue_disabled")
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
